package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.AccountRepository     = (*accountRepo)(nil)
	_ repository.TransactionRepository = (*transactionRepo)(nil)
	_ repository.EventRepository       = (*eventRepo)(nil)
)

type accountRepo struct{ s *Store }

func scopeIndex(category, accountType, scope string) string {
	return category + "|" + accountType + "|" + scope
}

func (r *accountRepo) GetOrCreate(_ context.Context, a *entity.Account) (*entity.Account, bool, error) {
	st := r.s.st
	idx := scopeIndex(a.Category, a.Type, a.ScopeKey())
	if id, ok := st.activeScope[idx]; ok {
		existing := st.accounts[id]
		return &existing, false, nil
	}
	if a.WarehouseID != nil {
		if _, ok := st.warehouses[*a.WarehouseID]; !ok {
			return nil, false, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, *a.WarehouseID)
		}
	}
	st.accountSeq++
	stored := *a
	stored.Number = fmt.Sprintf("ACC-%06d", st.accountSeq)
	stored.CurrentBalance = a.OpeningBalance
	stored.UpdatedAt = stored.CreatedAt
	st.accounts[stored.ID] = stored
	if stored.IsActive() {
		st.activeScope[idx] = stored.ID
	}
	out := stored
	return &out, true, nil
}

func (r *accountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	a, ok := r.s.st.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// GetForUpdate equivale a GetByID: Run ya tiene el mutex exclusivo.
func (r *accountRepo) GetForUpdate(ctx context.Context, id string) (*entity.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *accountRepo) AddToBalance(_ context.Context, id string, delta decimal.Decimal) error {
	a, ok := r.s.st.accounts[id]
	if !ok {
		return fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, id)
	}
	a.CurrentBalance = a.CurrentBalance.Add(delta)
	a.UpdatedAt = r.s.now()
	r.s.st.accounts[id] = a
	return nil
}

func (r *accountRepo) List(_ context.Context, warehouseID *string, limit, offset int) ([]*entity.Account, error) {
	all := sortedValues(r.s.st.accounts, func(a, b *entity.Account) bool { return a.Number < b.Number })
	var list []*entity.Account
	for _, a := range all {
		if warehouseID != nil && (a.WarehouseID == nil || *a.WarehouseID != *warehouseID) {
			continue
		}
		list = append(list, a)
	}
	return page(list, limit, offset), nil
}

type transactionRepo struct{ s *Store }

func (r *transactionRepo) NextNumber(context.Context) (string, error) {
	r.s.st.txSeq++
	return fmt.Sprintf("TXN-%06d", r.s.st.txSeq), nil
}

func (r *transactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	st := r.s.st
	if t.DebitAccountID == t.CreditAccountID {
		return fmt.Errorf("%w: débito y crédito en la misma cuenta", domain.ErrInvalidInput)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: monto debe ser mayor que cero", domain.ErrInvalidInput)
	}
	for _, id := range []string{t.DebitAccountID, t.CreditAccountID} {
		if _, ok := st.accounts[id]; !ok {
			return fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, id)
		}
	}
	if _, ok := st.transactions[t.ID]; ok {
		return fmt.Errorf("%w: transacción %s", domain.ErrDuplicate, t.ID)
	}
	st.transactions[t.ID] = *t
	return nil
}

func (r *transactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	t, ok := r.s.st.transactions[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *transactionRepo) UpdateStatus(_ context.Context, id, from, to string) (bool, error) {
	t, ok := r.s.st.transactions[id]
	if !ok || t.PaymentStatus != from {
		return false, nil
	}
	t.PaymentStatus = to
	r.s.st.transactions[id] = t
	return true, nil
}

// byNumber orden de registro; los números tienen ancho fijo hasta TXN-999999.
func byNumber(a, b *entity.Transaction) bool {
	if len(a.Number) != len(b.Number) {
		return len(a.Number) < len(b.Number)
	}
	return a.Number < b.Number
}

func (r *transactionRepo) filter(keep func(t *entity.Transaction) bool) []*entity.Transaction {
	var out []*entity.Transaction
	for _, t := range sortedValues(r.s.st.transactions, byNumber) {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (r *transactionRepo) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*entity.Transaction, error) {
	list := r.filter(func(t *entity.Transaction) bool {
		return t.DebitAccountID == accountID || t.CreditAccountID == accountID
	})
	// más reciente primero
	sort.SliceStable(list, func(i, j int) bool { return byNumber(list[j], list[i]) })
	return page(list, limit, offset), nil
}

func (r *transactionRepo) ListByEventKey(_ context.Context, eventKey string) ([]*entity.Transaction, error) {
	return r.filter(func(t *entity.Transaction) bool {
		return t.EventKey != nil && *t.EventKey == eventKey
	}), nil
}

func (r *transactionRepo) ListByInvoice(_ context.Context, invoiceID string) ([]*entity.Transaction, error) {
	return r.filter(func(t *entity.Transaction) bool {
		return t.InvoiceID != nil && *t.InvoiceID == invoiceID
	}), nil
}

type eventRepo struct{ s *Store }

func (r *eventRepo) Claim(_ context.Context, e *entity.LedgerEvent) (bool, error) {
	if _, ok := r.s.st.events[e.Key]; ok {
		return false, nil
	}
	r.s.st.events[e.Key] = *e
	return true, nil
}
