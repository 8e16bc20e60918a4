package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.InvoiceRepository   = (*invoiceRepo)(nil)
	_ repository.BuyerRepository     = (*buyerRepo)(nil)
	_ repository.WarehouseRepository = (*warehouseRepo)(nil)
	_ repository.WarehouseRepository = (*lockedWarehouses)(nil)
)

type invoiceRepo struct{ s *Store }

func invoiceKey(kind, number string) string { return kind + "|" + number }

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	st := r.s.st
	k := invoiceKey(inv.Kind, inv.Number)
	if _, ok := st.invoices[k]; ok {
		return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, inv.Number)
	}
	if _, ok := st.warehouses[inv.WarehouseID]; !ok {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, inv.WarehouseID)
	}
	if inv.RemainingAmount.IsNegative() {
		return fmt.Errorf("%w: saldo negativo", domain.ErrInvalidInput)
	}
	st.invoices[k] = *inv
	return nil
}

func (r *invoiceRepo) GetByNumber(_ context.Context, kind, number string) (*entity.Invoice, error) {
	inv, ok := r.s.st.invoices[invoiceKey(kind, number)]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByNumberForUpdate(ctx context.Context, kind, number string) (*entity.Invoice, error) {
	return r.GetByNumber(ctx, kind, number)
}

func (r *invoiceRepo) UpdatePayment(_ context.Context, inv *entity.Invoice) error {
	k := invoiceKey(inv.Kind, inv.Number)
	stored, ok := r.s.st.invoices[k]
	if !ok || stored.ID != inv.ID {
		return fmt.Errorf("%w: factura %s", domain.ErrNotFound, inv.Number)
	}
	stored.PaidAmount = inv.PaidAmount
	stored.RemainingAmount = inv.RemainingAmount
	stored.Status = inv.Status
	stored.UpdatedAt = inv.UpdatedAt
	r.s.st.invoices[k] = stored
	return nil
}

func (r *invoiceRepo) SumOutstanding(_ context.Context, buyerID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, inv := range r.s.st.invoices {
		if inv.Kind == entity.InvoiceKindSale && inv.PartyID == buyerID && inv.IsOutstanding() {
			total = total.Add(inv.RemainingAmount)
		}
	}
	return total, nil
}

func (r *invoiceRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	var n int64
	for k, inv := range r.s.st.invoices {
		if inv.Status == entity.InvoiceStatusPending && inv.DueDate != nil && inv.DueDate.Before(asOf) {
			inv.Status = entity.InvoiceStatusOverdue
			inv.UpdatedAt = r.s.now()
			r.s.st.invoices[k] = inv
			n++
		}
	}
	return n, nil
}

type buyerRepo struct{ s *Store }

func (r *buyerRepo) Create(_ context.Context, b *entity.Buyer) error {
	if _, ok := r.s.st.buyers[b.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.st.buyers[b.ID] = *b
	return nil
}

func (r *buyerRepo) GetByID(_ context.Context, id string) (*entity.Buyer, error) {
	b, ok := r.s.st.buyers[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *buyerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Buyer, error) {
	return r.GetByID(ctx, id)
}

func (r *buyerRepo) List(_ context.Context, limit, offset int) ([]*entity.Buyer, error) {
	list := sortedValues(r.s.st.buyers, func(a, b *entity.Buyer) bool { return a.Name < b.Name })
	return page(list, limit, offset), nil
}

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	for _, existing := range r.s.st.warehouses {
		if existing.Name == w.Name {
			return fmt.Errorf("%w: bodega %s", domain.ErrDuplicate, w.Name)
		}
	}
	r.s.st.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	w, ok := r.s.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	if _, ok := r.s.st.warehouses[w.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.warehouses[w.ID] = *w
	return nil
}

func (r *warehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	list := sortedValues(r.s.st.warehouses, func(a, b *entity.Warehouse) bool { return a.Name < b.Name })
	return page(list, limit, offset), nil
}

// lockedWarehouses toma el mutex del Store en cada llamada (uso fuera de Run).
type lockedWarehouses struct {
	inner *warehouseRepo
	mu    *sync.Mutex
}

func (l *lockedWarehouses) Create(ctx context.Context, w *entity.Warehouse) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Create(ctx, w)
}

func (l *lockedWarehouses) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.GetByID(ctx, id)
}

func (l *lockedWarehouses) Update(ctx context.Context, w *entity.Warehouse) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Update(ctx, w)
}

func (l *lockedWarehouses) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.List(ctx, limit, offset)
}
