package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	domledger "github.com/jhoicas/molino-api/internal/domain/ledger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Metadata datos descriptivos de un asiento. Los campos vacíos toman valores por defecto:
// fecha actual, moneda del motor y estado Completed.
type Metadata struct {
	Date          time.Time
	Description   string
	Currency      string
	WarehouseID   *string
	CreatedBy     string
	PaymentMethod string
	PaymentStatus string
	IsPayable     bool
	IsReceivable  bool
	DueDate       *time.Time
	SaleRef       *string
	PurchaseRef   *string
	InvoiceID     *string
	EventKey      *string
}

// PostingInput asiento a registrar.
type PostingInput struct {
	Type            string
	DebitAccountID  string
	CreditAccountID string
	Amount          decimal.Decimal
	Metadata        Metadata
}

// Engine motor de partida doble: numera, inserta el asiento y mueve los dos saldos en la
// misma transacción.
type Engine struct {
	txRunner ports.TxRunner
	currency string
	log      zerolog.Logger
}

// NewEngine construye el motor. currency es la moneda por defecto de los asientos.
func NewEngine(txRunner ports.TxRunner, currency string, log zerolog.Logger) *Engine {
	return &Engine{txRunner: txRunner, currency: currency, log: log}
}

// PostTransaction registra un asiento en su propia transacción.
func (e *Engine) PostTransaction(ctx context.Context, in PostingInput) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := e.txRunner.Run(ctx, func(repos ports.Repos) error {
		t, err := e.PostInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("number", out.Number).
		Str("type", out.Type).
		Str("amount", out.Amount.StringFixed(domledger.MoneyScale)).
		Msg("asiento registrado")
	return out, nil
}

// PostInTx registra el asiento con los repositorios de la transacción del caller. Las dos
// cuentas se bloquean en orden de ID para evitar interbloqueos entre eventos concurrentes.
func (e *Engine) PostInTx(ctx context.Context, repos ports.Repos, in PostingInput) (*entity.Transaction, error) {
	if !entity.ValidTransactionType(in.Type) {
		return nil, fmt.Errorf("%w: tipo de transacción %q", domain.ErrInvalidInput, in.Type)
	}
	if err := domledger.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if in.DebitAccountID == "" || in.CreditAccountID == "" {
		return nil, fmt.Errorf("%w: cuentas débito y crédito requeridas", domain.ErrInvalidInput)
	}
	if in.DebitAccountID == in.CreditAccountID {
		return nil, fmt.Errorf("%w: cuenta débito y crédito iguales", domain.ErrInvalidInput)
	}
	meta := in.Metadata
	status := meta.PaymentStatus
	if status == "" {
		status = entity.PaymentStatusCompleted
	}
	// Un asiento nace Pending o Completed; Failed y Cancelled no mueven saldos.
	if status != entity.PaymentStatusPending && status != entity.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: estado inicial %q no permitido", domain.ErrInvalidInput, status)
	}
	if meta.PaymentMethod != "" && !entity.ValidPaymentMethod(meta.PaymentMethod) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, meta.PaymentMethod)
	}

	debit, credit, err := lockPair(ctx, repos, in.DebitAccountID, in.CreditAccountID)
	if err != nil {
		return nil, err
	}
	if err := domledger.ValidatePosting(debit, credit, in.Amount); err != nil {
		return nil, err
	}

	number, err := repos.Transactions.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	date := meta.Date
	if date.IsZero() {
		date = now
	}
	currency := strings.TrimSpace(meta.Currency)
	if currency == "" {
		currency = e.currency
	}
	t := &entity.Transaction{
		ID:              uuid.New().String(),
		Number:          number,
		Date:            date,
		Type:            in.Type,
		DebitAccountID:  debit.ID,
		CreditAccountID: credit.ID,
		Amount:          in.Amount,
		Currency:        currency,
		Description:     meta.Description,
		WarehouseID:     meta.WarehouseID,
		CreatedBy:       meta.CreatedBy,
		PaymentMethod:   meta.PaymentMethod,
		PaymentStatus:   status,
		IsPayable:       meta.IsPayable,
		IsReceivable:    meta.IsReceivable,
		DueDate:         meta.DueDate,
		SaleRef:         meta.SaleRef,
		PurchaseRef:     meta.PurchaseRef,
		InvoiceID:       meta.InvoiceID,
		EventKey:        meta.EventKey,
		CreatedAt:       now,
	}
	if err := repos.Transactions.Create(ctx, t); err != nil {
		return nil, err
	}
	if err := repos.Accounts.AddToBalance(ctx, debit.ID, in.Amount); err != nil {
		return nil, err
	}
	if err := repos.Accounts.AddToBalance(ctx, credit.ID, in.Amount.Neg()); err != nil {
		return nil, err
	}
	return t, nil
}

func lockPair(ctx context.Context, repos ports.Repos, debitID, creditID string) (*entity.Account, *entity.Account, error) {
	first, second := debitID, creditID
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*entity.Account, 2)
	for _, id := range []string{first, second} {
		acc, err := repos.Accounts.GetForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if acc == nil {
			return nil, nil, fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, id)
		}
		locked[id] = acc
	}
	return locked[debitID], locked[creditID], nil
}

// CompleteTransaction pasa un asiento de Pending a Completed; cualquier otro estado de origen
// es domain.ErrInvalidInput.
func (e *Engine) CompleteTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := e.txRunner.Run(ctx, func(repos ports.Repos) error {
		t, err := e.CompleteInTx(ctx, repos, id)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// CompleteInTx igual que CompleteTransaction dentro de la transacción del caller.
func (e *Engine) CompleteInTx(ctx context.Context, repos ports.Repos, id string) (*entity.Transaction, error) {
	t, err := repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: transacción %s", domain.ErrNotFound, id)
	}
	if !t.CanTransitionTo(entity.PaymentStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidInput, t.PaymentStatus, entity.PaymentStatusCompleted)
	}
	ok, err := repos.Transactions.UpdateStatus(ctx, id, entity.PaymentStatusPending, entity.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: la transacción cambió de estado", domain.ErrConflict)
	}
	t.PaymentStatus = entity.PaymentStatusCompleted
	return t, nil
}

// GetTransaction obtiene un asiento por ID.
func (e *Engine) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := e.txRunner.Run(ctx, func(repos ports.Repos) error {
		t, err := repos.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		out = t
		return nil
	})
	return out, err
}

// Statement extracto de una cuenta: la cuenta y sus asientos, más reciente primero.
type Statement struct {
	Account      *entity.Account
	Transactions []*entity.Transaction
}

// AccountStatement devuelve el extracto paginado de una cuenta.
func (e *Engine) AccountStatement(ctx context.Context, accountID string, limit, offset int) (*Statement, error) {
	var out Statement
	err := e.txRunner.Run(ctx, func(repos ports.Repos) error {
		acc, err := repos.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrNotFound
		}
		list, err := repos.Transactions.ListByAccount(ctx, accountID, limit, offset)
		if err != nil {
			return err
		}
		out = Statement{Account: acc, Transactions: list}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
