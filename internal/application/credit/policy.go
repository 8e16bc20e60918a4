package credit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Policy calcula el saldo pendiente de un comprador y aplica su límite de crédito.
type Policy struct {
	txRunner ports.TxRunner
}

// NewPolicy construye el caso de uso.
func NewPolicy(txRunner ports.TxRunner) *Policy {
	return &Policy{txRunner: txRunner}
}

// CheckCreditLimit verifica que newReceivable quepa en el límite del comprador y devuelve el saldo
// pendiente actual. La verificación es sólo consultiva: para que el resultado siga vigente al
// registrar la venta hay que usar CheckInTx dentro de la misma transacción.
func (p *Policy) CheckCreditLimit(ctx context.Context, buyerID string, newReceivable decimal.Decimal) (decimal.Decimal, error) {
	var outstanding decimal.Decimal
	err := p.txRunner.Run(ctx, func(repos ports.Repos) error {
		o, err := p.CheckInTx(ctx, repos, buyerID, newReceivable)
		outstanding = o
		return err
	})
	return outstanding, err
}

// CheckInTx bloquea la fila del comprador (serializa ventas concurrentes del mismo comprador hasta
// el Commit), suma sus facturas pending/overdue y rechaza con domain.ErrCreditLimitExceeded si
// outstanding + newReceivable supera el límite.
func (p *Policy) CheckInTx(ctx context.Context, repos ports.Repos, buyerID string, newReceivable decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(buyerID) == "" {
		return decimal.Zero, fmt.Errorf("%w: comprador requerido", domain.ErrInvalidInput)
	}
	if newReceivable.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: monto a crédito negativo", domain.ErrInvalidInput)
	}
	buyer, err := repos.Buyers.GetForUpdate(ctx, buyerID)
	if err != nil {
		return decimal.Zero, err
	}
	if buyer == nil {
		return decimal.Zero, fmt.Errorf("%w: comprador %s", domain.ErrNotFound, buyerID)
	}
	outstanding, err := repos.Invoices.SumOutstanding(ctx, buyerID)
	if err != nil {
		return decimal.Zero, err
	}
	if buyer.HasCreditLimit() && outstanding.Add(newReceivable).GreaterThan(buyer.CreditLimit) {
		return outstanding, fmt.Errorf("%w: pendiente %s + nuevo %s > límite %s",
			domain.ErrCreditLimitExceeded,
			outstanding.StringFixed(2), newReceivable.StringFixed(2), buyer.CreditLimit.StringFixed(2))
	}
	return outstanding, nil
}

// Outstanding saldo pendiente del comprador.
func (p *Policy) Outstanding(ctx context.Context, buyerID string) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := p.txRunner.Run(ctx, func(repos ports.Repos) error {
		buyer, err := repos.Buyers.GetByID(ctx, buyerID)
		if err != nil {
			return err
		}
		if buyer == nil {
			return domain.ErrNotFound
		}
		out, err = repos.Invoices.SumOutstanding(ctx, buyerID)
		return err
	})
	return out, err
}

// MarkOverdue pasa a overdue las facturas pending vencidas a la fecha asOf.
func (p *Policy) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var n int64
	err := p.txRunner.Run(ctx, func(repos ports.Repos) error {
		var err error
		n, err = repos.Invoices.MarkOverdue(ctx, asOf)
		return err
	})
	return n, err
}

// BuyerInput datos de alta de un comprador.
type BuyerInput struct {
	Name        string
	Phone       string
	CreditLimit decimal.Decimal
}

// CreateBuyer registra un comprador. CreditLimit cero = sin límite.
func (p *Policy) CreateBuyer(ctx context.Context, in BuyerInput) (*entity.Buyer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: límite de crédito negativo", domain.ErrInvalidInput)
	}
	now := time.Now()
	buyer := &entity.Buyer{
		ID:          uuid.New().String(),
		Name:        name,
		Phone:       strings.TrimSpace(in.Phone),
		CreditLimit: in.CreditLimit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := p.txRunner.Run(ctx, func(repos ports.Repos) error {
		return repos.Buyers.Create(ctx, buyer)
	})
	if err != nil {
		return nil, err
	}
	return buyer, nil
}

// GetBuyer obtiene un comprador por ID.
func (p *Policy) GetBuyer(ctx context.Context, id string) (*entity.Buyer, error) {
	var out *entity.Buyer
	err := p.txRunner.Run(ctx, func(repos ports.Repos) error {
		b, err := repos.Buyers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		out = b
		return nil
	})
	return out, err
}

// ListBuyers lista compradores con paginación.
func (p *Policy) ListBuyers(ctx context.Context, limit, offset int) ([]*entity.Buyer, error) {
	var out []*entity.Buyer
	err := p.txRunner.Run(ctx, func(repos ports.Repos) error {
		list, err := repos.Buyers.List(ctx, limit, offset)
		out = list
		return err
	})
	return out, err
}
