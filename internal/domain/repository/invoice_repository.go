package repository

import (
	"context"
	"time"

	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InvoiceRepository puerto de facturas de venta y compra.
type InvoiceRepository interface {
	// Create devuelve domain.ErrDuplicate si ya existe una factura con el mismo tipo y número.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByNumber(ctx context.Context, kind, number string) (*entity.Invoice, error)
	GetByNumberForUpdate(ctx context.Context, kind, number string) (*entity.Invoice, error)
	UpdatePayment(ctx context.Context, invoice *entity.Invoice) error
	// SumOutstanding suma remaining_amount de las facturas de venta pending/overdue del comprador.
	SumOutstanding(ctx context.Context, buyerID string) (decimal.Decimal, error)
	// MarkOverdue pasa a overdue las facturas pending con vencimiento anterior a asOf.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}
