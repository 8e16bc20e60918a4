package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, number, kind, party_id, warehouse_id, total_amount, paid_amount,
	remaining_amount, status, due_date, created_by, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador de facturas.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Kind, &inv.PartyID, &inv.WarehouseID, &inv.TotalAmount,
		&inv.PaidAmount, &inv.RemainingAmount, &inv.Status, &inv.DueDate, &inv.CreatedBy,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create persiste la factura; número repetido para el mismo tipo es domain.ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		inv.ID, inv.Number, inv.Kind, inv.PartyID, inv.WarehouseID, inv.TotalAmount, inv.PaidAmount,
		inv.RemainingAmount, inv.Status, inv.DueDate, inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, inv.Number)
		}
		return mapError(fmt.Errorf("insert invoice: %w", err))
	}
	return nil
}

// GetByNumber obtiene una factura por tipo y número; nil si no existe.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, kind, number string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE kind = $1 AND number = $2`, kind, number)
}

// GetByNumberForUpdate igual que GetByNumber bloqueando la fila.
func (r *InvoiceRepo) GetByNumberForUpdate(ctx context.Context, kind, number string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE kind = $1 AND number = $2 FOR UPDATE`, kind, number)
}

func (r *InvoiceRepo) get(ctx context.Context, query string, args ...any) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// UpdatePayment guarda pagado, saldo y estado.
func (r *InvoiceRepo) UpdatePayment(ctx context.Context, inv *entity.Invoice) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE invoices SET paid_amount = $2, remaining_amount = $3, status = $4, updated_at = $5
		WHERE id = $1`,
		inv.ID, inv.PaidAmount, inv.RemainingAmount, inv.Status, inv.UpdatedAt)
	if err != nil {
		return mapError(fmt.Errorf("update invoice payment: %w", err))
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: factura %s", domain.ErrNotFound, inv.Number)
	}
	return nil
}

// SumOutstanding suma remaining_amount de las ventas pending/overdue del comprador.
func (r *InvoiceRepo) SumOutstanding(ctx context.Context, buyerID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(remaining_amount), 0)
		FROM invoices
		WHERE kind = 'sale' AND party_id = $1 AND status IN ('pending', 'overdue')`, buyerID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum outstanding: %w", err)
	}
	return total, nil
}

// MarkOverdue marca como overdue las facturas pending vencidas.
func (r *InvoiceRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE invoices SET status = 'overdue', updated_at = now()
		WHERE status = 'pending' AND due_date IS NOT NULL AND due_date < $1`, asOf)
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}
	return cmd.RowsAffected(), nil
}
