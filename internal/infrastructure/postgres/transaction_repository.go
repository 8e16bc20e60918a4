package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, transaction_number, date, type, debit_account_id, credit_account_id,
	amount, currency, description, warehouse_id, created_by, payment_method, payment_status,
	is_payable, is_receivable, due_date, sale_ref, purchase_ref, invoice_id, event_key, created_at`

// TransactionRepo implementación del diario sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador del diario.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(&t.ID, &t.Number, &t.Date, &t.Type, &t.DebitAccountID, &t.CreditAccountID,
		&t.Amount, &t.Currency, &t.Description, &t.WarehouseID, &t.CreatedBy, &t.PaymentMethod,
		&t.PaymentStatus, &t.IsPayable, &t.IsReceivable, &t.DueDate, &t.SaleRef, &t.PurchaseRef,
		&t.InvoiceID, &t.EventKey, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NextNumber toma el siguiente valor de transaction_number_seq (monótono; puede tener huecos
// si una transacción hace Rollback).
func (r *TransactionRepo) NextNumber(ctx context.Context) (string, error) {
	var number string
	err := r.q.QueryRow(ctx, `SELECT 'TXN-' || lpad(nextval('transaction_number_seq')::text, 6, '0')`).Scan(&number)
	if err != nil {
		return "", fmt.Errorf("next transaction number: %w", err)
	}
	return number, nil
}

// Create inserta el asiento.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Number, t.Date, t.Type, t.DebitAccountID, t.CreditAccountID,
		t.Amount, t.Currency, t.Description, t.WarehouseID, t.CreatedBy, t.PaymentMethod,
		t.PaymentStatus, t.IsPayable, t.IsReceivable, t.DueDate, t.SaleRef, t.PurchaseRef,
		t.InvoiceID, t.EventKey, t.CreatedAt,
	)
	if err != nil {
		return mapError(fmt.Errorf("insert transaction: %w", err))
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(fmt.Errorf("get transaction: %w", err))
	}
	return t, nil
}

// UpdateStatus cambia payment_status sólo si el actual es from.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE transactions SET payment_status = $3 WHERE id = $1 AND payment_status = $2`, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update transaction status: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ListByAccount asientos donde la cuenta es débito o crédito, más reciente primero.
func (r *TransactionRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*entity.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE debit_account_id = $1 OR credit_account_id = $1
		ORDER BY length(transaction_number) DESC, transaction_number DESC LIMIT $2 OFFSET $3`, accountID, limit, offset)
}

// ListByEventKey asientos generados por un evento, en orden de registro.
func (r *TransactionRepo) ListByEventKey(ctx context.Context, eventKey string) ([]*entity.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE event_key = $1 ORDER BY length(transaction_number), transaction_number`, eventKey)
}

// ListByInvoice asientos ligados a una factura, en orden de registro.
func (r *TransactionRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE invoice_id = $1 ORDER BY length(transaction_number), transaction_number`, invoiceID)
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("list transactions: %w", err))
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
