package repository

import (
	"context"

	"github.com/jhoicas/molino-api/internal/domain/entity"
)

// TransactionRepository puerto del diario de transacciones (sólo inserción).
type TransactionRepository interface {
	// NextNumber reserva el siguiente número correlativo (TXN-000001, ...).
	NextNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, t *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// UpdateStatus cambia el estado sólo si el actual es from; devuelve false si no aplicó.
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*entity.Transaction, error)
	ListByEventKey(ctx context.Context, eventKey string) ([]*entity.Transaction, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Transaction, error)
}
