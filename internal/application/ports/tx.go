package ports

import (
	"context"

	"github.com/jhoicas/molino-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD.
type Repos struct {
	Accounts     repository.AccountRepository
	Transactions repository.TransactionRepository
	Stock        repository.StockRepository
	Movements    repository.StockMovementRepository
	Invoices     repository.InvoiceRepository
	Buyers       repository.BuyerRepository
	Warehouses   repository.WarehouseRepository
	Events       repository.EventRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
// Un conflicto de serialización o deadlock se devuelve como domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
