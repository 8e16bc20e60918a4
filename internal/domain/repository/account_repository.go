package repository

import (
	"context"

	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AccountRepository define el puerto de persistencia del plan de cuentas.
type AccountRepository interface {
	// GetOrCreate inserta la cuenta salvo que ya exista una activa con el mismo
	// (categoría, tipo, alcance); en ese caso devuelve la existente. created indica si se insertó.
	GetOrCreate(ctx context.Context, account *entity.Account) (stored *entity.Account, created bool, err error)
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Account, error)
	// AddToBalance suma delta (con signo) al saldo actual.
	AddToBalance(ctx context.Context, id string, delta decimal.Decimal) error
	List(ctx context.Context, warehouseID *string, limit, offset int) ([]*entity.Account, error)
}
