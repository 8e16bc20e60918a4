package repository

import (
	"context"

	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository puerto de las entradas de stock por bodega+ítem+subtipo.
type StockRepository interface {
	// Adjust aplica delta en una sola operación atómica. Con delta > 0 crea la entrada si no
	// existe; con delta < 0 devuelve domain.ErrInsufficientStock si la entrada no existe o
	// quedaría negativa, sin modificarla.
	Adjust(ctx context.Context, key entity.StockKey, delta decimal.Decimal, unit string) (*entity.StockEntry, error)
	Get(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockEntry, error)
	// ListAtOrBelow entradas con cantidad <= threshold (warehouseID vacío = todas las bodegas).
	ListAtOrBelow(ctx context.Context, warehouseID string, threshold decimal.Decimal) ([]*entity.StockEntry, error)
}

// StockMovementRepository puerto del registro de movimientos de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error)
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockMovement, error)
}
