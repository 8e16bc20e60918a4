package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, warehouse_id, item_name, item_type, sub_type, delta, quantity_after,
	reason, reference, created_by, created_at`

// StockMovementRepo implementación de StockMovementRepository sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.WarehouseID, m.ItemName, m.ItemType, m.SubType, m.Delta, m.QuantityAfter,
		m.Reason, m.Reference, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return mapError(fmt.Errorf("insert stock movement: %w", err))
	}
	return nil
}

// ListByReference movimientos de una factura o lote.
func (r *StockMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE reference = $1 ORDER BY created_at`, reference)
}

// ListByWarehouse movimientos de una bodega, más reciente primero.
func (r *StockMovementRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE warehouse_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, warehouseID, limit, offset)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("list stock movements: %w", err))
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.WarehouseID, &m.ItemName, &m.ItemType, &m.SubType, &m.Delta,
			&m.QuantityAfter, &m.Reason, &m.Reference, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
