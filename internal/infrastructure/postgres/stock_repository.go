package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `warehouse_id, item_name, item_type, sub_type, quantity, unit, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.StockEntry, error) {
	var s entity.StockEntry
	err := row.Scan(&s.WarehouseID, &s.ItemName, &s.ItemType, &s.SubType, &s.Quantity, &s.Unit, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Adjust aplica el delta en una única sentencia. Las entradas suman con upsert; las salidas
// sólo actualizan si quantity + delta >= 0, así dos salidas concurrentes no pueden dejar
// el stock negativo.
func (r *StockRepo) Adjust(ctx context.Context, key entity.StockKey, delta decimal.Decimal, unit string) (*entity.StockEntry, error) {
	var row pgx.Row
	if delta.IsPositive() {
		row = r.q.QueryRow(ctx, `
			INSERT INTO stock_entries (warehouse_id, item_name, item_type, sub_type, quantity, unit, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (warehouse_id, item_name, item_type, sub_type)
			DO UPDATE SET quantity = stock_entries.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING `+stockColumns,
			key.WarehouseID, key.ItemName, key.ItemType, key.SubType, delta, unit)
	} else {
		row = r.q.QueryRow(ctx, `
			UPDATE stock_entries SET quantity = quantity + $5, updated_at = now()
			WHERE warehouse_id = $1 AND item_name = $2 AND item_type = $3 AND sub_type = $4
			  AND quantity + $5 >= 0
			RETURNING `+stockColumns,
			key.WarehouseID, key.ItemName, key.ItemType, key.SubType, delta)
	}
	s, err := scanStock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeCheckViolation {
			return nil, fmt.Errorf("%w: %s %s en bodega %s", domain.ErrInsufficientStock, key.ItemName, key.SubType, key.WarehouseID)
		}
		return nil, mapError(fmt.Errorf("adjust stock: %w", err))
	}
	return s, nil
}

// Get obtiene la entrada de stock; nil si no existe.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	s, err := scanStock(r.q.QueryRow(ctx, `
		SELECT `+stockColumns+` FROM stock_entries
		WHERE warehouse_id = $1 AND item_name = $2 AND item_type = $3 AND sub_type = $4`,
		key.WarehouseID, key.ItemName, key.ItemType, key.SubType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(fmt.Errorf("get stock: %w", err))
	}
	return s, nil
}

// ListByWarehouse entradas de una bodega ordenadas por ítem.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockEntry, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock_entries
		WHERE warehouse_id = $1 ORDER BY item_type DESC, item_name, sub_type`, warehouseID)
}

// ListAtOrBelow entradas con quantity <= threshold.
func (r *StockRepo) ListAtOrBelow(ctx context.Context, warehouseID string, threshold decimal.Decimal) ([]*entity.StockEntry, error) {
	if warehouseID == "" {
		return r.list(ctx, `SELECT `+stockColumns+` FROM stock_entries
			WHERE quantity <= $1 ORDER BY quantity, item_name`, threshold)
	}
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock_entries
		WHERE warehouse_id = $1 AND quantity <= $2 ORDER BY quantity, item_name`, warehouseID, threshold)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("list stock: %w", err))
	}
	defer rows.Close()
	var list []*entity.StockEntry
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
