package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.StockRepository         = (*stockRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
)

type stockRepo struct{ s *Store }

func (r *stockRepo) Adjust(_ context.Context, key entity.StockKey, delta decimal.Decimal, unit string) (*entity.StockEntry, error) {
	st := r.s.st
	entry, ok := st.stock[key]
	if delta.IsPositive() {
		if _, whOK := st.warehouses[key.WarehouseID]; !whOK {
			return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, key.WarehouseID)
		}
		if !ok {
			entry = entity.StockEntry{StockKey: key, Quantity: decimal.Zero, Unit: unit}
		}
	} else if !ok || entry.Quantity.Add(delta).IsNegative() {
		return nil, fmt.Errorf("%w: %s %s en bodega %s", domain.ErrInsufficientStock, key.ItemName, key.SubType, key.WarehouseID)
	}
	entry.Quantity = entry.Quantity.Add(delta)
	entry.UpdatedAt = r.s.now()
	st.stock[key] = entry
	out := entry
	return &out, nil
}

func (r *stockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	e, ok := r.s.st.stock[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *stockRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	for _, e := range sortedValues(r.s.st.stock, func(a, b *entity.StockEntry) bool {
		if a.ItemType != b.ItemType {
			return a.ItemType > b.ItemType
		}
		if a.ItemName != b.ItemName {
			return a.ItemName < b.ItemName
		}
		return a.SubType < b.SubType
	}) {
		if e.WarehouseID == warehouseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stockRepo) ListAtOrBelow(_ context.Context, warehouseID string, threshold decimal.Decimal) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	for _, e := range sortedValues(r.s.st.stock, func(a, b *entity.StockEntry) bool {
		if !a.Quantity.Equal(b.Quantity) {
			return a.Quantity.LessThan(b.Quantity)
		}
		return a.ItemName < b.ItemName
	}) {
		if warehouseID != "" && e.WarehouseID != warehouseID {
			continue
		}
		if e.Quantity.LessThanOrEqual(threshold) {
			out = append(out, e)
		}
	}
	return out, nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.st.movements = append(r.s.st.movements, *m)
	return nil
}

func (r *movementRepo) ListByReference(_ context.Context, reference string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := range r.s.st.movements {
		if r.s.st.movements[i].Reference == reference {
			m := r.s.st.movements[i]
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *movementRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	// recorrido inverso: a igual instante, el último insertado va primero
	for i := len(r.s.st.movements) - 1; i >= 0; i-- {
		if r.s.st.movements[i].WarehouseID == warehouseID {
			m := r.s.st.movements[i]
			out = append(out, &m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}
