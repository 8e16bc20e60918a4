package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/molino-api/internal/application/dto"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/shopspring/decimal"
)

// Estados de reposición.
const (
	StockStatusOut = "OUT_OF_STOCK"
	StockStatusLow = "LOW"
)

// LowStock devuelve las entradas con cantidad <= threshold, agotadas primero.
// threshold nil usa el umbral configurado; warehouseID vacío considera todas las bodegas.
func (l *StockLedger) LowStock(ctx context.Context, warehouseID string, threshold *decimal.Decimal) ([]dto.LowStockItem, error) {
	limit := l.defaultThreshold
	if threshold != nil {
		limit = *threshold
	}

	var items []dto.LowStockItem
	err := l.txRunner.Run(ctx, func(repos ports.Repos) error {
		entries, err := repos.Stock.ListAtOrBelow(ctx, warehouseID, limit)
		if err != nil {
			return err
		}
		items = make([]dto.LowStockItem, 0, len(entries))
		for _, e := range entries {
			status := StockStatusLow
			if e.Quantity.IsZero() {
				status = StockStatusOut
			}
			items = append(items, dto.LowStockItem{
				StockEntryResponse: dto.ToStockEntryResponse(e),
				Status:             status,
				Threshold:          limit,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Quantity.LessThan(items[j].Quantity)
	})
	return items, nil
}
