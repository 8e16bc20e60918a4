package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	dominventory "github.com/jhoicas/molino-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ProductionResult resultado de una corrida de molienda.
type ProductionResult struct {
	BatchNumber   string
	Stock         []*entity.StockEntry
	GrossWeightKg decimal.Decimal
	BranWeightKg  decimal.Decimal
	YieldPct      decimal.Decimal
	Replayed      bool
}

// RecordProduction descuenta el trigo consumido de la bodega de entrada y suma las bolsas
// producidas en la bodega de salida, todo o nada. Sin número de lote no hay idempotencia ni
// reintentos.
func (o *Orchestrator) RecordProduction(ctx context.Context, run entity.ProductionRun) (*ProductionResult, error) {
	plan, err := dominventory.PlanProduction(run)
	if err != nil {
		return nil, err
	}
	batch := strings.TrimSpace(run.BatchNumber)
	key := eventKey(entity.EventKindProduction, batch)
	if batch == "" {
		batch = uuid.New().String()
	}

	res := &ProductionResult{
		BatchNumber:   batch,
		GrossWeightKg: plan.GrossWeightKg,
		BranWeightKg:  plan.BranWeightKg,
		YieldPct:      plan.YieldPct,
	}
	err = o.runEvent(ctx, key, entity.EventKindProduction, func(repos ports.Repos) error {
		if _, err := loadWarehouse(ctx, repos, run.InputWarehouseID); err != nil {
			return err
		}
		if _, err := loadWarehouse(ctx, repos, run.OutputWarehouseID); err != nil {
			return err
		}
		stock := make([]*entity.StockEntry, 0, len(plan.Deltas))
		for _, d := range plan.Deltas {
			entry, err := o.stock.AdjustInTx(ctx, repos, inventory.AdjustInput{
				WarehouseID: d.Key.WarehouseID,
				ItemName:    d.Key.ItemName,
				ItemType:    d.Key.ItemType,
				SubType:     d.Key.SubType,
				Delta:       d.Delta,
				Reason:      entity.MovementReasonProduction,
				Reference:   batch,
				CreatedBy:   run.CreatedBy,
			})
			if err != nil {
				return err
			}
			stock = append(stock, entry)
		}
		res.Stock = stock
		return nil
	})
	if errors.Is(err, errReplayed) {
		res.Replayed = true
		if res.Stock, err = o.batchStock(ctx, batch); err != nil {
			return nil, err
		}
		o.log.Info().Str("batch", batch).Msg("corrida repetida, no se aplican cambios")
		return res, nil
	}
	if err != nil {
		o.log.Warn().Err(err).Str("batch", batch).Msg("corrida de producción rechazada")
		return nil, err
	}
	o.log.Info().
		Str("batch", batch).
		Str("wheat_kg", run.TotalWheatUsed.String()).
		Str("gross_kg", plan.GrossWeightKg.String()).
		Str("yield_pct", plan.YieldPct.String()).
		Msg("corrida de producción registrada")
	return res, nil
}

// batchStock saldos actuales de las entradas que tocó el lote.
func (o *Orchestrator) batchStock(ctx context.Context, batch string) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	err := o.txRunner.Run(ctx, func(repos ports.Repos) error {
		movements, err := repos.Movements.ListByReference(ctx, batch)
		if err != nil {
			return err
		}
		seen := make(map[entity.StockKey]bool, len(movements))
		for _, m := range movements {
			if m.Reason != entity.MovementReasonProduction || seen[m.StockKey] {
				continue
			}
			seen[m.StockKey] = true
			entry, err := repos.Stock.Get(ctx, m.StockKey)
			if err != nil {
				return err
			}
			if entry != nil {
				out = append(out, entry)
			}
		}
		return nil
	})
	return out, err
}
