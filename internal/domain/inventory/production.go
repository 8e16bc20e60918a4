package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	domledger "github.com/jhoicas/molino-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// StockDelta ajuste con signo sobre una entrada de stock.
type StockDelta struct {
	Key   entity.StockKey
	Delta decimal.Decimal
}

// ProductionPlan ajustes de stock y totales de una corrida de molienda.
// GrossWeightKg excluye el salvado (bran); BranWeightKg lo reporta aparte.
type ProductionPlan struct {
	Deltas        []StockDelta
	GrossWeightKg decimal.Decimal
	BranWeightKg  decimal.Decimal
	YieldPct      decimal.Decimal
}

// IsBran indica si un producto de salida es salvado: el nombre completo debe ser "bran".
func IsBran(itemName string) bool {
	return strings.EqualFold(strings.TrimSpace(itemName), "bran")
}

// ParseBagWeight convierte "50kg", "50 KG" o "50" en kilogramos.
func ParseBagWeight(s string) (decimal.Decimal, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSpace(strings.TrimSuffix(v, "kg"))
	w, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: peso de bolsa %q", domain.ErrInvalidInput, s)
	}
	if !w.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: peso de bolsa %q", domain.ErrInvalidInput, s)
	}
	return w, nil
}

// PlanProduction valida la corrida y calcula los deltas: primero el consumo de trigo en la bodega
// de entrada, luego una entrada por (producto, peso) en la bodega de salida. Líneas repetidas
// del mismo producto y peso se acumulan en un solo delta.
func PlanProduction(run entity.ProductionRun) (*ProductionPlan, error) {
	if strings.TrimSpace(run.InputWarehouseID) == "" || strings.TrimSpace(run.OutputWarehouseID) == "" {
		return nil, fmt.Errorf("%w: bodegas de entrada y salida requeridas", domain.ErrInvalidInput)
	}
	if !run.TotalWheatUsed.IsPositive() {
		return nil, fmt.Errorf("%w: trigo consumido debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if err := domledger.ValidateQuantityScale(run.TotalWheatUsed); err != nil {
		return nil, err
	}
	if len(run.Outputs) == 0 {
		return nil, fmt.Errorf("%w: la corrida no tiene salidas", domain.ErrInvalidInput)
	}

	plan := &ProductionPlan{
		Deltas: []StockDelta{{
			Key: entity.StockKey{
				WarehouseID: run.InputWarehouseID,
				ItemName:    entity.WheatItemName,
				ItemType:    entity.ItemTypeWheat,
			},
			Delta: run.TotalWheatUsed.Neg(),
		}},
		GrossWeightKg: decimal.Zero,
		BranWeightKg:  decimal.Zero,
	}

	index := make(map[entity.StockKey]int, len(run.Outputs))
	for _, out := range run.Outputs {
		name := strings.TrimSpace(out.ItemName)
		if name == "" {
			return nil, fmt.Errorf("%w: producto de salida sin nombre", domain.ErrInvalidInput)
		}
		if !out.BagQty.IsPositive() || !out.BagQty.Equal(out.BagQty.Truncate(0)) {
			return nil, fmt.Errorf("%w: cantidad de bolsas de %s debe ser un entero positivo", domain.ErrInvalidInput, name)
		}
		weight, err := ParseBagWeight(out.BagWeight)
		if err != nil {
			return nil, err
		}
		kg := weight.Mul(out.BagQty)
		if IsBran(name) {
			plan.BranWeightKg = plan.BranWeightKg.Add(kg)
		} else {
			plan.GrossWeightKg = plan.GrossWeightKg.Add(kg)
		}

		key := entity.StockKey{
			WarehouseID: run.OutputWarehouseID,
			ItemName:    name,
			ItemType:    entity.ItemTypeBags,
			SubType:     strings.TrimSpace(out.BagWeight),
		}
		if i, ok := index[key]; ok {
			plan.Deltas[i].Delta = plan.Deltas[i].Delta.Add(out.BagQty)
			continue
		}
		index[key] = len(plan.Deltas)
		plan.Deltas = append(plan.Deltas, StockDelta{Key: key, Delta: out.BagQty})
	}

	plan.YieldPct = plan.GrossWeightKg.Div(run.TotalWheatUsed).Mul(decimal.NewFromInt(100)).Round(2)
	return plan, nil
}
