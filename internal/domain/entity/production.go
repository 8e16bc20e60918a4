package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionOutput línea de salida de una corrida: N bolsas de un producto con un peso por bolsa.
type ProductionOutput struct {
	ItemName  string
	BagWeight string // subtipo, p. ej. "50kg"
	BagQty    decimal.Decimal
}

// ProductionRun corrida de molienda: consume trigo en una bodega y produce bolsas en otra.
type ProductionRun struct {
	BatchNumber       string
	InputWarehouseID  string
	OutputWarehouseID string
	TotalWheatUsed    decimal.Decimal // kg
	Outputs           []ProductionOutput
	CreatedBy         string
	Date              time.Time
}
