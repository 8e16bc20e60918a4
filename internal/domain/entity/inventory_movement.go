package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de movimiento de stock.
const (
	MovementReasonSale       = "SALE"
	MovementReasonPurchase   = "PURCHASE"
	MovementReasonProduction = "PRODUCTION"
	MovementReasonAdjustment = "ADJUSTMENT"
)

// StockMovement registro de auditoría de un ajuste de stock aplicado (delta con signo).
type StockMovement struct {
	ID string
	StockKey
	Delta         decimal.Decimal // positivo entrada, negativo salida
	QuantityAfter decimal.Decimal
	Reason        string
	Reference     string // número de factura o lote de producción
	CreatedBy     string
	CreatedAt     time.Time
}
