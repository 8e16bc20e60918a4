package dto

import (
	"time"

	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/adjustments.
type AdjustStockRequest struct {
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	ItemName    string          `json:"item_name" validate:"required,max=100"`
	ItemType    string          `json:"item_type" validate:"required,oneof=wheat bags"`
	SubType     string          `json:"sub_type" validate:"max=50"`
	Delta       decimal.Decimal `json:"delta"`
	Reference   string          `json:"reference" validate:"max=100"`
}

// StockEntryResponse entrada de stock en respuestas.
type StockEntryResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	ItemName    string          `json:"item_name"`
	ItemType    string          `json:"item_type"`
	SubType     string          `json:"sub_type,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LowStockItem entrada en o por debajo del umbral de reposición.
type LowStockItem struct {
	StockEntryResponse
	Status    string          `json:"status"` // LOW | OUT_OF_STOCK
	Threshold decimal.Decimal `json:"threshold"`
}

// StockMovementResponse movimiento de stock en respuestas.
type StockMovementResponse struct {
	ID            string          `json:"id"`
	WarehouseID   string          `json:"warehouse_id"`
	ItemName      string          `json:"item_name"`
	ItemType      string          `json:"item_type"`
	SubType       string          `json:"sub_type,omitempty"`
	Delta         decimal.Decimal `json:"delta"`
	QuantityAfter decimal.Decimal `json:"quantity_after"`
	Reason        string          `json:"reason"`
	Reference     string          `json:"reference,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductionOutputRequest línea de salida de una corrida.
type ProductionOutputRequest struct {
	ItemName  string          `json:"item_name" validate:"required,max=100"`
	BagWeight string          `json:"bag_weight" validate:"required,max=20"`
	BagQty    decimal.Decimal `json:"bag_qty"`
}

// ProductionRunRequest body para POST /api/production-runs.
type ProductionRunRequest struct {
	BatchNumber       string                    `json:"batch_number" validate:"max=100"`
	InputWarehouseID  string                    `json:"input_warehouse_id" validate:"required"`
	OutputWarehouseID string                    `json:"output_warehouse_id" validate:"required"`
	TotalWheatUsed    decimal.Decimal           `json:"total_wheat_used"`
	Outputs           []ProductionOutputRequest `json:"outputs" validate:"required,min=1,dive"`
}

// ProductionRunResponse resultado de la corrida.
type ProductionRunResponse struct {
	BatchNumber   string               `json:"batch_number"`
	Stock         []StockEntryResponse `json:"stock"`
	GrossWeightKg decimal.Decimal      `json:"gross_weight_kg"`
	BranWeightKg  decimal.Decimal      `json:"bran_weight_kg"`
	YieldPct      decimal.Decimal      `json:"yield_pct"`
	Replayed      bool                 `json:"replayed"`
}

// ToStockEntryResponse mapea la entidad a su respuesta.
func ToStockEntryResponse(e *entity.StockEntry) StockEntryResponse {
	return StockEntryResponse{
		WarehouseID: e.WarehouseID,
		ItemName:    e.ItemName,
		ItemType:    e.ItemType,
		SubType:     e.SubType,
		Quantity:    e.Quantity,
		Unit:        e.Unit,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToStockMovementResponse mapea un movimiento a su respuesta.
func ToStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		WarehouseID:   m.WarehouseID,
		ItemName:      m.ItemName,
		ItemType:      m.ItemType,
		SubType:       m.SubType,
		Delta:         m.Delta,
		QuantityAfter: m.QuantityAfter,
		Reason:        m.Reason,
		Reference:     m.Reference,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
