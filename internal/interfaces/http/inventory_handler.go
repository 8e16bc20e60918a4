package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/molino-api/internal/application/dto"
	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/shopspring/decimal"
)

// InventoryHandler stock por bodega, movimientos y ajustes manuales (protegido).
type InventoryHandler struct {
	stock *inventory.StockLedger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockLedger) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

// Adjust POST /api/stock/adjustments
// delta positivo suma; negativo descuenta y responde 409 INSUFFICIENT_STOCK si no alcanza.
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	entry, err := h.stock.AdjustStock(c.UserContext(), inventory.AdjustInput{
		WarehouseID: in.WarehouseID,
		ItemName:    in.ItemName,
		ItemType:    in.ItemType,
		SubType:     in.SubType,
		Delta:       in.Delta,
		Reference:   in.Reference,
		CreatedBy:   GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToStockEntryResponse(entry))
}

// ListStock GET /api/warehouses/:id/stock
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	list, err := h.stock.ListStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.StockEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.ToStockEntryResponse(e))
	}
	return c.JSON(fiber.Map{"items": items})
}

// ListMovements GET /api/warehouses/:id/stock/movements?limit=&offset=
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page := pageParams(c)
	list, err := h.stock.ListMovements(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.ToStockMovementResponse(m))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  page.Response(),
	})
}

// LowStock GET /api/stock/low?warehouse_id=&threshold=
// Sin threshold usa el umbral configurado; sin warehouse_id revisa todas las bodegas.
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	var threshold *decimal.Decimal
	if raw := c.Query("threshold"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold inválido"})
		}
		threshold = &d
	}
	list, err := h.stock.LowStock(c.UserContext(), c.Query("warehouse_id"), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"items": list,
	})
}
