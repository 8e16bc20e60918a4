package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/molino-api/internal/application/dto"
	"github.com/jhoicas/molino-api/internal/application/orchestrator"
	"github.com/jhoicas/molino-api/internal/domain/entity"
)

// InvoiceHandler ventas, compras y abonos a facturas. Cada petición es un evento atómico del
// orquestador; repetir el mismo número de factura devuelve el resultado original con replayed=true.
type InvoiceHandler struct {
	orch *orchestrator.Orchestrator
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(orch *orchestrator.Orchestrator) *InvoiceHandler {
	return &InvoiceHandler{orch: orch}
}

// RecordSale POST /api/sales
func (h *InvoiceHandler) RecordSale(c *fiber.Ctx) error {
	var in dto.TradeRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	warehouseID, ok := ResolveWarehouseID(c, in.WarehouseID)
	if !ok {
		return missingWarehouse(c)
	}
	res, err := h.orch.RecordSale(c.UserContext(), entity.Sale{
		InvoiceNumber: in.InvoiceNumber,
		BuyerID:       in.PartyID,
		PaymentMethod: in.PaymentMethod,
		PaidThrough:   in.PaidThrough,
		TotalAmount:   in.TotalAmount,
		PaidAmount:    in.Paid(),
		DueDate:       in.DueDate,
		Lines:         in.TradeLines(),
	}, warehouseID, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(eventStatus(res)).JSON(toEventResponse(res))
}

// RecordPurchase POST /api/purchases
func (h *InvoiceHandler) RecordPurchase(c *fiber.Ctx) error {
	var in dto.TradeRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	warehouseID, ok := ResolveWarehouseID(c, in.WarehouseID)
	if !ok {
		return missingWarehouse(c)
	}
	res, err := h.orch.RecordPurchase(c.UserContext(), entity.Purchase{
		InvoiceNumber: in.InvoiceNumber,
		SupplierID:    in.PartyID,
		PaymentMethod: in.PaymentMethod,
		PaidThrough:   in.PaidThrough,
		TotalAmount:   in.TotalAmount,
		PaidAmount:    in.Paid(),
		DueDate:       in.DueDate,
		Lines:         in.TradeLines(),
	}, warehouseID, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(eventStatus(res)).JSON(toEventResponse(res))
}

// Settle POST /api/invoices/:kind/:number/payments
func (h *InvoiceHandler) Settle(c *fiber.Ctx) error {
	var in dto.SettleInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	res, err := h.orch.SettleInvoice(c.UserContext(), orchestrator.Settlement{
		InvoiceKind:   c.Params("kind"),
		InvoiceNumber: c.Params("number"),
		Amount:        in.Amount,
		Method:        in.Method,
		Reference:     in.Reference,
		CreatedBy:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(eventStatus(res)).JSON(toEventResponse(res))
}

func missingWarehouse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "MISSING_WAREHOUSE",
		Message: "warehouse_id requerido: el token no trae bodega por defecto",
	})
}

func eventStatus(res *orchestrator.Result) int {
	if res.Replayed {
		return fiber.StatusOK
	}
	return fiber.StatusCreated
}

func toEventResponse(res *orchestrator.Result) dto.EventResponse {
	out := dto.EventResponse{
		EventKey:     res.EventKey,
		Invoice:      dto.ToInvoiceResponse(res.Invoice),
		Transactions: dto.ToTransactionResponses(res.Transactions),
		Replayed:     res.Replayed,
	}
	for _, e := range res.Stock {
		out.Stock = append(out.Stock, dto.ToStockEntryResponse(e))
	}
	if res.Invoice != nil && res.Invoice.Kind == entity.InvoiceKindSale && res.Invoice.PartyID != "" {
		outstanding := res.Outstanding
		out.Outstanding = &outstanding
	}
	return out
}
