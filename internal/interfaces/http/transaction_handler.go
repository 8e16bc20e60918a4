package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/molino-api/internal/application/dto"
	"github.com/jhoicas/molino-api/internal/application/ledger"
)

// TransactionHandler asientos manuales (salarios, traslados, ajustes) y su ciclo de pago.
type TransactionHandler struct {
	engine *ledger.Engine
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(engine *ledger.Engine) *TransactionHandler {
	return &TransactionHandler{engine: engine}
}

// Post POST /api/transactions
func (h *TransactionHandler) Post(c *fiber.Ctx) error {
	var in dto.PostTransactionRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	meta := ledger.Metadata{
		Description:   in.Description,
		WarehouseID:   in.WarehouseID,
		CreatedBy:     GetUserID(c),
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: in.PaymentStatus,
		DueDate:       in.DueDate,
	}
	if in.Date != nil {
		meta.Date = *in.Date
	}
	t, err := h.engine.PostTransaction(c.UserContext(), ledger.PostingInput{
		Type:            in.Type,
		DebitAccountID:  in.DebitAccountID,
		CreditAccountID: in.CreditAccountID,
		Amount:          in.Amount,
		Metadata:        meta,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransactionResponse(t))
}

// GetByID GET /api/transactions/:id
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.engine.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToTransactionResponse(t))
}

// Complete POST /api/transactions/:id/complete (Pending -> Completed)
func (h *TransactionHandler) Complete(c *fiber.Ctx) error {
	t, err := h.engine.CompleteTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToTransactionResponse(t))
}
