package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/molino-api/internal/application/credit"
	"github.com/jhoicas/molino-api/internal/application/dto"
)

// BuyerHandler compradores a crédito (protegido).
type BuyerHandler struct {
	policy *credit.Policy
}

// NewBuyerHandler construye el handler.
func NewBuyerHandler(policy *credit.Policy) *BuyerHandler {
	return &BuyerHandler{policy: policy}
}

// Create POST /api/buyers
func (h *BuyerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBuyerRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	b, err := h.policy.CreateBuyer(c.UserContext(), credit.BuyerInput{
		Name:        in.Name,
		Phone:       in.Phone,
		CreditLimit: in.CreditLimit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBuyerResponse(b))
}

// GetByID GET /api/buyers/:id (incluye saldo pendiente)
func (h *BuyerHandler) GetByID(c *fiber.Ctx) error {
	ctx := c.UserContext()
	b, err := h.policy.GetBuyer(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	outstanding, err := h.policy.Outstanding(ctx, b.ID)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ToBuyerResponse(b)
	out.Outstanding = &outstanding
	return c.JSON(out)
}

// List GET /api/buyers?limit=&offset=
func (h *BuyerHandler) List(c *fiber.Ctx) error {
	page := pageParams(c)
	list, err := h.policy.ListBuyers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.BuyerResponse, 0, len(list))
	for _, b := range list {
		items = append(items, dto.ToBuyerResponse(b))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  page.Response(),
	})
}
