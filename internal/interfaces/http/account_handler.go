package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/molino-api/internal/application/accounts"
	"github.com/jhoicas/molino-api/internal/application/dto"
	"github.com/jhoicas/molino-api/internal/application/ledger"
)

// AccountHandler plan de cuentas y extractos.
type AccountHandler struct {
	registry *accounts.AccountRegistry
	engine   *ledger.Engine
}

// NewAccountHandler construye el handler.
func NewAccountHandler(registry *accounts.AccountRegistry, engine *ledger.Engine) *AccountHandler {
	return &AccountHandler{registry: registry, engine: engine}
}

// GetOrCreate POST /api/accounts
// Idempotente: con una cuenta activa del mismo alcance devuelve esa misma cuenta.
func (h *AccountHandler) GetOrCreate(c *fiber.Ctx) error {
	var in dto.GetOrCreateAccountRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	acc, err := h.registry.GetOrCreateAccount(c.UserContext(), accounts.AccountInput{
		Category:       in.Category,
		Type:           in.Type,
		Name:           in.Name,
		WarehouseID:    in.WarehouseID,
		OpeningBalance: in.OpeningBalance,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAccountResponse(acc))
}

// GetByID GET /api/accounts/:id
func (h *AccountHandler) GetByID(c *fiber.Ctx) error {
	acc, err := h.registry.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAccountResponse(acc))
}

// List GET /api/accounts?warehouse_id=
func (h *AccountHandler) List(c *fiber.Ctx) error {
	page := pageParams(c)
	var warehouseID *string
	if wh := c.Query("warehouse_id"); wh != "" {
		warehouseID = &wh
	}
	list, err := h.registry.ListAccounts(c.UserContext(), warehouseID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.AccountResponse, 0, len(list))
	for _, a := range list {
		items = append(items, dto.ToAccountResponse(a))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  page.Response(),
	})
}

// Statement GET /api/accounts/:id/statement
func (h *AccountHandler) Statement(c *fiber.Ctx) error {
	page := pageParams(c)
	st, err := h.engine.AccountStatement(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StatementResponse{
		Account:      dto.ToAccountResponse(st.Account),
		Transactions: dto.ToTransactionResponses(st.Transactions),
		Page:         page.Response(),
	})
}
