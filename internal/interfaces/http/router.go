package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/molino-api/internal/application/accounts"
	"github.com/jhoicas/molino-api/internal/application/credit"
	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/jhoicas/molino-api/internal/application/ledger"
	"github.com/jhoicas/molino-api/internal/application/orchestrator"
	"github.com/jhoicas/molino-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC  *usecase.WarehouseUseCase
	Registry     *accounts.AccountRegistry
	Engine       *ledger.Engine
	Stock        *inventory.StockLedger
	Credit       *credit.Policy
	Orchestrator *orchestrator.Orchestrator
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras además
// exigen rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	ledgerRoles := RequireRole(RoleAdmin, RoleAccountant)
	stockRoles := RequireRole(RoleAdmin, RoleStorekeeper)
	tradeRoles := RequireRole(RoleAdmin, RoleAccountant, RoleSeller, RoleStorekeeper)

	// Warehouses
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	inventoryHandler := NewInventoryHandler(deps.Stock)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", RequireRole(RoleAdmin), warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", RequireRole(RoleAdmin), warehouseHandler.Update)
	warehouses.Get("/:id/stock", inventoryHandler.ListStock)
	warehouses.Get("/:id/stock/movements", inventoryHandler.ListMovements)

	// Stock
	stock := api.Group("/stock")
	stock.Get("/low", inventoryHandler.LowStock)
	stock.Post("/adjustments", stockRoles, inventoryHandler.Adjust)

	// Accounts & transactions
	accountHandler := NewAccountHandler(deps.Registry, deps.Engine)
	accountsGroup := api.Group("/accounts", ledgerRoles)
	accountsGroup.Post("/", accountHandler.GetOrCreate)
	accountsGroup.Get("/", accountHandler.List)
	accountsGroup.Get("/:id", accountHandler.GetByID)
	accountsGroup.Get("/:id/statement", accountHandler.Statement)

	transactionHandler := NewTransactionHandler(deps.Engine)
	transactions := api.Group("/transactions", ledgerRoles)
	transactions.Post("/", transactionHandler.Post)
	transactions.Get("/:id", transactionHandler.GetByID)
	transactions.Post("/:id/complete", transactionHandler.Complete)

	// Buyers
	buyerHandler := NewBuyerHandler(deps.Credit)
	buyers := api.Group("/buyers")
	buyers.Post("/", tradeRoles, buyerHandler.Create)
	buyers.Get("/", buyerHandler.List)
	buyers.Get("/:id", buyerHandler.GetByID)

	// Business events
	invoiceHandler := NewInvoiceHandler(deps.Orchestrator)
	api.Post("/sales", tradeRoles, invoiceHandler.RecordSale)
	api.Post("/purchases", tradeRoles, invoiceHandler.RecordPurchase)
	api.Post("/invoices/:kind/:number/payments", tradeRoles, invoiceHandler.Settle)

	productionHandler := NewProductionHandler(deps.Orchestrator)
	api.Post("/production-runs", stockRoles, productionHandler.Record)
}
