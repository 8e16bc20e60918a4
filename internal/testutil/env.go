// Package testutil arma los servicios de aplicación sobre el almacenamiento en memoria para tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/molino-api/internal/application/accounts"
	"github.com/jhoicas/molino-api/internal/application/credit"
	"github.com/jhoicas/molino-api/internal/application/dto"
	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/jhoicas/molino-api/internal/application/ledger"
	"github.com/jhoicas/molino-api/internal/application/orchestrator"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/application/usecase"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Env servicios cableados sobre un mismo TxRunner.
type Env struct {
	Runner       ports.TxRunner
	Warehouses   *usecase.WarehouseUseCase
	Registry     *accounts.AccountRegistry
	Stock        *inventory.StockLedger
	Engine       *ledger.Engine
	Credit       *credit.Policy
	Orchestrator *orchestrator.Orchestrator
}

// NewMemoryEnv entorno sobre memory.Store.
func NewMemoryEnv(t *testing.T) *Env {
	t.Helper()
	store := memory.NewStore()
	return NewEnv(store, usecase.NewWarehouseUseCase(store.Warehouses()))
}

// NewEnv cablea los servicios sobre runner (memoria o PostgreSQL).
func NewEnv(runner ports.TxRunner, warehouses *usecase.WarehouseUseCase) *Env {
	log := zerolog.Nop()
	registry := accounts.NewAccountRegistry(runner)
	stock := inventory.NewStockLedger(runner, decimal.NewFromInt(100))
	engine := ledger.NewEngine(runner, "PKR", log)
	policy := credit.NewPolicy(runner)
	return &Env{
		Runner:       runner,
		Warehouses:   warehouses,
		Registry:     registry,
		Stock:        stock,
		Engine:       engine,
		Credit:       policy,
		Orchestrator: orchestrator.New(runner, registry, stock, engine, policy,
			orchestrator.RetryConfig{MaxRetries: 3, InitialInterval: time.Millisecond}, log),
	}
}

// Dec atajo para decimales literales.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Warehouse crea una bodega y devuelve su entidad.
func (e *Env) Warehouse(t *testing.T, name string) *entity.Warehouse {
	t.Helper()
	out, err := e.Warehouses.Create(context.Background(), dto.CreateWarehouseRequest{Name: name})
	require.NoError(t, err)
	return &entity.Warehouse{ID: out.ID, Name: out.Name}
}

// Buyer crea un comprador con el límite dado ("0" = sin límite).
func (e *Env) Buyer(t *testing.T, name, limit string) *entity.Buyer {
	t.Helper()
	b, err := e.Credit.CreateBuyer(context.Background(), credit.BuyerInput{Name: name, CreditLimit: Dec(limit)})
	require.NoError(t, err)
	return b
}

// Seed suma cantidad a una entrada de stock.
func (e *Env) Seed(t *testing.T, warehouseID, item, itemType, subType, qty string) {
	t.Helper()
	_, err := e.Stock.AdjustStock(context.Background(), inventory.AdjustInput{
		WarehouseID: warehouseID,
		ItemName:    item,
		ItemType:    itemType,
		SubType:     subType,
		Delta:       Dec(qty),
		Reference:   "seed",
		CreatedBy:   "test",
	})
	require.NoError(t, err)
}

// Quantity cantidad actual de una entrada (cero si no existe).
func (e *Env) Quantity(t *testing.T, warehouseID, item, itemType, subType string) decimal.Decimal {
	t.Helper()
	var qty decimal.Decimal
	err := e.Runner.Run(context.Background(), func(r ports.Repos) error {
		entry, err := r.Stock.Get(context.Background(), entity.StockKey{
			WarehouseID: warehouseID, ItemName: item, ItemType: itemType, SubType: subType,
		})
		if err != nil || entry == nil {
			return err
		}
		qty = entry.Quantity
		return nil
	})
	require.NoError(t, err)
	return qty
}

// Balance saldo actual de la cuenta de una categoría en la bodega.
func (e *Env) Balance(t *testing.T, category string, wh *entity.Warehouse) decimal.Decimal {
	t.Helper()
	var acc *entity.Account
	err := e.Runner.Run(context.Background(), func(r ports.Repos) error {
		var err error
		acc, err = e.Registry.EnsureCategory(context.Background(), r, category, wh)
		return err
	})
	require.NoError(t, err)
	return acc.CurrentBalance
}
