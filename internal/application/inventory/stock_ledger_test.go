package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// ──────────────────────────────────────────────────────────────────────────────
// AdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_InsuficienteNoModifica(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	wh := env.Warehouse(t, "Bodega Trigo")
	env.Seed(t, wh.ID, entity.WheatItemName, entity.ItemTypeWheat, "", "300")

	_, err := env.Stock.AdjustStock(context.Background(), inventory.AdjustInput{
		WarehouseID: wh.ID,
		ItemName:    entity.WheatItemName,
		ItemType:    entity.ItemTypeWheat,
		Delta:       testutil.Dec("-500"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	qty := env.Quantity(t, wh.ID, entity.WheatItemName, entity.ItemTypeWheat, "")
	assert.True(t, qty.Equal(testutil.Dec("300")), "la cantidad debe quedar en 300, no en cero")
}

func TestAdjustStock_EntradaInexistenteConSalida(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	wh := env.Warehouse(t, "Bodega Vacía")

	_, err := env.Stock.AdjustStock(context.Background(), inventory.AdjustInput{
		WarehouseID: wh.ID, ItemName: "Ata", ItemType: entity.ItemTypeBags, SubType: "50kg", Delta: testutil.Dec("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = env.Stock.GetEntry(context.Background(), entity.StockKey{WarehouseID: wh.ID, ItemName: "Ata", ItemType: entity.ItemTypeBags, SubType: "50kg"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_CreaEntradaYMovimiento(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Harina")

	entry, err := env.Stock.AdjustStock(ctx, inventory.AdjustInput{
		WarehouseID: wh.ID, ItemName: " Ata ", ItemType: entity.ItemTypeBags, SubType: "50kg",
		Delta: testutil.Dec("20"), Reference: "conteo-1", CreatedBy: "u-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ata", entry.ItemName, "el nombre se normaliza")
	assert.Equal(t, entity.UnitBags, entry.Unit)

	moves, err := env.Stock.ListMovements(ctx, wh.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.MovementReasonAdjustment, moves[0].Reason)
	assert.True(t, moves[0].QuantityAfter.Equal(testutil.Dec("20")))
}

func TestAdjustStock_RechazaMasDeTresDecimales(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Escala")
	env.Seed(t, wh.ID, entity.WheatItemName, entity.ItemTypeWheat, "", "1")

	_, err := env.Stock.AdjustStock(ctx, inventory.AdjustInput{
		WarehouseID: wh.ID, ItemName: entity.WheatItemName, ItemType: entity.ItemTypeWheat, Delta: testutil.Dec("-0.0004"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, env.Quantity(t, wh.ID, entity.WheatItemName, entity.ItemTypeWheat, "").Equal(testutil.Dec("1")))

	entry, err := env.Stock.AdjustStock(ctx, inventory.AdjustInput{
		WarehouseID: wh.ID, ItemName: entity.WheatItemName, ItemType: entity.ItemTypeWheat, Delta: testutil.Dec("-0.125"),
	})
	require.NoError(t, err, "tres decimales caben en la columna")
	assert.True(t, entry.Quantity.Equal(testutil.Dec("0.875")))
}

func TestAdjustStock_Invalidos(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	wh := env.Warehouse(t, "B")
	ctx := context.Background()

	_, err := env.Stock.AdjustStock(ctx, inventory.AdjustInput{WarehouseID: wh.ID, ItemName: "Ata", ItemType: entity.ItemTypeBags})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "delta cero")

	_, err = env.Stock.AdjustStock(ctx, inventory.AdjustInput{WarehouseID: wh.ID, ItemName: "Ata", ItemType: "sacos", Delta: testutil.Dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo desconocido")

	_, err = env.Stock.AdjustStock(ctx, inventory.AdjustInput{WarehouseID: "no-existe", ItemName: "Ata", ItemType: entity.ItemTypeBags, Delta: testutil.Dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_SalidasConcurrentesNuncaNegativas(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	wh := env.Warehouse(t, "Bodega Concurrente")
	env.Seed(t, wh.ID, "Maida", entity.ItemTypeBags, "50kg", "10")

	var g errgroup.Group
	results := make([]error, 25)
	for i := range results {
		i := i
		g.Go(func() error {
			_, results[i] = env.Stock.AdjustStock(context.Background(), inventory.AdjustInput{
				WarehouseID: wh.ID, ItemName: "Maida", ItemType: entity.ItemTypeBags, SubType: "50kg", Delta: testutil.Dec("-1"),
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ok, rejected := 0, 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		rejected++
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, rejected)
	assert.True(t, env.Quantity(t, wh.ID, "Maida", entity.ItemTypeBags, "50kg").IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// LowStock
// ──────────────────────────────────────────────────────────────────────────────

func TestLowStock_AgotadosPrimero(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Baja")
	env.Seed(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg", "40")
	env.Seed(t, wh.ID, "Maida", entity.ItemTypeBags, "50kg", "5")
	env.Seed(t, wh.ID, entity.WheatItemName, entity.ItemTypeWheat, "", "5000")
	_, err := env.Stock.AdjustStock(ctx, inventory.AdjustInput{
		WarehouseID: wh.ID, ItemName: "Maida", ItemType: entity.ItemTypeBags, SubType: "50kg", Delta: testutil.Dec("-5"),
	})
	require.NoError(t, err)

	items, err := env.Stock.LowStock(ctx, wh.ID, nil)
	require.NoError(t, err)
	require.Len(t, items, 2, "el trigo supera el umbral de 100")
	assert.Equal(t, "Maida", items[0].ItemName)
	assert.Equal(t, inventory.StockStatusOut, items[0].Status)
	assert.Equal(t, inventory.StockStatusLow, items[1].Status)

	threshold := testutil.Dec("10")
	items, err = env.Stock.LowStock(ctx, "", &threshold)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
