//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/molino-api/internal/application/accounts"
	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/jhoicas/molino-api/internal/application/usecase"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/infrastructure/postgres"
	"github.com/jhoicas/molino-api/internal/testutil"
	"github.com/jhoicas/molino-api/pkg/config"
)

// setupEnv levanta PostgreSQL en un contenedor, aplica las migraciones embebidas y cablea los
// servicios sobre el TxRunner real.
func setupEnv(t *testing.T) *testutil.Env {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("molino_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "iniciar contenedor postgres")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminar contenedor postgres: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	applied, err := postgres.Migrate(connStr)
	require.NoError(t, err)
	require.True(t, applied)
	applied, err = postgres.Migrate(connStr)
	require.NoError(t, err)
	require.False(t, applied, "la segunda ejecución no tiene cambios")

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: connStr, MaxConns: 20, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return testutil.NewEnv(postgres.NewTxRunner(pool), usecase.NewWarehouseUseCase(postgres.NewWarehouseRepository(pool)))
}

func adjustBags(warehouseID, delta string) inventory.AdjustInput {
	return inventory.AdjustInput{
		WarehouseID: warehouseID,
		ItemName:    "Ata",
		ItemType:    entity.ItemTypeBags,
		SubType:     "50kg",
		Delta:       testutil.Dec(delta),
		CreatedBy:   "u-pg",
	}
}

func TestIntegration_DecrementosConcurrentesNuncaNegativos(t *testing.T) {
	env := setupEnv(t)
	wh := env.Warehouse(t, "Bodega PG")
	env.Seed(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg", "100")

	var g errgroup.Group
	results := make(chan error, 25)
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			_, err := env.Stock.AdjustStock(context.Background(), adjustBags(wh.ID, "-10"))
			results <- err
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	ok, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, rejected)
	assert.True(t, env.Quantity(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg").IsZero())
}

func TestIntegration_UnaCuentaActivaPorAlcance(t *testing.T) {
	env := setupEnv(t)
	wh := env.Warehouse(t, "Bodega Cuentas")

	ids := make([]string, 10)
	var g errgroup.Group
	for i := range ids {
		i := i
		g.Go(func() error {
			acc, err := env.Registry.GetOrCreateAccount(context.Background(), accounts.AccountInput{
				Category: entity.CategoryCash, Type: entity.AccountTypeAsset, WarehouseID: &wh.ID,
			})
			if err != nil {
				return err
			}
			ids[i] = acc.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestIntegration_LimiteDeCreditoConcurrente(t *testing.T) {
	env := setupEnv(t)
	wh := env.Warehouse(t, "Bodega Crédito")
	buyer := env.Buyer(t, "Distribuidora PG", "10000")

	results := make(chan error, 4)
	var g errgroup.Group
	for i := 0; i < 4; i++ {
		i := i
		g.Go(func() error {
			_, err := env.Orchestrator.RecordSale(context.Background(), entity.Sale{
				InvoiceNumber: fmt.Sprintf("PG-%d", i),
				BuyerID:       buyer.ID,
				PaymentMethod: entity.PaymentMethodCredit,
				TotalAmount:   testutil.Dec("6000"),
			}, wh.ID, "u-pg")
			results <- err
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	accepted := 0
	for err := range results {
		if err == nil {
			accepted++
			continue
		}
		require.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
	}
	assert.Equal(t, 1, accepted)

	outstanding, err := env.Credit.Outstanding(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.True(t, outstanding.Equal(testutil.Dec("6000")))
}

func TestIntegration_VentaRepetidaNoDuplica(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Replay")
	env.Seed(t, wh.ID, "Maida", entity.ItemTypeBags, "50kg", "20")

	sale := entity.Sale{
		InvoiceNumber: "PG-R1",
		PaymentMethod: entity.PaymentMethodCash,
		TotalAmount:   testutil.Dec("1500.50"),
		PaidAmount:    testutil.Dec("1500.50"),
		Lines: []entity.TradeLine{
			{ItemName: "Maida", ItemType: entity.ItemTypeBags, SubType: "50kg", Quantity: testutil.Dec("5")},
		},
	}
	first, err := env.Orchestrator.RecordSale(ctx, sale, wh.ID, "u-pg")
	require.NoError(t, err)
	again, err := env.Orchestrator.RecordSale(ctx, sale, wh.ID, "u-pg")
	require.NoError(t, err)

	assert.True(t, again.Replayed)
	require.Len(t, again.Transactions, 1)
	assert.Equal(t, first.Transactions[0].Number, again.Transactions[0].Number)
	assert.True(t, env.Quantity(t, wh.ID, "Maida", entity.ItemTypeBags, "50kg").Equal(testutil.Dec("15")))
	assert.True(t, env.Balance(t, entity.CategoryCash, wh).Equal(testutil.Dec("1500.50")))
}
