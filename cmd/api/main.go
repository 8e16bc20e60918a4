package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/molino-api/internal/application/accounts"
	"github.com/jhoicas/molino-api/internal/application/credit"
	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/jhoicas/molino-api/internal/application/ledger"
	"github.com/jhoicas/molino-api/internal/application/orchestrator"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/application/usecase"
	"github.com/jhoicas/molino-api/internal/domain/repository"
	"github.com/jhoicas/molino-api/internal/infrastructure/memory"
	"github.com/jhoicas/molino-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/molino-api/internal/interfaces/http"
	"github.com/jhoicas/molino-api/pkg/config"
	"github.com/jhoicas/molino-api/pkg/logger"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	threshold, err := decimal.NewFromString(cfg.Ledger.LowStockThreshold)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Ledger.LowStockThreshold).Msg("LEDGER_LOW_STOCK_THRESHOLD inválido")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		txRunner      ports.TxRunner
		warehouseRepo repository.WarehouseRepository
	)
	switch cfg.App.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		txRunner = store
		warehouseRepo = store.Warehouses()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.MigrateOnStart {
			applied, err := postgres.Migrate(cfg.DB.ConnectionString())
			if err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Bool("applied", applied).Msg("migraciones verificadas")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		warehouseRepo = postgres.NewWarehouseRepository(pool)
	}

	registry := accounts.NewAccountRegistry(txRunner)
	stockLedger := inventory.NewStockLedger(txRunner, threshold)
	engine := ledger.NewEngine(txRunner, cfg.Ledger.Currency, log.Component("ledger"))
	creditPolicy := credit.NewPolicy(txRunner)
	orch := orchestrator.New(txRunner, registry, stockLedger, engine, creditPolicy,
		orchestrator.RetryConfig{
			MaxRetries:      cfg.Ledger.MaxRetries,
			InitialInterval: cfg.Ledger.RetryInterval(),
		},
		log.Component("orchestrator"),
	)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)

	if cfg.Ledger.OverdueSweepMinutes > 0 {
		go sweepOverdue(ctx, creditPolicy, time.Duration(cfg.Ledger.OverdueSweepMinutes)*time.Minute, log)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC:  warehouseUC,
		Registry:     registry,
		Engine:       engine,
		Stock:        stockLedger,
		Credit:       creditPolicy,
		Orchestrator: orch,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// sweepOverdue marca como overdue las facturas vencidas cada interval hasta que ctx termine.
func sweepOverdue(ctx context.Context, policy *credit.Policy, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := policy.MarkOverdue(ctx, now)
			if err != nil {
				log.Error().Err(err).Msg("barrido de facturas vencidas")
				continue
			}
			if n > 0 {
				log.Info().Int64("invoices", n).Msg("facturas marcadas como vencidas")
			}
		}
	}
}
