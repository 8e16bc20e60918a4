package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jhoicas/molino-api/internal/application/accounts"
	"github.com/jhoicas/molino-api/internal/application/credit"
	"github.com/jhoicas/molino-api/internal/application/inventory"
	"github.com/jhoicas/molino-api/internal/application/ledger"
	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// errReplayed corta la transacción cuando la clave del evento ya fue aplicada.
var errReplayed = errors.New("evento ya aplicado")

// RetryConfig reintentos ante domain.ErrConflict: hasta MaxRetries además del intento inicial.
// Sólo se reintentan eventos con clave de idempotencia.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
}

// Result resultado de un evento de venta, compra o abono.
type Result struct {
	EventKey     string
	Invoice      *entity.Invoice
	Transactions []*entity.Transaction
	Stock        []*entity.StockEntry
	Outstanding  decimal.Decimal
	Replayed     bool
}

// Orchestrator compone registro de cuentas, stock, motor contable y política de crédito en eventos
// de negocio atómicos: todo el evento hace Commit o ninguna parte queda aplicada.
type Orchestrator struct {
	txRunner ports.TxRunner
	registry *accounts.AccountRegistry
	stock    *inventory.StockLedger
	engine   *ledger.Engine
	credit   *credit.Policy
	retry    RetryConfig
	log      zerolog.Logger
}

// New construye el orquestador.
func New(
	txRunner ports.TxRunner,
	registry *accounts.AccountRegistry,
	stock *inventory.StockLedger,
	engine *ledger.Engine,
	creditPolicy *credit.Policy,
	retry RetryConfig,
	log zerolog.Logger,
) *Orchestrator {
	if retry.InitialInterval <= 0 {
		retry.InitialInterval = 50 * time.Millisecond
	}
	return &Orchestrator{
		txRunner: txRunner,
		registry: registry,
		stock:    stock,
		engine:   engine,
		credit:   creditPolicy,
		retry:    retry,
		log:      log,
	}
}

// runEvent ejecuta fn en una transacción reclamando antes la clave del evento. Devuelve
// errReplayed si la clave ya existía. Con clave, un domain.ErrConflict reintenta el evento
// completo con backoff exponencial acotado.
func (o *Orchestrator) runEvent(ctx context.Context, key, kind string, fn func(repos ports.Repos) error) error {
	op := func() error {
		err := o.txRunner.Run(ctx, func(repos ports.Repos) error {
			if key != "" {
				claimed, err := repos.Events.Claim(ctx, &entity.LedgerEvent{Key: key, Kind: kind, CreatedAt: time.Now()})
				if err != nil {
					return err
				}
				if !claimed {
					return errReplayed
				}
			}
			return fn(repos)
		})
		if err == nil {
			return nil
		}
		if key != "" && errors.Is(err, domain.ErrConflict) {
			o.log.Warn().Err(err).Str("event_key", key).Msg("conflicto de concurrencia, reintentando evento")
			return err
		}
		return backoff.Permanent(err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = o.retry.InitialInterval
	retries := o.retry.MaxRetries
	if key == "" || retries < 0 {
		retries = 0
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx))
}

// replay reconstruye el resultado de un evento ya aplicado.
func (o *Orchestrator) replay(ctx context.Context, key, invoiceKind, invoiceNumber string) (*Result, error) {
	res := &Result{EventKey: key, Replayed: true}
	err := o.txRunner.Run(ctx, func(repos ports.Repos) error {
		list, err := repos.Transactions.ListByEventKey(ctx, key)
		if err != nil {
			return err
		}
		res.Transactions = list
		if invoiceNumber != "" {
			inv, err := repos.Invoices.GetByNumber(ctx, invoiceKind, invoiceNumber)
			if err != nil {
				return err
			}
			res.Invoice = inv
			if inv != nil && inv.Kind == entity.InvoiceKindSale && inv.PartyID != "" {
				res.Outstanding, err = repos.Invoices.SumOutstanding(ctx, inv.PartyID)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.log.Info().Str("event_key", key).Msg("evento repetido, se devuelve el resultado original")
	return res, nil
}

// cashCategory cuenta de disponible según el medio de pago.
func cashCategory(method string) string {
	switch method {
	case entity.PaymentMethodBank, entity.PaymentMethodCheque:
		return entity.CategoryBank
	}
	return entity.CategoryCash
}

func eventKey(kind, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	return kind + ":" + ref
}

func strPtr(s string) *string {
	return &s
}

// loadWarehouse devuelve la bodega o domain.ErrNotFound.
func loadWarehouse(ctx context.Context, repos ports.Repos, id string) (*entity.Warehouse, error) {
	wh, err := repos.Warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	return wh, nil
}
