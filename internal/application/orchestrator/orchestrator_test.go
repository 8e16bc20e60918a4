package orchestrator_test

import (
	"context"
	"testing"

	"github.com/jhoicas/molino-api/internal/application/ports"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/testutil"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func bagLine(item, weight, qty string) entity.TradeLine {
	return entity.TradeLine{ItemName: item, ItemType: entity.ItemTypeBags, SubType: weight, Quantity: testutil.Dec(qty)}
}

func pricedLine(item, weight, qty, price string) entity.TradeLine {
	l := bagLine(item, weight, qty)
	l.UnitPrice = testutil.Dec(price)
	return l
}

// invoice lee la factura directamente del almacenamiento (nil si no existe).
func invoice(t *testing.T, env *testutil.Env, kind, number string) *entity.Invoice {
	t.Helper()
	var inv *entity.Invoice
	err := env.Runner.Run(context.Background(), func(r ports.Repos) error {
		var err error
		inv, err = r.Invoices.GetByNumber(context.Background(), kind, number)
		return err
	})
	require.NoError(t, err)
	return inv
}

// linked asientos ligados a una factura.
func linked(t *testing.T, env *testutil.Env, invoiceID string) []*entity.Transaction {
	t.Helper()
	var list []*entity.Transaction
	err := env.Runner.Run(context.Background(), func(r ports.Repos) error {
		var err error
		list, err = r.Transactions.ListByInvoice(context.Background(), invoiceID)
		return err
	})
	require.NoError(t, err)
	return list
}
