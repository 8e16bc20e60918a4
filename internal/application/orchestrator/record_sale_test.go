package orchestrator_test

import (
	"context"
	"testing"

	"github.com/jhoicas/molino-api/internal/domain"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	"github.com/jhoicas/molino-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSale_CreditoConAbonoInicial(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Principal")
	buyer := env.Buyer(t, "Comercial Punjab", "100000")
	env.Seed(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg", "200")

	res, err := env.Orchestrator.RecordSale(ctx, entity.Sale{
		InvoiceNumber: "INV-1001",
		BuyerID:       buyer.ID,
		PaymentMethod: entity.PaymentMethodCredit,
		TotalAmount:   testutil.Dec("50000"),
		PaidAmount:    testutil.Dec("20000"),
		Lines:         []entity.TradeLine{bagLine("Ata", "50kg", "25")},
	}, wh.ID, "u-1")
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2, "exactamente dos asientos")

	sale := res.Transactions[0]
	assert.Equal(t, entity.TransactionTypeSale, sale.Type)
	assert.Equal(t, entity.PaymentStatusPending, sale.PaymentStatus)
	assert.True(t, sale.IsReceivable)
	assert.True(t, sale.Amount.Equal(testutil.Dec("50000")))

	receipt := res.Transactions[1]
	assert.Equal(t, entity.TransactionTypeReceipt, receipt.Type)
	assert.Equal(t, entity.PaymentStatusCompleted, receipt.PaymentStatus)
	assert.True(t, receipt.Amount.Equal(testutil.Dec("20000")))
	assert.Equal(t, sale.DebitAccountID, receipt.CreditAccountID, "el abono acredita Cuentas por Cobrar")

	assert.True(t, res.Outstanding.Equal(testutil.Dec("30000")))
	assert.Equal(t, entity.InvoiceStatusPending, res.Invoice.Status)
	assert.True(t, res.Invoice.RemainingAmount.Equal(testutil.Dec("30000")))

	assert.True(t, env.Balance(t, entity.CategoryAccountsReceivable, wh).Equal(testutil.Dec("30000")))
	assert.True(t, env.Balance(t, entity.CategoryCash, wh).Equal(testutil.Dec("20000")))
	assert.True(t, env.Balance(t, entity.CategorySalesRevenue, wh).Equal(testutil.Dec("-50000")))
	assert.True(t, env.Quantity(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg").Equal(testutil.Dec("175")))
}

func TestRecordSale_ContadoPorBanco(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Contado")
	env.Seed(t, wh.ID, "Maida", entity.ItemTypeBags, "25kg", "10")

	res, err := env.Orchestrator.RecordSale(ctx, entity.Sale{
		InvoiceNumber: "INV-2001",
		PaymentMethod: entity.PaymentMethodBank,
		TotalAmount:   testutil.Dec("12000"),
		PaidAmount:    testutil.Dec("12000"),
		Lines:         []entity.TradeLine{bagLine("Maida", "25kg", "4")},
	}, wh.ID, "u-1")
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, entity.PaymentStatusCompleted, res.Transactions[0].PaymentStatus)
	assert.Equal(t, entity.InvoiceStatusPaid, res.Invoice.Status)

	assert.True(t, env.Balance(t, entity.CategoryBank, wh).Equal(testutil.Dec("12000")))
	assert.True(t, env.Balance(t, entity.CategoryCash, wh).IsZero())
	assert.True(t, env.Balance(t, entity.CategoryAccountsReceivable, wh).IsZero(), "venta de contado no toca Cuentas por Cobrar")
}

func TestRecordSale_CreditoPagadoCompletoCierraPending(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	wh := env.Warehouse(t, "Bodega Pagada")
	buyer := env.Buyer(t, "Cliente", "0")

	res, err := env.Orchestrator.RecordSale(context.Background(), entity.Sale{
		InvoiceNumber: "INV-3001",
		BuyerID:       buyer.ID,
		PaymentMethod: entity.PaymentMethodCredit,
		TotalAmount:   testutil.Dec("900"),
		PaidAmount:    testutil.Dec("900"),
	}, wh.ID, "u-1")
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	for _, tx := range linked(t, env, res.Invoice.ID) {
		assert.Equal(t, entity.PaymentStatusCompleted, tx.PaymentStatus, tx.Number)
	}
}

func TestRecordSale_StockInsuficienteSinEfectos(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Corta")
	buyer := env.Buyer(t, "Cliente", "100000")
	env.Seed(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg", "5")

	_, err := env.Orchestrator.RecordSale(ctx, entity.Sale{
		InvoiceNumber: "INV-4001",
		BuyerID:       buyer.ID,
		PaymentMethod: entity.PaymentMethodCredit,
		TotalAmount:   testutil.Dec("10000"),
		Lines: []entity.TradeLine{
			bagLine("Ata", "50kg", "3"),
			bagLine("Ata", "50kg", "3"),
		},
	}, wh.ID, "u-1")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Nil(t, invoice(t, env, entity.InvoiceKindSale, "INV-4001"), "la factura no debe quedar")
	assert.True(t, env.Quantity(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg").Equal(testutil.Dec("5")))
	outstanding, err := env.Credit.Outstanding(ctx, buyer.ID)
	require.NoError(t, err)
	assert.True(t, outstanding.IsZero())
	assert.True(t, env.Balance(t, entity.CategoryAccountsReceivable, wh).IsZero())
}

func TestRecordSale_RepeticionIdempotente(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Idempotente")
	env.Seed(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg", "10")

	sale := entity.Sale{
		InvoiceNumber: "INV-5001",
		PaymentMethod: entity.PaymentMethodCash,
		TotalAmount:   testutil.Dec("3000"),
		PaidAmount:    testutil.Dec("3000"),
		Lines:         []entity.TradeLine{bagLine("Ata", "50kg", "2")},
	}
	first, err := env.Orchestrator.RecordSale(ctx, sale, wh.ID, "u-1")
	require.NoError(t, err)
	second, err := env.Orchestrator.RecordSale(ctx, sale, wh.ID, "u-1")
	require.NoError(t, err)

	assert.False(t, first.Replayed)
	assert.True(t, second.Replayed)
	require.Len(t, second.Transactions, 1)
	assert.Equal(t, first.Transactions[0].ID, second.Transactions[0].ID)
	assert.True(t, env.Quantity(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg").Equal(testutil.Dec("8")), "el stock se descuenta una sola vez")
	assert.True(t, env.Balance(t, entity.CategoryCash, wh).Equal(testutil.Dec("3000")))
}

func TestRecordSale_PreciosCuadranConElTotal(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega Precios")
	env.Seed(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg", "10")
	env.Seed(t, wh.ID, "Maida", entity.ItemTypeBags, "25kg", "10")

	res, err := env.Orchestrator.RecordSale(ctx, entity.Sale{
		InvoiceNumber: "INV-2100",
		PaymentMethod: entity.PaymentMethodCash,
		TotalAmount:   testutil.Dec("1650.50"),
		PaidAmount:    testutil.Dec("1650.50"),
		Lines: []entity.TradeLine{
			pricedLine("Ata", "50kg", "4", "300"),
			pricedLine("Maida", "25kg", "3", "150.1666"),
		},
	}, wh.ID, "u-1")
	require.NoError(t, err, "4×300 + 3×150.1666 = 1650.4998 redondea a 1650.50")
	assert.Equal(t, entity.InvoiceStatusPaid, res.Invoice.Status)
	assert.True(t, env.Quantity(t, wh.ID, "Ata", entity.ItemTypeBags, "50kg").Equal(testutil.Dec("6")))
}

func TestRecordSale_Validaciones(t *testing.T) {
	env := testutil.NewMemoryEnv(t)
	ctx := context.Background()
	wh := env.Warehouse(t, "Bodega")

	cases := []struct {
		name string
		sale entity.Sale
		want error
	}{
		{"sin número", entity.Sale{PaymentMethod: entity.PaymentMethodCash, TotalAmount: testutil.Dec("1"), PaidAmount: testutil.Dec("1")}, domain.ErrInvalidInput},
		{"medio desconocido", entity.Sale{InvoiceNumber: "X", PaymentMethod: "Barter", TotalAmount: testutil.Dec("1")}, domain.ErrInvalidInput},
		{"pagado mayor al total", entity.Sale{InvoiceNumber: "X", PaymentMethod: entity.PaymentMethodCash, TotalAmount: testutil.Dec("1"), PaidAmount: testutil.Dec("2")}, domain.ErrInvalidInput},
		{"crédito sin comprador", entity.Sale{InvoiceNumber: "X", PaymentMethod: entity.PaymentMethodCredit, TotalAmount: testutil.Dec("1")}, domain.ErrInvalidInput},
		{"comprador inexistente", entity.Sale{InvoiceNumber: "X", BuyerID: "nadie", PaymentMethod: entity.PaymentMethodCredit, TotalAmount: testutil.Dec("1")}, domain.ErrNotFound},
		{"cantidad con 4 decimales", entity.Sale{InvoiceNumber: "X", PaymentMethod: entity.PaymentMethodCash, TotalAmount: testutil.Dec("1"), PaidAmount: testutil.Dec("1"),
			Lines: []entity.TradeLine{{ItemName: entity.WheatItemName, ItemType: entity.ItemTypeWheat, Quantity: testutil.Dec("10.0001")}}}, domain.ErrInvalidInput},
		{"precios no cuadran", entity.Sale{InvoiceNumber: "X", PaymentMethod: entity.PaymentMethodCash, TotalAmount: testutil.Dec("1000"), PaidAmount: testutil.Dec("1000"),
			Lines: []entity.TradeLine{pricedLine("Ata", "50kg", "4", "300")}}, domain.ErrInvalidInput},
		{"precio sólo en una línea", entity.Sale{InvoiceNumber: "X", PaymentMethod: entity.PaymentMethodCash, TotalAmount: testutil.Dec("1200"), PaidAmount: testutil.Dec("1200"),
			Lines: []entity.TradeLine{pricedLine("Ata", "50kg", "4", "300"), bagLine("Maida", "25kg", "1")}}, domain.ErrInvalidInput},
		{"precio negativo", entity.Sale{InvoiceNumber: "X", PaymentMethod: entity.PaymentMethodCash, TotalAmount: testutil.Dec("1"), PaidAmount: testutil.Dec("1"),
			Lines: []entity.TradeLine{pricedLine("Ata", "50kg", "1", "-1")}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Orchestrator.RecordSale(ctx, tc.sale, wh.ID, "u-1")
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := env.Orchestrator.RecordSale(ctx, entity.Sale{
		InvoiceNumber: "Y", PaymentMethod: entity.PaymentMethodCash, TotalAmount: testutil.Dec("1"), PaidAmount: testutil.Dec("1"),
	}, "bodega-fantasma", "u-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
