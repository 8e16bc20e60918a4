package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/molino-api/internal/application/dto"
	"github.com/jhoicas/molino-api/internal/domain/entity"
	apphttp "github.com/jhoicas/molino-api/internal/interfaces/http"
	"github.com/jhoicas/molino-api/internal/testutil"
	pkgjwt "github.com/jhoicas/molino-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func buildAPI(t *testing.T) (*fiber.App, *testutil.Env) {
	t.Helper()
	env := testutil.NewMemoryEnv(t)
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:  env.Warehouses,
		Registry:     env.Registry,
		Engine:       env.Engine,
		Stock:        env.Stock,
		Credit:       env.Credit,
		Orchestrator: env.Orchestrator,
		JWTSecret:    testJWTSecret,
	})
	return app, env
}

// call envía body como JSON con un token del rol indicado y decodifica la respuesta en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path, role string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "", role, testIssuer, testExpMin)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createWarehouse(t *testing.T, app *fiber.App, name string) string {
	t.Helper()
	var wh dto.WarehouseResponse
	resp := call(t, app, http.MethodPost, "/api/warehouses", "admin", dto.CreateWarehouseRequest{Name: name}, &wh)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return wh.ID
}

func saleBody(number, warehouseID, buyerID, method, total, paid string) map[string]interface{} {
	return map[string]interface{}{
		"invoice_number": number,
		"warehouse_id":   warehouseID,
		"party_id":       buyerID,
		"payment_method": method,
		"total_amount":   total,
		"paid_amount":    paid,
		"lines": []map[string]interface{}{
			{"item_name": "Ata", "item_type": "bags", "sub_type": "50kg", "quantity": "10"},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_VentaACreditoYRepeticion(t *testing.T) {
	app, env := buildAPI(t)
	whID := createWarehouse(t, app, "Bodega Central")

	resp := call(t, app, http.MethodPost, "/api/stock/adjustments", "bodeguero", map[string]interface{}{
		"warehouse_id": whID, "item_name": "Ata", "item_type": "bags", "sub_type": "50kg", "delta": "40",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buyer dto.BuyerResponse
	resp = call(t, app, http.MethodPost, "/api/buyers", "vendedor", map[string]interface{}{
		"name": "Panadería Sol", "credit_limit": "100000",
	}, &buyer)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var first dto.EventResponse
	resp = call(t, app, http.MethodPost, "/api/sales", "vendedor",
		saleBody("INV-100", whID, buyer.ID, entity.PaymentMethodCredit, "50000", "20000"), &first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.False(t, first.Replayed)
	assert.Len(t, first.Transactions, 2)
	require.NotNil(t, first.Outstanding)
	assert.True(t, first.Outstanding.Equal(testutil.Dec("30000")))
	require.NotNil(t, first.Invoice)
	assert.True(t, first.Invoice.RemainingAmount.Equal(testutil.Dec("30000")))

	var again dto.EventResponse
	resp = call(t, app, http.MethodPost, "/api/sales", "vendedor",
		saleBody("INV-100", whID, buyer.ID, entity.PaymentMethodCredit, "50000", "20000"), &again)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, again.Replayed)
	assert.Len(t, again.Transactions, 2)
	assert.True(t, env.Quantity(t, whID, "Ata", entity.ItemTypeBags, "50kg").Equal(testutil.Dec("30")), "la repetición no descuenta stock")

	var detail dto.BuyerResponse
	resp = call(t, app, http.MethodGet, "/api/buyers/"+buyer.ID, "vendedor", nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, detail.Outstanding)
	assert.True(t, detail.Outstanding.Equal(testutil.Dec("30000")))

	var settled dto.EventResponse
	resp = call(t, app, http.MethodPost, "/api/invoices/sale/INV-100/payments", "contador", map[string]interface{}{
		"amount": "30000", "method": "Bank",
	}, &settled)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.InvoiceStatusPaid, settled.Invoice.Status)
}

func TestAPI_MapeoDeErrores(t *testing.T) {
	app, _ := buildAPI(t)
	whID := createWarehouse(t, app, "Bodega Errores")

	var limited dto.BuyerResponse
	call(t, app, http.MethodPost, "/api/buyers", "admin", map[string]interface{}{
		"name": "Cliente Chico", "credit_limit": "1000",
	}, &limited)

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		body   interface{}
		status int
		code   string
	}{
		{"stock insuficiente", http.MethodPost, "/api/sales", "vendedor",
			saleBody("INV-1", whID, "", entity.PaymentMethodCash, "100", "100"), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"límite de crédito", http.MethodPost, "/api/sales", "vendedor",
			map[string]interface{}{"invoice_number": "INV-2", "warehouse_id": whID, "party_id": limited.ID,
				"payment_method": "Credit", "total_amount": "5000"}, http.StatusUnprocessableEntity, "CREDIT_LIMIT_EXCEEDED"},
		{"validación de payload", http.MethodPost, "/api/sales", "vendedor",
			map[string]interface{}{"payment_method": "Cash", "total_amount": "10"}, http.StatusBadRequest, "VALIDATION"},
		{"monto inválido", http.MethodPost, "/api/sales", "vendedor",
			map[string]interface{}{"invoice_number": "INV-3", "warehouse_id": whID, "payment_method": "Cash", "total_amount": "10.001"},
			http.StatusBadRequest, "VALIDATION"},
		{"venta sin bodega ni bodega en el token", http.MethodPost, "/api/sales", "vendedor",
			map[string]interface{}{"invoice_number": "INV-4", "payment_method": "Cash", "total_amount": "10", "paid_amount": "10"},
			http.StatusBadRequest, "MISSING_WAREHOUSE"},
		{"cuenta inexistente", http.MethodGet, "/api/accounts/no-existe", "contador", nil, http.StatusNotFound, "NOT_FOUND"},
		{"bodega duplicada", http.MethodPost, "/api/warehouses", "admin",
			dto.CreateWarehouseRequest{Name: "Bodega Errores"}, http.StatusConflict, "DUPLICATE"},
		{"rol sin permiso", http.MethodPost, "/api/stock/adjustments", "vendedor",
			map[string]interface{}{"warehouse_id": whID, "item_name": "Ata", "item_type": "bags", "delta": "1"},
			http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out dto.ErrorResponse
			resp := call(t, app, tc.method, tc.path, tc.role, tc.body, &out)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, out.Code)
		})
	}
}

func TestAPI_AsientoManualYExtracto(t *testing.T) {
	app, _ := buildAPI(t)
	whID := createWarehouse(t, app, "Oficina")

	var cash, salary dto.AccountResponse
	resp := call(t, app, http.MethodPost, "/api/accounts", "contador", map[string]interface{}{
		"category": entity.CategoryCash, "type": entity.AccountTypeAsset, "warehouse_id": whID, "opening_balance": "1000",
	}, &cash)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	call(t, app, http.MethodPost, "/api/accounts", "contador", map[string]interface{}{
		"category": entity.CategorySalaryExpense, "type": entity.AccountTypeExpense, "warehouse_id": whID,
	}, &salary)

	var tx dto.TransactionResponse
	resp = call(t, app, http.MethodPost, "/api/transactions", "contador", map[string]interface{}{
		"type": entity.TransactionTypeSalary, "debit_account_id": salary.ID, "credit_account_id": cash.ID,
		"amount": "400", "payment_status": entity.PaymentStatusPending,
	}, &tx)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.PaymentStatusPending, tx.PaymentStatus)

	var done dto.TransactionResponse
	resp = call(t, app, http.MethodPost, "/api/transactions/"+tx.ID+"/complete", "contador", nil, &done)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.PaymentStatusCompleted, done.PaymentStatus)

	var st dto.StatementResponse
	resp = call(t, app, http.MethodGet, "/api/accounts/"+cash.ID+"/statement", "admin", nil, &st)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, st.Account.CurrentBalance.Equal(testutil.Dec("600")))
	require.Len(t, st.Transactions, 1)
	assert.Equal(t, tx.Number, st.Transactions[0].Number)

	resp = call(t, app, http.MethodGet, "/api/accounts", "vendedor", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_ProduccionYStockBajo(t *testing.T) {
	app, _ := buildAPI(t)
	silo := createWarehouse(t, app, "Silo Norte")
	store := createWarehouse(t, app, "Almacén Norte")

	call(t, app, http.MethodPost, "/api/stock/adjustments", "admin", map[string]interface{}{
		"warehouse_id": silo, "item_name": entity.WheatItemName, "item_type": "wheat", "delta": "1200",
	}, nil)

	var run dto.ProductionRunResponse
	resp := call(t, app, http.MethodPost, "/api/production-runs", "bodeguero", map[string]interface{}{
		"batch_number": "LOT-77", "input_warehouse_id": silo, "output_warehouse_id": store, "total_wheat_used": "1000",
		"outputs": []map[string]interface{}{
			{"item_name": "Ata", "bag_weight": "50kg", "bag_qty": "18"},
			{"item_name": "Bran", "bag_weight": "25kg", "bag_qty": "2"},
		},
	}, &run)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, run.GrossWeightKg.Equal(testutil.Dec("900")))
	assert.True(t, run.BranWeightKg.Equal(testutil.Dec("50")))
	assert.True(t, run.YieldPct.Equal(testutil.Dec("90")))

	var low struct {
		Total int                `json:"total"`
		Items []dto.LowStockItem `json:"items"`
	}
	resp = call(t, app, http.MethodGet, "/api/stock/low?warehouse_id="+store, "bodeguero", nil, &low)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, low.Total, "18 y 2 bolsas quedan bajo el umbral de 100")

	var movements struct {
		Items []dto.StockMovementResponse `json:"items"`
	}
	resp = call(t, app, http.MethodGet, "/api/warehouses/"+silo+"/stock/movements", "bodeguero", nil, &movements)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, movements.Items, 2)
	assert.Equal(t, entity.MovementReasonProduction, movements.Items[0].Reason, "más reciente primero")
}
