package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/molino-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/molino-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testWarehouse = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "molino-api-test"
	testExpMin    = 60
)

// signToken genera un Bearer con la bodega y el rol indicados (vacíos permitidos).
func signToken(t *testing.T, warehouseID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, warehouseID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// tokenForRole token con la bodega de pruebas.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return signToken(t, testWarehouse, role)
}

// guardedApp ruta GET /guarded detrás de AuthMiddleware + RequireRole(roles...).
func guardedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/guarded",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"role": apphttp.GetRole(c)}) },
	)
	return app
}

// warehouseApp ruta POST /resolve que devuelve la bodega resuelta para el body recibido.
func warehouseApp() *fiber.App {
	app := fiber.New()
	app.Post("/resolve", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		var in struct {
			WarehouseID string `json:"warehouse_id"`
		}
		if err := c.BodyParser(&in); err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		id, ok := apphttp.ResolveWarehouseID(c, in.WarehouseID)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "MISSING_WAREHOUSE"})
		}
		return c.JSON(fiber.Map{"warehouse_id": id})
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path, auth, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_Matriz(t *testing.T) {
	cases := []struct {
		name     string
		allowed  []string
		auth     func(t *testing.T) string
		wantCode int
		wantBody string
	}{
		{"contador en ruta contable", []string{apphttp.RoleAdmin, apphttp.RoleAccountant},
			func(t *testing.T) string { return tokenForRole(t, apphttp.RoleAccountant) }, http.StatusOK, apphttp.RoleAccountant},
		{"bodeguero en ruta de stock", []string{apphttp.RoleAdmin, apphttp.RoleStorekeeper},
			func(t *testing.T) string { return tokenForRole(t, apphttp.RoleStorekeeper) }, http.StatusOK, apphttp.RoleStorekeeper},
		{"vendedor en ruta contable", []string{apphttp.RoleAdmin, apphttp.RoleAccountant},
			func(t *testing.T) string { return tokenForRole(t, apphttp.RoleSeller) }, http.StatusForbidden, "FORBIDDEN"},
		{"bodeguero en ruta de ventas", []string{apphttp.RoleSeller},
			func(t *testing.T) string { return tokenForRole(t, apphttp.RoleStorekeeper) }, http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{apphttp.RoleAdmin},
			func(t *testing.T) string { return tokenForRole(t, "") }, http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin Authorization", []string{apphttp.RoleAdmin},
			func(t *testing.T) string { return "" }, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto a Bearer", []string{apphttp.RoleAdmin},
			func(t *testing.T) string { return "Basic dXNlcjpwYXNz" }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", []string{apphttp.RoleAdmin},
			func(t *testing.T) string { return "Bearer token.invalido.aqui" }, http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := send(t, guardedApp(tc.allowed...), http.MethodGet, "/guarded", tc.auth(t), "")
			defer resp.Body.Close()

			assert.Equal(t, tc.wantCode, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tc.wantBody)
		})
	}
}

func TestRequireRole_FirmaAjena_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secreto", testUserID, testWarehouse, apphttp.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := send(t, guardedApp(apphttp.RoleAdmin), http.MethodGet, "/guarded", "Bearer "+tok, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware: claims y bodega por defecto
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtractaClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":      apphttp.GetUserID(c),
			"warehouse_id": apphttp.GetWarehouseID(c),
			"role":         apphttp.GetRole(c),
		})
	})

	resp := send(t, app, http.MethodGet, "/me", tokenForRole(t, apphttp.RoleSeller), "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testWarehouse, body["warehouse_id"])
	assert.Equal(t, apphttp.RoleSeller, body["role"])
}

func TestResolveWarehouseID(t *testing.T) {
	const requested = "00000000-0000-0000-0000-0000000000aa"
	cases := []struct {
		name      string
		tokenWH   string
		body      string
		wantCode  int
		wantWHOut string
	}{
		{"body vacío usa la bodega del token", testWarehouse, `{}`, http.StatusOK, testWarehouse},
		{"body con espacios usa la del token", testWarehouse, `{"warehouse_id":"   "}`, http.StatusOK, testWarehouse},
		{"la bodega del body gana", testWarehouse, `{"warehouse_id":"` + requested + `"}`, http.StatusOK, requested},
		{"token sin bodega y body con bodega", "", `{"warehouse_id":"` + requested + `"}`, http.StatusOK, requested},
		{"token sin bodega y body vacío", "", `{}`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := send(t, warehouseApp(), http.MethodPost, "/resolve", signToken(t, tc.tokenWH, apphttp.RoleSeller), tc.body)
			defer resp.Body.Close()
			require.Equal(t, tc.wantCode, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tc.wantCode == http.StatusOK {
				assert.Equal(t, tc.wantWHOut, body["warehouse_id"])
			} else {
				assert.Equal(t, "MISSING_WAREHOUSE", body["code"])
			}
		})
	}
}
