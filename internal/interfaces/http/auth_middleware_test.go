package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

// buildTestApp ruta /protected con AuthMiddleware y RequireRole(allowedRoles...).
// El handler devuelve el rol y los metadatos que quedaron en el contexto de la petición.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ProxyHeader: fiber.HeaderXForwardedFor})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			meta, ok := audit.RequestMetaFrom(c.UserContext())
			return c.JSON(fiber.Map{
				"role":       apphttp.GetRole(c),
				"user_id":    apphttp.GetUserID(c),
				"has_meta":   ok,
				"meta_user":  meta.UserID,
				"meta_ip":    meta.IPAddress,
				"meta_agent": meta.UserAgent,
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// doRequest GET /protected con los headers indicados.
func doRequest(t *testing.T, app *fiber.App, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_Rechazos(t *testing.T) {
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secreto", testUserID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		auth   string
		status int
		code   string
	}{
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema Basic", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"sin esquema", "solo-un-token", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + foreign, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"sin claim de rol", "Bearer " + noRole, http.StatusUnauthorized, "MISSING_ROLE"},
	}
	app := buildTestApp(pkgjwt.RoleAdmin)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.auth != "" {
				headers[fiber.HeaderAuthorization] = tt.auth
			}
			resp := doRequest(t, app, headers)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, resp))
		})
	}
}

// El esquema se compara sin distinguir mayúsculas.
func TestAuthMiddleware_EsquemaBearerSinMayusculas(t *testing.T) {
	app := buildTestApp()
	tok := tokenForRole(t, pkgjwt.RoleViewer)
	resp := doRequest(t, app, map[string]string{fiber.HeaderAuthorization: "bearer " + tok[len("Bearer "):]})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Los metadatos de la petición viajan en el contexto para que la auditoría los tome.
func TestAuthMiddleware_AdjuntaMetadatosDeLaPeticion(t *testing.T) {
	app := buildTestApp(pkgjwt.RoleWarehouse)
	resp := doRequest(t, app, map[string]string{
		fiber.HeaderAuthorization: tokenForRole(t, pkgjwt.RoleWarehouse),
		fiber.HeaderXForwardedFor: "203.0.113.7",
		fiber.HeaderUserAgent:     "escaner-bodega/2.1",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["has_meta"])
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testUserID, body["meta_user"])
	assert.Equal(t, "203.0.113.7", body["meta_ip"])
	assert.Equal(t, "escaner-bodega/2.1", body["meta_agent"])
	assert.Equal(t, pkgjwt.RoleWarehouse, body["role"])
}

// Una petición rechazada no llega al handler, así que no hay metadatos que auditar.
func TestAuthMiddleware_RechazoNoLlegaAlHandler(t *testing.T) {
	app := fiber.New()
	reached := false
	app.Get("/protected", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		reached = true
		return c.SendStatus(fiber.StatusOK)
	})
	resp := doRequest(t, app, map[string]string{fiber.HeaderAuthorization: "Bearer x.y.z"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, reached)
}

// ──────────────────────────────────────────────────────────────────────────────
// Autorización por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_Matriz(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		role    string
		status  int
	}{
		{"admin en ruta de admin", []string{pkgjwt.RoleAdmin}, pkgjwt.RoleAdmin, http.StatusOK},
		{"bodeguero en ruta de movimientos", []string{pkgjwt.RoleAdmin, pkgjwt.RoleWarehouse}, pkgjwt.RoleWarehouse, http.StatusOK},
		{"consulta en ruta de movimientos", []string{pkgjwt.RoleAdmin, pkgjwt.RoleWarehouse}, pkgjwt.RoleViewer, http.StatusForbidden},
		{"bodeguero en auditoría", []string{pkgjwt.RoleAdmin}, pkgjwt.RoleWarehouse, http.StatusForbidden},
		{"rol desconocido", []string{pkgjwt.RoleAdmin}, "root", http.StatusForbidden},
		{"sin restricción de rol", nil, pkgjwt.RoleViewer, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := buildTestApp(tt.allowed...)
			resp := doRequest(t, app, map[string]string{fiber.HeaderAuthorization: tokenForRole(t, tt.role)})
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
			}
		})
	}
}

// Sin AuthMiddleware delante no hay rol en Locals: 401 MISSING_ROLE, no 403.
func TestRequireRole_SinAutenticacionPrevia(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", apphttp.RequireRole(pkgjwt.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	resp := doRequest(t, app, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", errorCode(t, resp))
}
