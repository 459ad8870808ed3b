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

	apphttp "github.com/jhoicas/printshop-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/printshop-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testEmail     = "staff@printshop.test"
	testIssuer    = "printshop-test"
	testExpMin    = 60
)

// buildTestApp protege GET y POST /protected con el middleware de auth más la guarda indicada.
func buildTestApp(guard fiber.Handler) *fiber.App {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c), "user_id": apphttp.GetUserID(c)})
	}
	app.Get("/protected", apphttp.AuthMiddleware(testJWTSecret), guard, ok)
	app.Post("/protected", apphttp.AuthMiddleware(testJWTSecret), guard, ok)
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, method, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireRole_AllowsListedRoles(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole("admin", "staff"))
	resp := doRequest(t, app, http.MethodGet, tokenForRole(t, "staff"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "staff", body["role"])
	assert.Equal(t, testUserID, body["user_id"])
}

func TestRequireRole_BlocksOtherRoles(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole("admin"))
	resp := doRequest(t, app, http.MethodGet, tokenForRole(t, "viewer"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireWrite_ViewerIsReadOnly(t *testing.T) {
	app := buildTestApp(apphttp.RequireWrite())

	tests := []struct {
		name   string
		method string
		role   string
		want   int
	}{
		{"viewer reads", http.MethodGet, "viewer", http.StatusOK},
		{"viewer writes", http.MethodPost, "viewer", http.StatusForbidden},
		{"staff writes", http.MethodPost, "staff", http.StatusOK},
		{"admin writes", http.MethodPost, "admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, tt.method, tokenForRole(t, tt.role))
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	app := buildTestApp(apphttp.RequireWrite())

	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, "", testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, "admin", testIssuer, -1)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("another-secret", testUserID, testEmail, "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "MISSING_TOKEN"},
		{"wrong scheme", "Basic abc", "INVALID_TOKEN"},
		{"malformed", "Bearer token.invalid.here", "INVALID_TOKEN"},
		{"no role", "Bearer " + noRole, "MISSING_ROLE"},
		{"expired", "Bearer " + expired, "INVALID_TOKEN"},
		{"wrong secret", "Bearer " + otherSecret, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodGet, tt.header)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.code)
		})
	}
}
