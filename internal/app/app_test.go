package app_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medstore/internal/app"
	"medstore/internal/logger"
	"medstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *app.Server {
	t.Helper()
	repos := app.Repositories{
		Medicines: repositories.NewMockMedicineRepository(),
		Carts:     repositories.NewMockCartRepository(),
		Orders:    repositories.NewMockOrderRepository(),
		Users:     repositories.NewMockUserRepository(),
		Admins:    repositories.NewMockAdminRepository(),
	}
	return app.New(repos, app.Options{
		JWTSecret: "app_test_secret",
		JWTExpire: time.Hour,
		Logger:    logger.Discard(),
	})
}

func decode(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	body := decode(t, resp.Body)
	assert.Equal(t, "healthy", body["status"])
}

func TestUnknownRoute(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t)

	_, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/api/medicines", nil))
	require.NoError(t, err)

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "http_requests_total"))
}

func TestGuardsAreWired(t *testing.T) {
	srv := newServer(t)
	require.NoError(t, srv.Auth.EnsureAdmin(t.Context(), "admin@example.com", "admin123"))
	_, adminToken, err := srv.Auth.LoginAdmin(t.Context(), "admin@example.com", "admin123")
	require.NoError(t, err)

	for _, path := range []string{"/api/cart", "/api/orders", "/api/auth/profile"} {
		resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		resp, err = srv.App.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard/stats", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := srv.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
