package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHealthHandler(checks ...dependencyCheck) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(testServer()),
		checks:  checks,
		timeout: time.Second,
	}
}

func runHealth(t *testing.T, h *HealthHandler) (int, map[string]any) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)

	require.NoError(t, h.CheckHealth(c))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func pingOK(context.Context) error { return nil }

func pingFail(context.Context) error { return errors.New("connection refused") }

func TestHealthHandler_Healthy(t *testing.T) {
	h := newTestHealthHandler(
		dependencyCheck{name: "database", required: true, ping: pingOK},
		dependencyCheck{name: "redis", ping: pingOK},
	)

	status, body := runHealth(t, h)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["environment"])
	checks := body["checks"].(map[string]any)
	assert.Len(t, checks, 2)
}

func TestHealthHandler_OptionalFailure(t *testing.T) {
	h := newTestHealthHandler(
		dependencyCheck{name: "database", required: true, ping: pingOK},
		dependencyCheck{name: "redis", ping: pingFail},
	)

	status, body := runHealth(t, h)

	assert.Equal(t, http.StatusOK, status)
	redis := body["checks"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, "unhealthy", redis["status"])
	assert.Equal(t, "connection refused", redis["error"])
}

func TestHealthHandler_RequiredFailure(t *testing.T) {
	h := newTestHealthHandler(dependencyCheck{name: "database", required: true, ping: pingFail})

	status, body := runHealth(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestHealthHandler_Timeout(t *testing.T) {
	h := newTestHealthHandler(dependencyCheck{
		name:     "database",
		required: true,
		ping: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	h.timeout = 10 * time.Millisecond

	status, _ := runHealth(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestOpenAPIHandler_ServeUI(t *testing.T) {
	h := NewOpenAPIHandler(testServer())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)

	require.NoError(t, h.ServeOpenAPIUI(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")
}
