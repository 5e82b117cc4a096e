package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/client-directory/internal/config"
	"github.com/deppfellow/client-directory/internal/handler"
	"github.com/deppfellow/client-directory/internal/middleware"
	"github.com/deppfellow/client-directory/internal/model/client"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// stubClients answers every lookup with a single client.
type stubClients struct{}

func (stubClients) AddClient(context.Context, *client.CreateClientRequest) (*client.CreateClientResponse, error) {
	return &client.CreateClientResponse{ID: 1}, nil
}

func (stubClients) AddPhone(context.Context, int64, string) error {
	return nil
}

func (stubClients) UpdateClient(context.Context, int64, client.Patch) error {
	return nil
}

func (stubClients) DeletePhone(context.Context, int64, string) error {
	return nil
}

func (stubClients) DeleteClient(context.Context, int64, bool) error {
	return nil
}

func (stubClients) GetClient(_ context.Context, id int64) (*client.Client, error) {
	return &client.Client{ID: id, FirstName: "John", Phones: []string{}}, nil
}

func (stubClients) FindClients(context.Context, client.Filter) ([]client.Client, error) {
	return []client.Client{{ID: 1, FirstName: "John", Phones: []string{}}}, nil
}

func newTestRouter() http.Handler {
	logger := zerolog.Nop()
	obs := config.DefaultObservabilityConfig()
	obs.HealthChecks.Checks = nil

	s := &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Server:        config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
			Observability: obs,
		},
		Logger: &logger,
	}

	h := &handler.Handlers{
		Health:  handler.NewHealthHandler(s),
		OpenAPI: handler.NewOpenAPIHandler(s),
		Clients: handler.NewClientHandler(s, stubClients{}),
	}
	return NewRouter(s, h)
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/status", http.StatusOK},
		{http.MethodGet, "/docs", http.StatusOK},
		{http.MethodGet, "/static/openapi.json", http.StatusOK},
		{http.MethodGet, "/api/v1/clients", http.StatusOK},
		{http.MethodGet, "/api/v1/clients/export", http.StatusOK},
		{http.MethodGet, "/api/v1/clients/5", http.StatusOK},
		{http.MethodDelete, "/api/v1/clients/5", http.StatusNoContent},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
		{http.MethodGet, "/static/missing.json", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouter_ExportIsNotAnID(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clients/export", nil))

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "id,first_name,last_name,email,phones")
}
