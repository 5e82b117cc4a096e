package router

import (
	"github.com/deppfellow/client-directory/internal/handler"
	"github.com/deppfellow/client-directory/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerV1Routes mounts the client directory under /api/v1. Every route is
// rate limited and, when Clerk is configured, authenticated.
func registerV1Routes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	v1.Use(m.RateLimit.Limit(), m.Auth.RequireAuth)

	h.Clients.RegisterRoutes(v1.Group("/clients"))
}
