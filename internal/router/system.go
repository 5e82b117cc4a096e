package router

import (
	"github.com/deppfellow/client-directory/internal/handler"
	"github.com/deppfellow/client-directory/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints outside the versioned API:
// health, the docs UI and the embedded documentation assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.HEAD("/status", h.Health.CheckHealth)

	r.StaticFS("/static", static.FS)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
