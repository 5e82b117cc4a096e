// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/client-directory/internal/handler"
	"github.com/deppfellow/client-directory/internal/middleware"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/labstack/echo/v4"
)

// maxBodySize caps request bodies; client payloads are a few hundred bytes.
const maxBodySize = "64K"

// NewRouter builds the Echo instance with the global middleware chain, the
// system routes and the versioned API.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	r.Use(
		middlewares.Global.BodyLimit(maxBodySize),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middleware.RequestID(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	registerSystemRoutes(r, h)

	v1 := r.Group("/api/v1")
	registerV1Routes(v1, h, middlewares)

	return r
}
