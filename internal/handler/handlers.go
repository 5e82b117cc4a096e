package handler

import (
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/deppfellow/client-directory/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Clients *ClientHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Clients: NewClientHandler(s, services.Clients),
	}
}
