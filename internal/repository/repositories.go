package repository

import (
	"github.com/deppfellow/client-directory/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Clients *ClientRepository
}

// NewRepositories builds every repository over the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Clients: NewClientRepository(s.DB.Pool),
	}
}
