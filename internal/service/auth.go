package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/client-directory/internal/server"
)

// AuthService configures the Clerk SDK with the secret key from config.
type AuthService struct {
	server  *server.Server
	enabled bool
}

func NewAuthService(s *server.Server) *AuthService {
	enabled := s.Config.Auth.SecretKey != ""
	if enabled {
		clerk.SetKey(s.Config.Auth.SecretKey)
	}
	return &AuthService{
		server:  s,
		enabled: enabled,
	}
}

// Enabled reports whether requests must carry a Clerk session.
func (a *AuthService) Enabled() bool {
	return a.enabled
}
