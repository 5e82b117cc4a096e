// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives validated
// data from the handler, calls repository methods and triggers side effects
// such as background jobs.
package service

import (
	"github.com/deppfellow/client-directory/internal/lib/job"
	"github.com/deppfellow/client-directory/internal/repository"
	"github.com/deppfellow/client-directory/internal/server"
)

type Services struct {
	Auth    *AuthService
	Clients *ClientService
	Job     *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Auth:    NewAuthService(s),
		Clients: NewClientService(s, repos.Clients),
		Job:     s.Job,
	}, nil
}
