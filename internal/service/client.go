package service

import (
	"context"

	"github.com/deppfellow/client-directory/internal/lib/job"
	"github.com/deppfellow/client-directory/internal/model/client"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// ClientStore is the persistence the client service relies on.
// *repository.ClientRepository implements it.
type ClientStore interface {
	AddClient(ctx context.Context, firstName, lastName, email string, phones ...string) (int64, error)
	AddPhone(ctx context.Context, clientID int64, phone string) error
	UpdateClient(ctx context.Context, clientID int64, p client.Patch) error
	DeletePhone(ctx context.Context, clientID int64, phone string) (int64, error)
	DeleteClient(ctx context.Context, clientID int64) (int64, error)
	PurgeClient(ctx context.Context, clientID int64) (int64, error)
	GetClient(ctx context.Context, clientID int64) (*client.Client, error)
	FindClients(ctx context.Context, f client.Filter) ([]client.Client, error)
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ClientService struct {
	store ClientStore
	jobs  TaskEnqueuer
}

// NewClientService wires the service to store and, when the server runs
// background jobs, to the job client.
func NewClientService(s *server.Server, store ClientStore) *ClientService {
	var jobs TaskEnqueuer
	if s.Job != nil {
		jobs = s.Job.Client
	}
	return newClientService(store, jobs)
}

func newClientService(store ClientStore, jobs TaskEnqueuer) *ClientService {
	return &ClientService{store: store, jobs: jobs}
}

// AddClient stores a new client with its phones and schedules the welcome
// email. A failed enqueue is logged; the client is already committed.
func (s *ClientService) AddClient(ctx context.Context, req *client.CreateClientRequest) (*client.CreateClientResponse, error) {
	logger := zerolog.Ctx(ctx)

	id, err := s.store.AddClient(ctx, req.FirstName, req.LastName, req.Email, req.Phones...)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("client_id", id).
		Int("phones", len(req.Phones)).
		Msg("client added")

	s.enqueueWelcome(ctx, id, req)

	return &client.CreateClientResponse{ID: id}, nil
}

func (s *ClientService) enqueueWelcome(ctx context.Context, id int64, req *client.CreateClientRequest) {
	if s.jobs == nil {
		return
	}

	logger := zerolog.Ctx(ctx)

	task, err := job.NewClientWelcomeTask(job.ClientWelcomePayload{
		ClientID:  id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phones:    req.Phones,
	})
	if err != nil {
		logger.Error().Err(err).Int64("client_id", id).Msg("failed to build welcome task")
		return
	}

	info, err := s.jobs.EnqueueContext(ctx, task)
	if err != nil {
		logger.Error().Err(err).Int64("client_id", id).Msg("failed to enqueue welcome task")
		return
	}

	logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("welcome task enqueued")
}

func (s *ClientService) AddPhone(ctx context.Context, clientID int64, phone string) error {
	if err := s.store.AddPhone(ctx, clientID, phone); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Int64("client_id", clientID).Msg("phone added")
	return nil
}

// UpdateClient applies a partial update. An empty patch does nothing.
func (s *ClientService) UpdateClient(ctx context.Context, clientID int64, p client.Patch) error {
	if p.IsEmpty() {
		zerolog.Ctx(ctx).Debug().Int64("client_id", clientID).Msg("empty update, nothing to do")
		return nil
	}

	if err := s.store.UpdateClient(ctx, clientID, p); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Int64("client_id", clientID).
		Bool("phones_replaced", p.Phones != nil).
		Msg("client updated")
	return nil
}

// DeletePhone removes a number from the client. Removing a number the
// client does not have succeeds.
func (s *ClientService) DeletePhone(ctx context.Context, clientID int64, phone string) error {
	n, err := s.store.DeletePhone(ctx, clientID, phone)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Int64("client_id", clientID).
		Int64("deleted", n).
		Msg("phone deleted")
	return nil
}

// DeleteClient removes the client row. Unless purge is set, phones are left
// alone and the database refuses while any remain.
func (s *ClientService) DeleteClient(ctx context.Context, clientID int64, purge bool) error {
	deleteFn := s.store.DeleteClient
	if purge {
		deleteFn = s.store.PurgeClient
	}

	n, err := deleteFn(ctx, clientID)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Int64("client_id", clientID).
		Bool("purge", purge).
		Int64("deleted", n).
		Msg("client deleted")
	return nil
}

func (s *ClientService) GetClient(ctx context.Context, clientID int64) (*client.Client, error) {
	return s.store.GetClient(ctx, clientID)
}

func (s *ClientService) FindClients(ctx context.Context, f client.Filter) ([]client.Client, error) {
	clients, err := s.store.FindClients(ctx, f)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Int("results", len(clients)).Msg("clients found")
	return clients, nil
}
