// Package job provides background job processing using Asynq.
//
// Producers enqueue tasks through JobService.Client; the embedded
// asynq.Server pulls them from Redis and runs the registered handlers.
package job

import (
	"github.com/deppfellow/client-directory/internal/config"
	"github.com/deppfellow/client-directory/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// welcomeMailer is the part of the email client the job handlers need.
type welcomeMailer interface {
	Enabled() bool
	SendWelcomeEmail(data email.WelcomeData) error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client

	server *asynq.Server
	logger *zerolog.Logger
	mailer welcomeMailer
}

// NewJobService creates a JobService on the Redis configured in cfg.
// Queue weights give critical tasks six of every ten worker slots.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		logger: logger,
		mailer: email.NewClient(cfg, logger),
	}
}

// mux routes task types to handlers.
func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskClientWelcome, j.handleClientWelcomeTask)
	return mux
}

// Start registers the task handlers and starts the workers. It returns once
// the workers are running.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")
	return j.server.Start(j.mux())
}

// Stop waits for running tasks to finish, then closes the enqueue client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
