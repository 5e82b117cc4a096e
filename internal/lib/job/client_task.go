package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppfellow/client-directory/internal/lib/email"
	"github.com/hibiken/asynq"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"

	// TaskClientWelcome is the task type stored in Redis.
	TaskClientWelcome = "client:welcome"
)

// ClientWelcomePayload is the JSON payload of a welcome task. It carries a
// snapshot of the client so the worker never reads the database.
type ClientWelcomePayload struct {
	ClientID  int64    `json:"client_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phones    []string `json:"phones"`
}

// NewClientWelcomeTask builds the task sent after a client is added.
// Retries are capped at three and one attempt may run for 30 seconds.
func NewClientWelcomeTask(p ClientWelcomePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskClientWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
	), nil
}

func (j *JobService) handleClientWelcomeTask(ctx context.Context, t *asynq.Task) error {
	var p ClientWelcomePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A malformed payload never succeeds; skip the retries.
		return fmt.Errorf("failed to unmarshal client welcome payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", TaskClientWelcome).
		Int64("client_id", p.ClientID).
		Logger()

	if !j.mailer.Enabled() {
		logger.Debug().Msg("email delivery disabled, dropping welcome task")
		return nil
	}

	logger.Info().Msg("processing client welcome task")

	err := j.mailer.SendWelcomeEmail(email.WelcomeData{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phones:    p.Phones,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to send welcome email")
		return err
	}

	logger.Info().Msg("sent welcome email")
	return nil
}
