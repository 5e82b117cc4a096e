package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/deppfellow/client-directory/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	enabled bool
	err     error
	sent    []email.WelcomeData
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) SendWelcomeEmail(data email.WelcomeData) error {
	f.sent = append(f.sent, data)
	return f.err
}

func newTestJobService(m welcomeMailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{logger: &logger, mailer: m}
}

func TestNewClientWelcomeTask(t *testing.T) {
	task, err := NewClientWelcomeTask(ClientWelcomePayload{
		ClientID:  7,
		FirstName: "John",
		Email:     "john@x.com",
		Phones:    []string{"+1"},
	})
	require.NoError(t, err)
	assert.Equal(t, TaskClientWelcome, task.Type())

	var p ClientWelcomePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, int64(7), p.ClientID)
	assert.Equal(t, []string{"+1"}, p.Phones)
}

func TestHandleClientWelcomeTask(t *testing.T) {
	ctx := context.Background()
	task, err := NewClientWelcomeTask(ClientWelcomePayload{ClientID: 1, FirstName: "Jane", Email: "jane@x.com"})
	require.NoError(t, err)

	t.Run("sends", func(t *testing.T) {
		m := &fakeMailer{enabled: true}
		require.NoError(t, newTestJobService(m).handleClientWelcomeTask(ctx, task))
		require.Len(t, m.sent, 1)
		assert.Equal(t, "jane@x.com", m.sent[0].Email)
	})

	t.Run("disabled mailer drops the task", func(t *testing.T) {
		m := &fakeMailer{}
		require.NoError(t, newTestJobService(m).handleClientWelcomeTask(ctx, task))
		assert.Empty(t, m.sent)
	})

	t.Run("send failure is retried", func(t *testing.T) {
		boom := errors.New("boom")
		m := &fakeMailer{enabled: true, err: boom}
		assert.ErrorIs(t, newTestJobService(m).handleClientWelcomeTask(ctx, task), boom)
	})

	t.Run("bad payload skips retries", func(t *testing.T) {
		m := &fakeMailer{enabled: true}
		bad := asynq.NewTask(TaskClientWelcome, []byte("{"))
		assert.ErrorIs(t, newTestJobService(m).handleClientWelcomeTask(ctx, bad), asynq.SkipRetry)
		assert.Empty(t, m.sent)
	})
}
