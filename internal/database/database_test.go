package database

import (
	"bytes"
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/deppfellow/client-directory/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: env},
		Database: config.DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "pa:ss@word",
			Name:            "clients_db",
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    8,
			ConnMaxLifetime: 60,
			ConnMaxIdleTime: 30,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
}

func TestDSN_RoundTrip(t *testing.T) {
	cfg := testConfig("local").Database

	parsed, err := pgx.ParseConfig(DSN(cfg))
	require.NoError(t, err)

	assert.Equal(t, "localhost", parsed.Host)
	assert.EqualValues(t, 5432, parsed.Port)
	assert.Equal(t, "postgres", parsed.User)
	assert.Equal(t, "pa:ss@word", parsed.Password)
	assert.Equal(t, "clients_db", parsed.Database)
}

func TestDSN_IPv6AndEmptyPassword(t *testing.T) {
	cfg := testConfig("local").Database
	cfg.Host = "::1"
	cfg.Password = ""

	dsn := DSN(cfg)
	assert.Contains(t, dsn, "[::1]:5432")
	assert.NotContains(t, dsn, "postgres:@")

	parsed, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)
	assert.Equal(t, "::1", parsed.Host)
}

func TestPoolConfig_Tuning(t *testing.T) {
	cfg := testConfig("production")
	cfg.Observability.Logging.SlowQueryThreshold = 0
	logger := zerolog.Nop()

	pc, err := poolConfig(cfg, &logger, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 4, pc.MaxConns)
	// MinConns never exceeds MaxConns.
	assert.EqualValues(t, 4, pc.MinConns)
	assert.Equal(t, time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 30*time.Second, pc.MaxConnIdleTime)
	assert.Nil(t, pc.ConnConfig.Tracer)
}

func TestPoolConfig_Tracers(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("production gets only the slow query tracer", func(t *testing.T) {
		pc, err := poolConfig(testConfig("production"), &logger, nil)
		require.NoError(t, err)
		assert.IsType(t, &slowQueryTracer{}, pc.ConnConfig.Tracer)
	})

	t.Run("local chains statement logging and slow queries", func(t *testing.T) {
		pc, err := poolConfig(testConfig("local"), &logger, nil)
		require.NoError(t, err)

		mt, ok := pc.ConnConfig.Tracer.(*multiTracer)
		require.True(t, ok)
		require.Len(t, mt.tracers, 2)
		assert.IsType(t, &tracelog.TraceLog{}, mt.tracers[0])
		assert.IsType(t, &slowQueryTracer{}, mt.tracers[1])
	})
}

type recordingTracer struct {
	name  string
	calls *[]string
}

type tracerKey string

func (r recordingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	*r.calls = append(*r.calls, "start:"+r.name)
	return context.WithValue(ctx, tracerKey(r.name), true)
}

func (r recordingTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryEndData) {
	seen, _ := ctx.Value(tracerKey(r.name)).(bool)
	if seen {
		*r.calls = append(*r.calls, "end:"+r.name)
	}
}

func TestMultiTracer_ThreadsContext(t *testing.T) {
	var calls []string
	mt := &multiTracer{tracers: []queryTracer{
		recordingTracer{name: "a", calls: &calls},
		recordingTracer{name: "b", calls: &calls},
	}}

	ctx := mt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	mt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	assert.Equal(t, []string{"start:a", "start:b", "end:a", "end:b"}, calls)
}

func TestSlowQueryTracer(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	now := time.Date(2024, 2, 4, 12, 0, 0, 0, time.UTC)
	tracer := &slowQueryTracer{
		threshold: 100 * time.Millisecond,
		log:       &logger,
		now:       func() time.Time { return now },
	}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	now = now.Add(20 * time.Millisecond)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
	assert.Empty(t, buf.String())

	ctx = tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT pg_sleep(1)"})
	now = now.Add(time.Second)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
	assert.Contains(t, buf.String(), "slow query")
	assert.Contains(t, buf.String(), "pg_sleep")
}

func TestMigrations_Embedded(t *testing.T) {
	subtree, err := Migrations()
	require.NoError(t, err)

	body, err := fs.ReadFile(subtree, "001_create_clients.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS clients")
	assert.Contains(t, string(body), "client_id INT REFERENCES clients(id)")
}
