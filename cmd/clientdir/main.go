// Command clientdir serves the client directory API and runs its
// maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deppfellow/client-directory/internal/config"
	"github.com/deppfellow/client-directory/internal/database"
	"github.com/deppfellow/client-directory/internal/demo"
	"github.com/deppfellow/client-directory/internal/logger"
	"github.com/deppfellow/client-directory/internal/repository"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once config is loaded.
type app struct {
	cfg           *config.Config
	log           zerolog.Logger
	loggerService *logger.LoggerService
}

func (a *app) load() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.loggerService = logger.NewLoggerService(cfg.Observability)
	a.log = logger.NewLoggerWithService(cfg.Observability, a.loggerService)
	return nil
}

func (a *app) close() {
	if a.loggerService != nil {
		a.loggerService.Shutdown()
	}
}

// withDirectory opens the pool and hands a repository to fn.
func (a *app) withDirectory(ctx context.Context, fn func(ctx context.Context, repo *repository.ClientRepository) error) error {
	db, err := database.New(ctx, a.cfg, &a.log, a.loggerService)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			a.log.Error().Err(err).Msg("failed to close database")
		}
	}()

	return fn(a.log.WithContext(ctx), repository.NewClientRepository(db.Pool))
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "clientdir",
		Short:         "Client directory backed by PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.Migrate(cmd.Context(), &a.log, a.cfg)
		},
	}

	initSchemaCmd := &cobra.Command{
		Use:   "init-schema",
		Short: "Create the clients and phones tables if absent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDirectory(cmd.Context(), func(ctx context.Context, repo *repository.ClientRepository) error {
				if err := repo.InitSchema(ctx); err != nil {
					return err
				}
				a.log.Info().Msg("schema ready")
				return nil
			})
		},
	}

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the add/update/delete walkthrough and print each step",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDirectory(cmd.Context(), func(ctx context.Context, repo *repository.ClientRepository) error {
				return demo.Run(ctx, repo, cmd.OutOrStdout())
			})
		},
	}

	root.AddCommand(newServeCommand(a), migrateCmd, initSchemaCmd, demoCmd)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCommand(a).ExecuteContext(ctx)
	a.close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
