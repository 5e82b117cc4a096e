package main

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/client-directory/internal/database"
	"github.com/deppfellow/client-directory/internal/handler"
	"github.com/deppfellow/client-directory/internal/repository"
	"github.com/deppfellow/client-directory/internal/router"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/deppfellow/client-directory/internal/service"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply migrations before serving")

	return cmd
}

func serve(ctx context.Context, a *app, migrate bool) error {
	if migrate {
		if err := database.Migrate(ctx, &a.log, a.cfg); err != nil {
			return err
		}
	}

	srv, err := server.New(ctx, a.cfg, &a.log, a.loggerService)
	if err != nil {
		return err
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	if err != nil {
		return err
	}

	r := router.NewRouter(srv, handler.NewHandlers(srv, services))
	srv.SetupHTTPServer(r)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		// Start only returns early on a listen failure.
		return errors.Join(err, srv.Shutdown(context.Background()))
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.log.Info().Msg("server exited")
	return nil
}
