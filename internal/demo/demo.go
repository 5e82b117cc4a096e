// Package demo runs the client directory walkthrough against a live
// database: create the schema, add a client, change it and remove it,
// printing the lookup result after each step.
package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/deppfellow/client-directory/internal/lib/utils"
	"github.com/deppfellow/client-directory/internal/model/client"
	"github.com/deppfellow/client-directory/internal/sqlerr"
	"github.com/rs/zerolog"
)

// Directory is the part of *repository.ClientRepository the walkthrough uses.
type Directory interface {
	InitSchema(ctx context.Context) error
	AddClient(ctx context.Context, firstName, lastName, email string, phones ...string) (int64, error)
	AddPhone(ctx context.Context, clientID int64, phone string) error
	UpdateClient(ctx context.Context, clientID int64, p client.Patch) error
	DeletePhone(ctx context.Context, clientID int64, phone string) (int64, error)
	DeleteClient(ctx context.Context, clientID int64) (int64, error)
	PurgeClient(ctx context.Context, clientID int64) (int64, error)
	FindClients(ctx context.Context, f client.Filter) ([]client.Client, error)
}

// Run executes the walkthrough, writing each snapshot to out. The first
// error aborts the run.
func Run(ctx context.Context, dir Directory, out io.Writer) error {
	logger := zerolog.Ctx(ctx)

	if err := dir.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	id, err := dir.AddClient(ctx, "John", "Doe", "john.doe@example.com", "+123456789")
	if err != nil {
		return fmt.Errorf("add client: %w", err)
	}
	logger.Info().Int64("client_id", id).Msg("demo client added")

	if err := dir.AddPhone(ctx, id, "+987654321"); err != nil {
		return fmt.Errorf("add phone: %w", err)
	}

	byName := client.Filter{FirstName: client.Ptr("John")}
	snapshot := func(label string) error {
		clients, err := dir.FindClients(ctx, byName)
		if err != nil {
			return fmt.Errorf("find clients: %w", err)
		}
		return utils.PrintJSON(out, label, clients)
	}

	if err := snapshot("Before Update"); err != nil {
		return err
	}

	err = dir.UpdateClient(ctx, id, client.Patch{
		LastName: client.Ptr("Smith"),
		Phones:   []string{"+111222333", "+444555666"},
	})
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if err := snapshot("After Update"); err != nil {
		return err
	}

	// The number was replaced by the update, so nothing matches.
	n, err := dir.DeletePhone(ctx, id, "+987654321")
	if err != nil {
		return fmt.Errorf("delete phone: %w", err)
	}
	logger.Info().Int64("deleted", n).Msg("demo phone delete")
	if err := snapshot("After Delete Phone"); err != nil {
		return err
	}

	if err := deleteClient(ctx, dir, id); err != nil {
		return err
	}
	return snapshot("After Delete Client")
}

// deleteClient tries the plain delete first. The database refuses it while
// phones reference the client, in which case the phones go too.
func deleteClient(ctx context.Context, dir Directory, id int64) error {
	_, err := dir.DeleteClient(ctx, id)
	if err == nil {
		return nil
	}
	if sqlerr.Classify(err) != sqlerr.ForeignKeyViolation {
		return fmt.Errorf("delete client: %w", err)
	}

	zerolog.Ctx(ctx).Warn().
		Err(err).
		Int64("client_id", id).
		Msg("client still has phones, purging")

	if _, err := dir.PurgeClient(ctx, id); err != nil {
		return fmt.Errorf("purge client: %w", err)
	}
	return nil
}
