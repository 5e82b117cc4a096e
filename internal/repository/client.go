package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/client-directory/internal/model/client"
	"github.com/jackc/pgx/v5"
)

// schemaStatements create the directory tables. Both are idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clients (
    id SERIAL PRIMARY KEY,
    first_name TEXT,
    last_name TEXT,
    email TEXT UNIQUE
)`,
	`CREATE TABLE IF NOT EXISTS phones (
    id SERIAL PRIMARY KEY,
    client_id INT REFERENCES clients(id),
    phone_number TEXT
)`,
}

const (
	insertClient = `INSERT INTO clients (first_name, last_name, email)
VALUES ($1, $2, $3) RETURNING id`

	insertPhone = `INSERT INTO phones (client_id, phone_number)
VALUES ($1, $2)`

	// insertPhones writes a whole list in one statement, preserving order.
	insertPhones = `INSERT INTO phones (client_id, phone_number)
SELECT $1, phone FROM unnest($2::text[]) WITH ORDINALITY AS t(phone, n) ORDER BY n`

	deleteClientPhones = `DELETE FROM phones WHERE client_id = $1`

	deletePhone = `DELETE FROM phones WHERE client_id = $1 AND phone_number = $2`

	deleteClient = `DELETE FROM clients WHERE id = $1`

	selectClient = findClientsSelect + `
WHERE c.id = $1
GROUP BY c.id`
)

// ClientRepository is the client directory: one method per unit of work,
// each committed before it returns.
type ClientRepository struct {
	db DBTX
}

// NewClientRepository returns a repository over db.
func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

// InitSchema creates the clients and phones tables if absent.
func (r *ClientRepository) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// AddClient inserts a client and its phones, returning the assigned id.
// A duplicate email fails with the driver's unique violation.
func (r *ClientRepository) AddClient(ctx context.Context, firstName, lastName, email string, phones ...string) (int64, error) {
	if len(phones) == 0 {
		var id int64
		if err := r.db.QueryRow(ctx, insertClient, firstName, lastName, email).Scan(&id); err != nil {
			return 0, fmt.Errorf("inserting client: %w", err)
		}
		return id, nil
	}

	var id int64
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertClient, firstName, lastName, email).Scan(&id); err != nil {
			return fmt.Errorf("inserting client: %w", err)
		}
		if _, err := tx.Exec(ctx, insertPhones, id, phones); err != nil {
			return fmt.Errorf("inserting phones for client %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddPhone attaches one phone to clientID. The client's existence is left
// to the foreign key.
func (r *ClientRepository) AddPhone(ctx context.Context, clientID int64, phone string) error {
	if _, err := r.db.Exec(ctx, insertPhone, clientID, phone); err != nil {
		return fmt.Errorf("inserting phone for client %d: %w", clientID, err)
	}
	return nil
}

// UpdateClient applies p to clientID. Present fields are written; a non-nil
// p.Phones replaces every phone of the client. An empty patch issues no
// statement.
func (r *ClientRepository) UpdateClient(ctx context.Context, clientID int64, p client.Patch) error {
	if p.IsEmpty() {
		return nil
	}

	query, params, hasFields := buildUpdateClient(clientID, p)

	if p.Phones == nil {
		if _, err := r.db.Exec(ctx, query, params...); err != nil {
			return fmt.Errorf("updating client %d: %w", clientID, err)
		}
		return nil
	}

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if hasFields {
			if _, err := tx.Exec(ctx, query, params...); err != nil {
				return fmt.Errorf("updating client %d: %w", clientID, err)
			}
		}
		if _, err := tx.Exec(ctx, deleteClientPhones, clientID); err != nil {
			return fmt.Errorf("clearing phones for client %d: %w", clientID, err)
		}
		if len(p.Phones) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, insertPhones, clientID, p.Phones); err != nil {
			return fmt.Errorf("inserting phones for client %d: %w", clientID, err)
		}
		return nil
	})
}

// DeletePhone removes clientID's phones equal to phone and reports how many
// rows went. Zero is not an error.
func (r *ClientRepository) DeletePhone(ctx context.Context, clientID int64, phone string) (int64, error) {
	tag, err := r.db.Exec(ctx, deletePhone, clientID, phone)
	if err != nil {
		return 0, fmt.Errorf("deleting phone for client %d: %w", clientID, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteClient removes the client row only; phone rows are never touched.
// With the default NO ACTION foreign key, PostgreSQL rejects the delete
// while phones still reference the client.
func (r *ClientRepository) DeleteClient(ctx context.Context, clientID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteClient, clientID)
	if err != nil {
		return 0, fmt.Errorf("deleting client %d: %w", clientID, err)
	}
	return tag.RowsAffected(), nil
}

// PurgeClient removes the client and all of its phones in one transaction.
func (r *ClientRepository) PurgeClient(ctx context.Context, clientID int64) (int64, error) {
	var deleted int64
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteClientPhones, clientID); err != nil {
			return fmt.Errorf("clearing phones for client %d: %w", clientID, err)
		}
		tag, err := tx.Exec(ctx, deleteClient, clientID)
		if err != nil {
			return fmt.Errorf("deleting client %d: %w", clientID, err)
		}
		deleted = tag.RowsAffected()
		return nil
	})
	return deleted, err
}

// GetClient loads one client with all of its phones.
func (r *ClientRepository) GetClient(ctx context.Context, clientID int64) (*client.Client, error) {
	var c client.Client
	err := r.db.QueryRow(ctx, selectClient, clientID).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phones)
	if errors.Is(err, pgx.ErrNoRows) {
		// The "table:" marker lets sqlerr name the missing entity.
		return nil, fmt.Errorf("table:clients: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("selecting client %d: %w", clientID, err)
	}
	return &c, nil
}

// FindClients returns every client matching f, one entry per client with the
// matching phones aggregated in insertion order. Clients without phones get
// an empty list.
func (r *ClientRepository) FindClients(ctx context.Context, f client.Filter) ([]client.Client, error) {
	query, params := buildFindClients(f)

	rows, err := r.db.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("finding clients: %w", err)
	}
	defer rows.Close()

	clients := []client.Client{}
	for rows.Next() {
		var c client.Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phones); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		if c.Phones == nil {
			c.Phones = []string{}
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}

	return clients, nil
}
