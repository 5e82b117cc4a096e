package demo

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/deppfellow/client-directory/internal/model/client"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDirectory keeps clients in memory and refuses a plain delete while
// phones exist, the way the foreign key does.
type memDirectory struct {
	nextID  int64
	clients []client.Client
	calls   []string
	failOn  string
}

func (m *memDirectory) call(name string) error {
	m.calls = append(m.calls, name)
	if name == m.failOn {
		return errors.New("connection reset")
	}
	return nil
}

func (m *memDirectory) find(id int64) *client.Client {
	for i := range m.clients {
		if m.clients[i].ID == id {
			return &m.clients[i]
		}
	}
	return nil
}

func (m *memDirectory) InitSchema(context.Context) error {
	return m.call("InitSchema")
}

func (m *memDirectory) AddClient(_ context.Context, firstName, lastName, email string, phones ...string) (int64, error) {
	if err := m.call("AddClient"); err != nil {
		return 0, err
	}
	m.nextID++
	m.clients = append(m.clients, client.Client{
		ID: m.nextID, FirstName: firstName, LastName: lastName, Email: email,
		Phones: append([]string{}, phones...),
	})
	return m.nextID, nil
}

func (m *memDirectory) AddPhone(_ context.Context, clientID int64, phone string) error {
	if err := m.call("AddPhone"); err != nil {
		return err
	}
	c := m.find(clientID)
	c.Phones = append(c.Phones, phone)
	return nil
}

func (m *memDirectory) UpdateClient(_ context.Context, clientID int64, p client.Patch) error {
	if err := m.call("UpdateClient"); err != nil {
		return err
	}
	c := m.find(clientID)
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Phones != nil {
		c.Phones = append([]string{}, p.Phones...)
	}
	return nil
}

func (m *memDirectory) DeletePhone(_ context.Context, clientID int64, phone string) (int64, error) {
	if err := m.call("DeletePhone"); err != nil {
		return 0, err
	}
	c := m.find(clientID)
	before := len(c.Phones)
	c.Phones = slices.DeleteFunc(c.Phones, func(p string) bool { return p == phone })
	return int64(before - len(c.Phones)), nil
}

func (m *memDirectory) DeleteClient(_ context.Context, clientID int64) (int64, error) {
	if err := m.call("DeleteClient"); err != nil {
		return 0, err
	}
	if c := m.find(clientID); c != nil && len(c.Phones) > 0 {
		return 0, &pgconn.PgError{Code: "23503", TableName: "phones"}
	}
	return m.remove(clientID), nil
}

func (m *memDirectory) PurgeClient(_ context.Context, clientID int64) (int64, error) {
	if err := m.call("PurgeClient"); err != nil {
		return 0, err
	}
	return m.remove(clientID), nil
}

func (m *memDirectory) remove(clientID int64) int64 {
	before := len(m.clients)
	m.clients = slices.DeleteFunc(m.clients, func(c client.Client) bool { return c.ID == clientID })
	return int64(before - len(m.clients))
}

func (m *memDirectory) FindClients(_ context.Context, f client.Filter) ([]client.Client, error) {
	if err := m.call("FindClients"); err != nil {
		return nil, err
	}
	out := []client.Client{}
	for _, c := range m.clients {
		if f.FirstName == nil || strings.Contains(c.FirstName, *f.FirstName) {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestRun(t *testing.T) {
	dir := &memDirectory{}
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), dir, &out))

	assert.Equal(t, []string{
		"InitSchema", "AddClient", "AddPhone", "FindClients",
		"UpdateClient", "FindClients",
		"DeletePhone", "FindClients",
		"DeleteClient", "PurgeClient", "FindClients",
	}, dir.calls)

	text := out.String()
	assert.Contains(t, text, "Before Update: [")
	assert.Contains(t, text, `"+987654321"`)
	assert.Contains(t, text, `"last_name": "Smith"`)
	assert.Contains(t, text, `"+444555666"`)
	assert.True(t, strings.HasSuffix(text, "After Delete Client: []\n"))
	assert.Empty(t, dir.clients)
}

func TestRun_AbortsOnError(t *testing.T) {
	dir := &memDirectory{failOn: "UpdateClient"}
	var out bytes.Buffer

	err := Run(context.Background(), dir, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "update client")
	assert.Equal(t, "UpdateClient", dir.calls[len(dir.calls)-1])
	assert.NotContains(t, out.String(), "After Update")
}

func TestRun_DeleteFailureIsNotPurged(t *testing.T) {
	dir := &memDirectory{failOn: "DeleteClient"}

	err := Run(context.Background(), dir, &bytes.Buffer{})

	require.Error(t, err)
	assert.NotContains(t, dir.calls, "PurgeClient")
}
