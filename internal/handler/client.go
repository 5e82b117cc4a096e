package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/deppfellow/client-directory/internal/model/client"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/labstack/echo/v4"
)

// clientService is the part of service.ClientService the handlers call.
type clientService interface {
	AddClient(ctx context.Context, req *client.CreateClientRequest) (*client.CreateClientResponse, error)
	AddPhone(ctx context.Context, clientID int64, phone string) error
	UpdateClient(ctx context.Context, clientID int64, p client.Patch) error
	DeletePhone(ctx context.Context, clientID int64, phone string) error
	DeleteClient(ctx context.Context, clientID int64, purge bool) error
	GetClient(ctx context.Context, clientID int64) (*client.Client, error)
	FindClients(ctx context.Context, f client.Filter) ([]client.Client, error)
}

type ClientHandler struct {
	Handler
	clients clientService
}

func NewClientHandler(s *server.Server, clients clientService) *ClientHandler {
	return &ClientHandler{
		Handler: NewHandler(s),
		clients: clients,
	}
}

// AddClient handles POST /clients.
func (h *ClientHandler) AddClient(c echo.Context, req *client.CreateClientRequest) (*client.CreateClientResponse, error) {
	return h.clients.AddClient(c.Request().Context(), req)
}

// GetClient handles GET /clients/:id.
func (h *ClientHandler) GetClient(c echo.Context, req *client.ClientIDRequest) (*client.Client, error) {
	return h.clients.GetClient(c.Request().Context(), req.ID)
}

// FindClients handles GET /clients. Without filters every client is returned.
func (h *ClientHandler) FindClients(c echo.Context, req *client.FindClientsRequest) ([]client.Client, error) {
	return h.clients.FindClients(c.Request().Context(), req.Filter())
}

// ExportClients handles GET /clients/export: the FindClients result as CSV,
// phones joined by ";".
func (h *ClientHandler) ExportClients(c echo.Context, req *client.FindClientsRequest) ([]byte, error) {
	clients, err := h.clients.FindClients(c.Request().Context(), req.Filter())
	if err != nil {
		return nil, err
	}
	return encodeClientsCSV(clients)
}

// UpdateClient handles PATCH /clients/:id.
func (h *ClientHandler) UpdateClient(c echo.Context, req *client.UpdateClientRequest) error {
	return h.clients.UpdateClient(c.Request().Context(), req.ID, req.Patch())
}

// DeleteClient handles DELETE /clients/:id[?purge=true].
func (h *ClientHandler) DeleteClient(c echo.Context, req *client.DeleteClientRequest) error {
	return h.clients.DeleteClient(c.Request().Context(), req.ID, req.Purge)
}

// AddPhone handles POST /clients/:id/phones.
func (h *ClientHandler) AddPhone(c echo.Context, req *client.PhoneRequest) error {
	return h.clients.AddPhone(c.Request().Context(), req.ClientID, req.Phone)
}

// DeletePhone handles DELETE /clients/:id/phones?phone=...
func (h *ClientHandler) DeletePhone(c echo.Context, req *client.PhoneRequest) error {
	return h.clients.DeletePhone(c.Request().Context(), req.ClientID, req.Phone)
}

var csvHeader = []string{"id", "first_name", "last_name", "email", "phones"}

func encodeClientsCSV(clients []client.Client) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, cl := range clients {
		record := []string{
			strconv.FormatInt(cl.ID, 10),
			cl.FirstName,
			cl.LastName,
			cl.Email,
			strings.Join(cl.Phones, ";"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// RegisterRoutes mounts the client endpoints under g, e.g. /api/v1/clients.
// /export is registered before /:id.
func (h *ClientHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", Handle(h.Handler, h.AddClient, http.StatusCreated, &client.CreateClientRequest{}))
	g.GET("", Handle(h.Handler, h.FindClients, http.StatusOK, &client.FindClientsRequest{}))
	g.GET("/export", HandleFile(h.Handler, h.ExportClients, http.StatusOK, &client.FindClientsRequest{},
		"clients.csv", "text/csv"))
	g.GET("/:id", Handle(h.Handler, h.GetClient, http.StatusOK, &client.ClientIDRequest{}))
	g.PATCH("/:id", HandleNoContent(h.Handler, h.UpdateClient, http.StatusNoContent, &client.UpdateClientRequest{}))
	g.DELETE("/:id", HandleNoContent(h.Handler, h.DeleteClient, http.StatusNoContent, &client.DeleteClientRequest{}))
	g.POST("/:id/phones", HandleNoContent(h.Handler, h.AddPhone, http.StatusNoContent, &client.PhoneRequest{}))
	g.DELETE("/:id/phones", HandleNoContent(h.Handler, h.DeletePhone, http.StatusNoContent, &client.PhoneRequest{}))
}
