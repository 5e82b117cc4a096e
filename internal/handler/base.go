package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/deppfellow/client-directory/internal/errs"
	"github.com/deppfellow/client-directory/internal/middleware"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/deppfellow/client-directory/internal/sqlerr"
	"github.com/deppfellow/client-directory/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base embedded by every concrete handler for access to the
// shared *server.Server.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it receives the bound, validated request
// and returns a response or an error. Req is a pointer type such as
// *client.CreateClientRequest so that Bind can fill it.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint that writes no body (e.g. 204).
type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, req Req) error

// ResponseHandler writes a successful result and decorates the New Relic
// transaction for its response type.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error

	// GetOperation names the response type in logs.
	GetOperation() string

	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil || result == nil {
		return
	}
	v := reflect.ValueOf(result)
	if v.Kind() == reflect.Slice {
		txn.AddAttribute("response.items", v.Len())
	}
}

// NoContentResponseHandler writes an empty body (typically 204).
type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

func (h NoContentResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	// http.status_code is already set by tracing middleware
}

// FileResponseHandler writes a file download response.
//
// It expects the handler result to be a []byte.
type FileResponseHandler struct {
	status      int
	filename    string
	contentType string
}

func (h FileResponseHandler) Handle(c echo.Context, result interface{}) error {
	data, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("file handler returned %T, want []byte", result)
	}

	c.Response().Header().Set("Content-Disposition", "attachment; filename="+h.filename)
	return c.Blob(h.status, h.contentType, data)
}

func (h FileResponseHandler) GetOperation() string {
	return "handler_file"
}

func (h FileResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn != nil {
		// http.status_code is already set by tracing middleware (EnhanceTracing).
		txn.AddAttribute("file.name", h.filename)
		txn.AddAttribute("file.content_type", h.contentType)
		if data, ok := result.([]byte); ok {
			txn.AddAttribute("file.size_bytes", len(data))
		}
	}
}

// newRequest returns a zero value of the type proto points to, so every
// request binds into its own struct.
func newRequest[Req validation.Validatable](proto Req) Req {
	t := reflect.TypeOf(proto)
	if t == nil || t.Kind() != reflect.Pointer {
		return proto
	}
	return reflect.New(t.Elem()).Interface().(Req)
}

// recordPhase tags the transaction with the outcome and duration of one
// pipeline phase ("validation", "handler", "total").
func recordPhase(txn *newrelic.Transaction, phase, status string, d time.Duration) {
	if txn == nil {
		return
	}
	if status != "" {
		txn.AddAttribute(phase+".status", status)
	}
	txn.AddAttribute(phase+".duration_ms", d.Milliseconds())
}

// handleRequest is the shared pipeline behind Handle, HandleFile and
// HandleNoContent: bind and validate, run the handler, log and trace each
// phase, then write the response.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
		responseHandler.AddAttributes(txn, nil)
	}

	fields := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route)
	if fileHandler, ok := responseHandler.(FileResponseHandler); ok {
		fields = fields.
			Str("filename", fileHandler.filename).
			Str("content_type", fileHandler.contentType)
	}
	logger := fields.Logger()

	logger.Debug().Msg("handling request")

	err := validation.BindAndValidate(c, req)
	validationDuration := time.Since(start)
	if err != nil {
		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		recordPhase(txn, "validation", "failed", validationDuration)
		return err
	}
	recordPhase(txn, "validation", "success", validationDuration)

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)
	totalDuration := time.Since(start)

	if err != nil {
		// 4xx outcomes such as a duplicate email are expected traffic.
		event := logger.Error()
		if status := httpStatus(err); status > 0 && status < http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		recordPhase(txn, "handler", "error", handlerDuration)
		recordPhase(txn, "total", "", totalDuration)
		return err
	}

	recordPhase(txn, "handler", "success", handlerDuration)
	recordPhase(txn, "total", "", totalDuration)
	responseHandler.AddAttributes(txn, result)

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// httpStatus returns the status an *errs.HTTPError carries, mapping storage
// errors the same way the global error handler will. Zero means unknown.
func httpStatus(err error) int {
	var httpErr *errs.HTTPError
	if errors.As(sqlerr.HandleError(err), &httpErr) {
		return httpErr.Status
	}
	return 0
}

// Handle wraps a typed handler into an echo.HandlerFunc that answers with
// JSON and the given status. req is a prototype; each request gets a fresh
// value of its type.
//
//	g.POST("/clients", Handle(h, h.AddClient, http.StatusCreated, &client.CreateClientRequest{}))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleFile wraps a handler returning file bytes as a download.
func HandleFile[Req validation.Validatable](
	h Handler,
	handler HandlerFunc[Req, []byte],
	status int,
	req Req,
	filename string,
	contentType string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, FileResponseHandler{
			status:      status,
			filename:    filename,
			contentType: contentType,
		})
	}
}

// HandleNoContent wraps a handler that writes no body.
func HandleNoContent[Req validation.Validatable](
	h Handler,
	handler HandlerFuncNoContent[Req],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			err := handler(c, req)
			return nil, err
		}, NoContentResponseHandler{status: status})
	}
}
