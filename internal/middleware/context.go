package middleware

import (
	"github.com/deppfellow/client-directory/internal/logger"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	UserIDKey      = "user_id"
	UserRoleKey    = "user_role"
	PermissionsKey = "permissions"
	LoggerKey      = "logger"
)

// ContextEnhancer attaches a request-scoped logger carrying the request id,
// route, client IP, trace ids and, once authenticated, the user.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext stores the logger both in the Echo context (GetLogger) and
// in the request's context.Context, where services read it with zerolog.Ctx.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setLogger(c, withUser(c, contextLogger))

			return next(c)
		}
	}
}

// withUser adds whatever identity RequireAuth has stored on c.
func withUser(c echo.Context, l zerolog.Logger) zerolog.Logger {
	if userID := GetUserID(c); userID != "" {
		l = l.With().Str("user_id", userID).Logger()
	}
	if userRole := GetUserRole(c); userRole != "" {
		l = l.With().Str("user_role", userRole).Logger()
	}
	if permissions := GetPermissions(c); len(permissions) > 0 {
		l = l.With().Strs("permissions", permissions).Logger()
	}
	return l
}

func setLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
}

// GetUserID returns the authenticated user's id, or "".
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetUserRole returns the authenticated user's organization role, or "".
func GetUserRole(c echo.Context) string {
	if role, ok := c.Get(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

// GetPermissions returns the active organization permissions of the
// authenticated user, or nil.
func GetPermissions(c echo.Context) []string {
	if permissions, ok := c.Get(PermissionsKey).([]string); ok {
		return permissions
	}
	return nil
}

// GetLogger returns the request-scoped logger, or a no-op logger when
// EnhanceContext has not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}
