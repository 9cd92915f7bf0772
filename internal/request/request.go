package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "planner_user"

// ClientIP extracts the client address, preferring X-Forwarded-For, then X-Real-IP, then the
// connection's remote host without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil if there is none
func UserFromContext(r *http.Request) *models.User {
	return UserFrom(r.Context())
}

// UserFrom returns the user stored in ctx, or nil
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userContextKey).(*models.User)
	return u
}

// UserID returns the authenticated user's ID, or uuid.Nil
func UserID(ctx context.Context) uuid.UUID {
	if u := UserFrom(ctx); u != nil {
		return u.ID
	}
	return uuid.Nil
}
