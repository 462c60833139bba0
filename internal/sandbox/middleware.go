// internal/sandbox/middleware.go

package sandbox

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"go.uber.org/zap"
)

type contextKey string

const userIDKey contextKey = "userID"

// Middleware authenticates requests the way the mobile backend does: a Bearer header or
// the payload-token cookie, whichever is present.
type Middleware struct {
	store  *Store
	secret string
}

func NewMiddleware(store *Store, secret string) *Middleware {
	return &Middleware{store: store, secret: secret}
}

// Authenticate protects a route. The token must verify and its user must still exist.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Extract token from header or cookie
		token := extractToken(r)
		if token == "" {
			utils.ErrorResponse(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		// 2. Validate token
		claims, err := utils.ValidateJWT(token, m.secret)
		if err != nil {
			utils.ErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		// 3. Deleted accounts keep valid signatures
		if !m.store.UserExists(claims.UserID) {
			utils.ErrorResponse(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken supports "Bearer <token>" and the payload-token cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(apiclient.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// UserIDFromContext returns the authenticated user id
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs one line per request
func loggingMiddleware(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debugw("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
		})
	}
}
