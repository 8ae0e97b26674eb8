package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"vstepprep/internal/metrics"
	"vstepprep/internal/models"
	"vstepprep/internal/security"
	"vstepprep/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.TokenIssuer
	auth    *service.AuthService
	limiter *security.RateLimiter
	log     *logrus.Logger
	metrics *metrics.Metrics
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenIssuer, auth *service.AuthService, limiter *security.RateLimiter, log *logrus.Logger, m *metrics.Metrics) *Middleware {
	return &Middleware{
		tokens:  tokens,
		auth:    auth,
		limiter: limiter,
		log:     log,
		metrics: m,
	}
}

// RequireAuth requires a valid Bearer token and loads the user into context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(nil, w, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			respondError(nil, w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		user, err := m.auth.GetUser(claims.UserID)
		if err != nil {
			respondError(m.log, w, http.StatusUnauthorized, "unknown account", err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole requires the authenticated user to hold one of the given roles
func (m *Middleware) RequireRole(next http.HandlerFunc, roles ...models.Role) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		for _, role := range roles {
			if user.Role == role {
				next(w, r)
				return
			}
		}
		respondError(nil, w, http.StatusForbidden, "insufficient permissions", nil)
	})
}

// RateLimit rejects requests over the per-IP budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			respondError(nil, w, http.StatusTooManyRequests, "too many requests", nil)
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler with request logging and Prometheus metrics
func (m *Middleware) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		m.metrics.RequestsInFlight.Inc()
		next.ServeHTTP(recorder, r)
		m.metrics.RequestsInFlight.Dec()

		elapsed := time.Since(start)
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}

		m.metrics.RequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(recorder.status)).Inc()
		m.metrics.RequestDuration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())

		m.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   recorder.status,
			"duration": elapsed.String(),
		}).Info("request handled")
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
