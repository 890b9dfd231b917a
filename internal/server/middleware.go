// internal/server/middleware.go
package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	stderrors "cost-optimizer/internal/common/errors"
	"cost-optimizer/internal/common/metrics"
	"cost-optimizer/internal/models"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// currentUser returns the authenticated user from the request context.
func currentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// statusWriter captures the response status for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		s.logger.Info("request completed", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"durationMs": time.Since(start).Milliseconds(),
			"remoteAddr": r.RemoteAddr,
		})
	})
}

func (s *Server) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = r.URL.Path
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, routePattern, strconv.Itoa(sw.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, routePattern).Observe(time.Since(start).Seconds())
	})
}

// requireAuth admits requests carrying a valid API key header or a valid
// session cookie.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
			for _, key := range s.cfg.Auth.APIKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			s.errs.WriteError(w, r, stderrors.NewNotAuthenticatedError("invalid API key"))
			return
		}

		cookie, err := r.Cookie(s.auth.CookieName())
		if err != nil {
			s.errs.WriteError(w, r, stderrors.NewNotAuthenticatedError("missing credentials"))
			return
		}

		userID, err := s.auth.ParseToken(cookie.Value)
		if err != nil {
			s.errs.WriteError(w, r, err)
			return
		}

		user, err := s.users.ByID(r.Context(), userID)
		if err != nil {
			s.errs.WriteError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
