package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskboard-backend/internal/auth"
	"taskboard-backend/internal/task"
	taskrepo "taskboard-backend/internal/task/repo"
	"taskboard-backend/internal/user"
	userrepo "taskboard-backend/internal/user/repo"
	"taskboard-backend/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDMiddleware assigns a correlation id to every request and exposes
// it on the X-Request-Id response header.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = utilities.NewRequestID()
			}
			w.Header().Set("X-Request-Id", id)
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", lrw.Header().Get("X-Request-Id"),
			)
		})
	}
}

// RecoverMiddleware catches panics escaping a handler, logs them and maps
// them to a generic internal error. No partial response handling is
// attempted; by the time a handler panics mid-write the connection is gone
// anyway.
func RecoverMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Errorw("panic in handler",
						"method", r.Method,
						"path", r.URL.Path,
						"panic", rec,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"message": "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers on the standard library's http.ServeMux
// and wraps them in the middleware chain.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, tokens *auth.Service) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// auth routes
	userHandler := user.NewHandler(
		user.NewService(userrepo.NewUserRepo(db), nil),
		tokens,
		logger,
	)
	mux.HandleFunc("POST /api/auth/register", userHandler.Register)
	mux.HandleFunc("POST /api/auth/login", userHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", userHandler.Logout)

	// task routes, all behind the identity check
	taskHandler := task.NewHandler(task.NewService(taskrepo.NewTaskRepo(db)), logger)
	mux.Handle("GET /api/tasks", tokens.RequireUser(http.HandlerFunc(taskHandler.List)))
	mux.Handle("POST /api/tasks", tokens.RequireUser(http.HandlerFunc(taskHandler.Create)))
	mux.Handle("PUT /api/tasks/{id}", tokens.RequireUser(http.HandlerFunc(taskHandler.Update)))
	mux.Handle("DELETE /api/tasks/{id}", tokens.RequireUser(http.HandlerFunc(taskHandler.Delete)))

	// outermost first: recover, then logging, then request id and headers
	handler := SecurityHeadersMiddleware()(mux)
	handler = RequestIDMiddleware()(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RecoverMiddleware(logger)(handler)
	return handler
}
