package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tgienger/tasktracker/internal/tracker"
)

// Authenticator checks a username/password pair. *auth.Gate implements it.
type Authenticator interface {
	Login(username, password string) error
}

// Server exposes the task engine as a local JSON API
type Server struct {
	tasks *tracker.Service
	auth  Authenticator
	log   *zap.Logger
	now   func() time.Time
}

func New(tasks *tracker.Service, auth Authenticator, log *zap.Logger) *Server {
	return &Server{
		tasks: tasks,
		auth:  auth,
		log:   log,
		now:   time.Now,
	}
}

// Router returns the API routes with logging, recovery and basic auth
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.basicAuth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", s.listTasks)
		r.Post("/tasks", s.createTask)
		r.Post("/tasks/clear-completed", s.clearCompleted)
		r.Get("/tasks/{id}", s.getTask)
		r.Put("/tasks/{id}", s.updateTask)
		r.Delete("/tasks/{id}", s.deleteTask)

		r.Get("/stats", s.stats)

		r.Get("/bin", s.listDeleted)
		r.Post("/bin/{id}/restore", s.restoreTask)
	})

	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", zap.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="tasktracker"`)
			respondError(w, http.StatusUnauthorized, "credentials required")
			return
		}
		if err := s.auth.Login(username, password); err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="tasktracker"`)
			s.respondErr(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
