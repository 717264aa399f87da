// Package api serves the audit pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/huangsam/pagepulse/core"
	"github.com/huangsam/pagepulse/internal/auth"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/internal/logging"
	"github.com/huangsam/pagepulse/internal/metrics"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server wires HTTP routes to an Auditor.
type Server struct {
	Auditor        *core.Auditor
	Identity       contract.Identity
	CronSecret     string
	AllowedOrigins []string
	Metrics        *metrics.Recorder
	Status         func(ctx context.Context) error // health probe, optional
	Logger         logrus.FieldLogger
}

func (s *Server) log() logrus.FieldLogger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}

// Routes returns the HTTP handler of the server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	// Audits
	mux.HandleFunc("POST /api/runs", s.withCORS(s.withUser(s.handleTrigger)))
	mux.HandleFunc("GET /api/runs", s.withCORS(s.withUser(s.handleHistory)))
	mux.HandleFunc("GET /api/runs/{id}/impact", s.withCORS(s.withUser(s.handleImpact)))
	mux.HandleFunc("GET /api/dashboard", s.withCORS(s.withUser(s.handleDashboard)))

	// Scheduled batch, triggered by the platform cron with a shared secret
	mux.HandleFunc("GET /api/cron/daily", s.handleCron)
	mux.HandleFunc("POST /api/cron/daily", s.handleCron)

	// Sites
	mux.HandleFunc("GET /api/sites", s.withCORS(s.withUser(s.handleListSites)))
	mux.HandleFunc("POST /api/sites", s.withCORS(s.withUser(s.handleCreateSite)))
	mux.HandleFunc("PATCH /api/sites/{id}", s.withCORS(s.withUser(s.handleUpdateSite)))
	mux.HandleFunc("DELETE /api/sites/{id}", s.withCORS(s.withUser(s.handleDeleteSite)))
	mux.HandleFunc("GET /api/sites/{id}/latest", s.withCORS(s.withUser(s.handleLatestRun)))

	// Preflight
	mux.HandleFunc("OPTIONS /api/", s.withCORS(func(w http.ResponseWriter, r *http.Request) {}))

	return s.withRecover(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Batch runs can take many provider round trips
		WriteTimeout: 15 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log().WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.log().Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) withCORS(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if origin := s.pickCORSOrigin(r); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h(w, r)
	}
}

func (s *Server) pickCORSOrigin(r *http.Request) string {
	origin := r.Header.Get("Origin")
	for _, ao := range s.AllowedOrigins {
		if ao == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(origin, ao) {
			return origin
		}
	}
	return ""
}

// withUser authenticates the bearer token and stores the user in the request context.
func (s *Server) withUser(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Identity == nil {
			writeError(w, unauthorized("authentication is not configured"), 0)
			return
		}
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, unauthorized("missing bearer token"), 0)
			return
		}
		user, err := s.Identity.Authenticate(token)
		if err != nil {
			s.log().WithError(err).Debug("rejected bearer token")
			writeError(w, err, 0)
			return
		}
		h(w, r.WithContext(auth.WithUser(r.Context(), user)))
	}
}

func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log().WithFields(logrus.Fields{"panic": rec, "path": r.URL.Path}).Error("handler panic")
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
