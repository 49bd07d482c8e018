// Package httpserver is the keep-alive surface: a tiny JSON API that lets
// a hosting platform (or a human) see that the desk is up and what its
// knowledge base looks like.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/habiliai/answerdesk/config"
	"github.com/habiliai/answerdesk/errors"
	"github.com/habiliai/answerdesk/knowledge"
)

type Server struct {
	server    *http.Server
	logger    *slog.Logger
	store     knowledge.Store
	startedAt time.Time
}

func New(conf *config.ServerConfig, store knowledge.Store, logger *slog.Logger) *Server {
	s := &Server{
		logger:    logger,
		store:     store,
		startedAt: time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleStatus).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/stats", s.handleStats).Methods("GET")

	recovery := handlers.RecoveryHandler(
		handlers.PrintRecoveryStack(true),
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)
	accessLog := slog.NewLogLogger(logger.Handler(), slog.LevelInfo)

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler: recovery(handlers.CombinedLoggingHandler(accessLog.Writer(), router)),
	}

	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("keep-alive server started", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrapf(err, "failed to shut down keep-alive server")
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrapf(err, "keep-alive server failed")
		}
		return nil
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "alive",
		"service":   "answerdesk",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to collect knowledge base stats", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "knowledge base unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
