// Package web provides the HTTP server that receives Telegram webhook updates.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zoheirhassoun/Telegram-bot/internal/bot"
	"github.com/zoheirhassoun/Telegram-bot/internal/config"
	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
	"github.com/zoheirhassoun/Telegram-bot/internal/web/middleware"
)

// Queue accepts decoded messages. *bot.Dispatcher implements it.
type Queue interface {
	Enqueue(ctx context.Context, m bot.Message) error
	Status() bot.DispatcherStatus
}

// Server receives update POSTs and hands their messages to a Queue.
type Server struct {
	cfg    config.WebhookConfig
	queue  Queue
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server for cfg.
func NewServer(cfg config.WebhookConfig, queue Queue) *Server {
	s := &Server{
		cfg:    cfg,
		queue:  queue,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.With(middleware.SecretToken(s.cfg.SecretToken)).
		Post(s.cfg.Path, s.handleUpdate)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleUpdate decodes one update and queues its message.
// Telegram retries any non-2xx response, so only a full queue is
// reported as a failure; malformed or irrelevant updates are acknowledged.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "update too large")
			return
		}
		logger.Warn("webhook: malformed update", "error", err)
		writeError(w, http.StatusBadRequest, "malformed update")
		return
	}

	m, ok := bot.FromUpdate(update)
	if !ok {
		logger.Debug("webhook: update without message", "update_id", update.UpdateID)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.queue.Enqueue(r.Context(), m); err != nil {
		logger.Warn("webhook: update rejected", "update_id", m.UpdateID, "chat_id", m.ChatID, "error", err)
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusServiceUnavailable, "queue full")
		return
	}

	w.WriteHeader(http.StatusOK)
}

type healthResponse struct {
	Status string               `json:"status"`
	Queue  bot.DispatcherStatus `json:"queue"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Queue: s.queue.Status()})
}

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	slog.Info("webhook server listening", "addr", ln.Addr().String(), "path", s.cfg.Path)
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
