// Package webhook is the HTTP front door for cloud-pushed message events.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"webexbot/internal/domain"
	"webexbot/internal/infra/config"
	"webexbot/internal/infra/middleware"
)

// EventHandler consumes one decoded webhook delivery.
type EventHandler func(ctx context.Context, event *domain.WebhookEvent)

// Server accepts webhook callbacks from the cloud and hands decoded events
// to the runtime. The root path answers a liveness probe; the configured
// webhook path accepts event posts.
type Server struct {
	cfg     config.WebhookConfig
	logger  *slog.Logger
	handler EventHandler

	server    *http.Server
	boundAddr string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a webhook server. Start must be called to bind it.
func NewServer(cfg config.WebhookConfig, logger *slog.Logger, handler EventHandler) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}
}

// Start binds the listener and begins serving. Non-blocking.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc(s.cfg.Path, s.handleEvent)

	secureHandler := middleware.SecurityHeaders(
		middleware.RateLimit(s.ctx, s.cfg.RequestsPerMin, s.cfg.BurstSize)(mux),
	)

	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           secureHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.boundAddr = ln.Addr().String()

	go func() {
		s.logger.Info("webhook server started", "addr", s.boundAddr, "path", s.cfg.Path)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("webhook server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// BoundAddr returns the actual listen address. Valid after Start.
func (s *Server) BoundAddr() string { return s.boundAddr }

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, "WebexBot Server")
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Limit request body to 1MB to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var event domain.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.logger.Debug("undecodable webhook delivery", "error", err)
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// Ack with 202 before processing. Events run on the server's lifetime
	// context so dispatched handlers are not cancelled when this request
	// finishes.
	w.WriteHeader(http.StatusAccepted)

	s.handler(s.ctx, &event)
}
