package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/harunnryd/mimir/internal/config"
)

const HTTPServerName = "HTTPServer"

// HandlerFactory builds the HTTP handler once dependencies are initialized.
type HandlerFactory func(ctx context.Context) (http.Handler, error)

type HTTPServerComponent struct {
	cfg          config.ServerConfig
	factory      HandlerFactory
	dependencies []string
	server       *http.Server
	listener     net.Listener
	shutdownTTL  time.Duration
	serveErr     chan error
	started      bool
	mu           sync.RWMutex
}

func NewHTTPServerComponent(cfg config.ServerConfig, factory HandlerFactory, dependencies ...string) *HTTPServerComponent {
	deps := make([]string, len(dependencies))
	copy(deps, dependencies)
	return &HTTPServerComponent{cfg: cfg, factory: factory, dependencies: deps}
}

func (h *HTTPServerComponent) Name() string {
	return HTTPServerName
}

func (h *HTTPServerComponent) Dependencies() []string {
	out := make([]string, len(h.dependencies))
	copy(out, h.dependencies)
	return out
}

func (h *HTTPServerComponent) Init(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeouts, err := h.cfg.Timeouts()
	if err != nil {
		return err
	}
	if h.factory == nil {
		return fmt.Errorf("%s has no handler", h.Name())
	}

	handler, err := h.factory(ctx)
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	h.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", h.cfg.Port),
		Handler:      handler,
		ReadTimeout:  timeouts.Read,
		WriteTimeout: timeouts.Write,
		IdleTimeout:  timeouts.Idle,
	}
	h.shutdownTTL = timeouts.Shutdown
	return nil
}

// Start binds the port synchronously so a busy port fails startup.
func (h *HTTPServerComponent) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.server == nil {
		return fmt.Errorf("%s not initialized", h.Name())
	}

	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", h.server.Addr, err)
	}
	h.listener = ln
	h.serveErr = make(chan error, 1)

	go func(srv *http.Server, ln net.Listener, errc chan<- error) {
		slog.Info("HTTP server listening", "addr", ln.Addr().String())
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
		errc <- err
	}(h.server, ln, h.serveErr)

	h.started = true
	return nil
}

func (h *HTTPServerComponent) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, h.shutdownTTL)
	defer cancel()

	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	h.started = false
	return nil
}

func (h *HTTPServerComponent) Health(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.started {
		return fmt.Errorf("not started")
	}
	select {
	case err := <-h.serveErr:
		h.serveErr <- err
		return fmt.Errorf("server exited: %v", err)
	default:
	}
	return nil
}

// Addr is the bound listen address, empty before Start.
func (h *HTTPServerComponent) Addr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}
