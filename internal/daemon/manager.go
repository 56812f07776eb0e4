// Package daemon runs the serve process: it initializes, starts and stops
// components around a signal-aware context.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/harunnryd/mimir/internal/config"
)

type Daemon struct {
	cfg        *config.Config
	components []Component
	status     Status
	mu         sync.RWMutex
}

func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &Daemon{cfg: cfg, status: StatusStarting}, nil
}

func (d *Daemon) AddComponent(comp Component) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.components = append(d.components, comp)
	slog.Debug("Component registered", "component", comp.Name(), "total_components", len(d.components))
}

// Run blocks until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// every component down within server.shutdown_timeout.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeouts, err := d.cfg.Server.Timeouts()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if d.cfg.Server.Port < 1 || d.cfg.Server.Port > 65535 {
		return fmt.Errorf("config validation failed: invalid port %d (must be 1-65535)", d.cfg.Server.Port)
	}

	if err := d.initializeComponents(ctx); err != nil {
		d.shutdown(context.Background(), timeouts.Shutdown)
		return fmt.Errorf("component initialization failed: %w", err)
	}

	if err := d.startComponents(ctx); err != nil {
		d.shutdown(context.Background(), timeouts.Shutdown)
		return fmt.Errorf("component startup failed: %w", err)
	}

	d.setStatus(StatusRunning)
	slog.Info("Mimir is running", "port", d.cfg.Server.Port, "components", len(d.components))

	<-ctx.Done()

	slog.Info("Shutting down", "reason", context.Cause(ctx))
	if err := d.shutdown(context.Background(), timeouts.Shutdown); err != nil {
		return err
	}
	return nil
}

func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// ComponentHealth maps each component name to its health error, nil when healthy.
func (d *Daemon) ComponentHealth(ctx context.Context) map[string]error {
	d.mu.RLock()
	components := make([]Component, len(d.components))
	copy(components, d.components)
	d.mu.RUnlock()

	result := make(map[string]error, len(components))
	for _, comp := range components {
		result[comp.Name()] = comp.Health(ctx)
	}
	return result
}

func (d *Daemon) setStatus(status Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
}

func (d *Daemon) initializeComponents(ctx context.Context) error {
	order, err := d.resolveInitOrder()
	if err != nil {
		return err
	}

	for _, name := range order {
		comp := d.component(name)
		slog.Debug("Initializing component", "component", name)
		if err := comp.Init(ctx); err != nil {
			return fmt.Errorf("component %s init failed: %w", name, err)
		}
	}
	return nil
}

func (d *Daemon) startComponents(ctx context.Context) error {
	for _, comp := range d.components {
		if err := comp.Start(ctx); err != nil {
			return fmt.Errorf("component %s startup failed: %w", comp.Name(), err)
		}
		slog.Debug("Component started", "component", comp.Name())
	}
	return nil
}

// shutdown stops every component in reverse registration order. Stop must be
// safe on a component that never started.
func (d *Daemon) shutdown(ctx context.Context, timeout time.Duration) error {
	d.setStatus(StatusStopping)

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var errs []error
		for i := len(d.components) - 1; i >= 0; i-- {
			comp := d.components[i]
			if err := comp.Stop(shutdownCtx); err != nil {
				slog.Error("Component stop failed", "component", comp.Name(), "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", comp.Name(), err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		d.setStatus(StatusStopped)
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		slog.Info("Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		d.setStatus(StatusStopped)
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

func (d *Daemon) component(name string) Component {
	for _, comp := range d.components {
		if comp.Name() == name {
			return comp
		}
	}
	return nil
}

// resolveInitOrder sorts components so dependencies initialize first.
func (d *Daemon) resolveInitOrder() ([]string, error) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		if visiting[name] {
			return fmt.Errorf("circular dependency detected involving %s", name)
		}
		if visited[name] {
			return nil
		}

		comp := d.component(name)
		if comp == nil {
			return fmt.Errorf("component %s not registered", name)
		}

		visiting[name] = true
		for _, dep := range comp.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visiting[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, comp := range d.components {
		if err := visit(comp.Name()); err != nil {
			return nil, err
		}
	}
	return order, nil
}
