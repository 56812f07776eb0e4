package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/harunnryd/mimir/internal/config"
	"github.com/harunnryd/mimir/internal/store"
)

const StoreWorkerName = "StoreWorker"

// StoreWorkerComponent owns the vector store worker for the serve process.
type StoreWorkerComponent struct {
	vectorCfg  config.VectorConfig
	forceClean bool
	worker     *store.Worker
	started    bool
	mu         sync.RWMutex
}

func NewStoreWorkerComponent(vectorCfg config.VectorConfig, forceClean bool) *StoreWorkerComponent {
	return &StoreWorkerComponent{vectorCfg: vectorCfg, forceClean: forceClean}
}

func (s *StoreWorkerComponent) Name() string {
	return StoreWorkerName
}

func (s *StoreWorkerComponent) Dependencies() []string {
	return nil
}

func (s *StoreWorkerComponent) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s init cancelled: %w", s.Name(), ctx.Err())
	default:
	}

	layout, err := store.ResolveLayout(s.vectorCfg.Path)
	if err != nil {
		return err
	}
	runtimeCfg, err := store.RuntimeConfigFrom(s.vectorCfg)
	if err != nil {
		return err
	}

	// A lock older than the acquisition timeout belongs to a dead process.
	if err := store.CleanupStaleLock(layout.Lock, runtimeCfg.LockTimeout, s.forceClean); err != nil {
		slog.Warn("Failed to cleanup stale lock", "path", layout.Lock, "error", err)
	}

	worker, err := store.NewWorker(layout, runtimeCfg)
	if err != nil {
		return fmt.Errorf("failed to init store worker: %w", err)
	}

	s.worker = worker
	slog.Info("StoreWorker initialized", "component", s.Name(), "path", layout.Root)
	return nil
}

func (s *StoreWorkerComponent) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.worker == nil {
		return fmt.Errorf("%s not initialized", s.Name())
	}
	s.worker.Start()
	s.started = true
	return nil
}

func (s *StoreWorkerComponent) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.worker == nil {
		return nil
	}
	s.worker.Stop()
	s.started = false
	return nil
}

func (s *StoreWorkerComponent) Health(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.worker == nil:
		return fmt.Errorf("not initialized")
	case !s.started:
		return fmt.Errorf("not started")
	case !s.worker.IsLockHeld():
		return fmt.Errorf("lock not held")
	case !s.worker.IsRunning():
		return fmt.Errorf("loop not running")
	}
	return nil
}

// Worker is nil until Init succeeds.
func (s *StoreWorkerComponent) Worker() *store.Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.worker
}
