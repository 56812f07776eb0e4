package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	stdatomic "sync/atomic"
	"time"

	"github.com/harunnryd/mimir/internal/concurrency"
	"github.com/harunnryd/mimir/internal/config"
	"github.com/harunnryd/mimir/internal/idempotency"

	"github.com/philippgille/chromem-go"
)

// ErrStopped is returned for requests submitted after Stop.
var ErrStopped = errors.New("store worker stopped")

type Operation int

const (
	OpUpsertVectors Operation = iota
	OpSearchVectors
	OpCountVectors
	OpTrimSource
	OpSaveIdempotency
)

type Request struct {
	Op      Operation
	Payload interface{}
	Reply   chan Reply
}

type Reply struct {
	Value interface{}
	Err   error
}

type UpsertVectorsPayload struct {
	Collection string
	Documents  []Document
}

type SearchVectorsPayload struct {
	Collection string
	Vector     []float32
	Limit      int
}

// TrimSourcePayload names the chunks of SourceURL from index From onward.
// IDFor maps a chunk index to its document id.
type TrimSourcePayload struct {
	Collection string
	SourceURL  string
	From       int
	IDFor      func(int) string
}

// Worker owns the chromem database and the ingestion ledger. All writes go
// through a single goroutine; the file lock keeps other processes out.
type Worker struct {
	layout    Layout
	inbox     chan Request
	idemStore *idempotency.Store
	fileLock  *FileLock
	quit      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	vectorDB  *chromem.DB
	running   stdatomic.Bool
}

type RuntimeConfig struct {
	LockTimeout  time.Duration
	LockRetry    time.Duration
	LockMaxRetry int
	InboxSize    int
}

// RuntimeConfigFrom reads the worker settings out of the vector config section.
func RuntimeConfigFrom(cfg config.VectorConfig) (RuntimeConfig, error) {
	lockTimeout, err := config.DurationOrDefault(cfg.LockTimeout, config.DefaultVectorLockTimeout)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse vector lock timeout: %w", err)
	}
	lockRetry, err := config.DurationOrDefault(cfg.LockRetry, config.DefaultVectorLockRetry)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse vector lock retry: %w", err)
	}
	return RuntimeConfig{
		LockTimeout:  lockTimeout,
		LockRetry:    lockRetry,
		LockMaxRetry: cfg.LockMaxRetry,
		InboxSize:    cfg.InboxSize,
	}, nil
}

func NewWorker(layout Layout, runtimeCfg RuntimeConfig) (*Worker, error) {
	if err := os.MkdirAll(layout.DB, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector dir %s: %w", layout.DB, err)
	}

	defaults := DefaultFileLockConfig()
	if runtimeCfg.LockTimeout <= 0 {
		runtimeCfg.LockTimeout = defaults.LockTimeout
	}
	if runtimeCfg.LockRetry <= 0 {
		runtimeCfg.LockRetry = defaults.LockRetry
	}
	if runtimeCfg.LockMaxRetry <= 0 {
		runtimeCfg.LockMaxRetry = defaults.LockMaxRetry
	}
	if runtimeCfg.InboxSize <= 0 {
		runtimeCfg.InboxSize = config.DefaultVectorInboxSize
	}

	fileLock, err := NewFileLock(layout.Lock, &FileLockConfig{
		LockTimeout:  runtimeCfg.LockTimeout,
		LockRetry:    runtimeCfg.LockRetry,
		LockMaxRetry: runtimeCfg.LockMaxRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	idemStore, err := idempotency.NewStore(layout.Ledger)
	if err != nil {
		fileLock.Unlock()
		return nil, fmt.Errorf("failed to load ingestion ledger: %w", err)
	}

	vectorDB, err := chromem.NewPersistentDB(layout.DB, false)
	if err != nil {
		fileLock.Unlock()
		return nil, fmt.Errorf("failed to init vector db: %w", err)
	}

	return &Worker{
		layout:    layout,
		inbox:     make(chan Request, runtimeCfg.InboxSize),
		idemStore: idemStore,
		fileLock:  fileLock,
		quit:      make(chan struct{}),
		vectorDB:  vectorDB,
	}, nil
}

func (w *Worker) Start() {
	w.wg.Add(1)
	concurrency.SafeGo("store-worker", w.loop, func(interface{}) {
		w.running.Store(false)
	})
}

func (w *Worker) loop() {
	slog.Debug("Store worker started", "path", w.layout.Root)
	w.running.Store(true)
	defer func() {
		w.running.Store(false)
		w.wg.Done()
	}()

	if pruned := w.idemStore.Prune(); pruned > 0 {
		slog.Info("Pruned expired ingestion keys", "count", pruned)
		if err := w.idemStore.Save(); err != nil {
			slog.Error("Failed to save pruned keys", "error", err)
		}
	}

	for {
		select {
		case req := <-w.inbox:
			value, err := w.handle(req)
			if req.Reply != nil {
				req.Reply <- Reply{Value: value, Err: err}
			}
		case <-w.quit:
			slog.Debug("Store worker stopping")
			return
		}
	}
}

func (w *Worker) handle(req Request) (interface{}, error) {
	switch req.Op {
	case OpUpsertVectors:
		p, ok := req.Payload.(UpsertVectorsPayload)
		if !ok {
			return nil, fmt.Errorf("invalid payload for UpsertVectors")
		}
		return nil, w.upsertVectors(p)
	case OpSearchVectors:
		p, ok := req.Payload.(SearchVectorsPayload)
		if !ok {
			return nil, fmt.Errorf("invalid payload for SearchVectors")
		}
		return w.searchVectors(p)
	case OpCountVectors:
		name, ok := req.Payload.(string)
		if !ok {
			return nil, fmt.Errorf("invalid payload for CountVectors")
		}
		col := w.vectorDB.GetCollection(name, nil)
		if col == nil {
			return 0, nil
		}
		return col.Count(), nil
	case OpTrimSource:
		p, ok := req.Payload.(TrimSourcePayload)
		if !ok || p.IDFor == nil {
			return nil, fmt.Errorf("invalid payload for TrimSource")
		}
		return w.trimSource(p)
	case OpSaveIdempotency:
		return nil, w.idemStore.Save()
	default:
		return nil, fmt.Errorf("unknown operation: %d", req.Op)
	}
}

func (w *Worker) upsertVectors(p UpsertVectorsPayload) error {
	if len(p.Documents) == 0 {
		return nil
	}

	// Nil embedding func because callers provide embeddings
	col, err := w.vectorDB.GetOrCreateCollection(p.Collection, nil, nil)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, 0, len(p.Documents))
	for _, d := range p.Documents {
		docs = append(docs, chromem.Document{
			ID:        d.ID,
			Metadata:  d.Metadata,
			Embedding: d.Vector,
			Content:   d.Content,
		})
	}

	// AddDocuments is upsert in chromem
	return col.AddDocuments(context.Background(), docs, 1)
}

func (w *Worker) searchVectors(p SearchVectorsPayload) ([]VectorResult, error) {
	col := w.vectorDB.GetCollection(p.Collection, nil)
	if col == nil {
		return []VectorResult{}, nil
	}

	// chromem rejects nResults above the collection size
	limit := p.Limit
	if count := col.Count(); limit > count {
		limit = count
	}
	if limit <= 0 {
		return []VectorResult{}, nil
	}

	docs, err := col.QueryEmbedding(context.Background(), p.Vector, limit, nil, nil)
	if err != nil {
		return nil, err
	}

	results := make([]VectorResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, VectorResult{
			ID:       doc.ID,
			Score:    doc.Similarity,
			Metadata: doc.Metadata,
			Content:  doc.Content,
		})
	}
	return results, nil
}

// trimSource walks chunk ids upward from p.From and deletes them until one is
// missing. Chunks of a source are always written with contiguous indexes.
func (w *Worker) trimSource(p TrimSourcePayload) (int, error) {
	col := w.vectorDB.GetCollection(p.Collection, nil)
	if col == nil || col.Count() == 0 {
		return 0, nil
	}

	ctx := context.Background()
	var stale []string
	for i := p.From; ; i++ {
		id := p.IDFor(i)
		doc, err := col.GetByID(ctx, id)
		if err != nil || doc.Metadata[MetaSourceURL] != p.SourceURL {
			break
		}
		stale = append(stale, id)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := col.Delete(ctx, nil, nil, stale...); err != nil {
		return 0, err
	}
	return len(stale), nil
}

func (w *Worker) submit(ctx context.Context, op Operation, payload interface{}) (interface{}, error) {
	reply := make(chan Reply, 1)
	req := Request{Op: op, Payload: payload, Reply: reply}

	select {
	case <-w.quit:
		return nil, ErrStopped
	default:
	}

	select {
	case w.inbox <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.quit:
		return nil, ErrStopped
	}

	select {
	case r := <-reply:
		return r.Value, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.quit:
		return nil, ErrStopped
	}
}

// Public API for other components

func (w *Worker) Upsert(ctx context.Context, collection string, docs []Document) error {
	_, err := w.submit(ctx, OpUpsertVectors, UpsertVectorsPayload{Collection: collection, Documents: docs})
	return err
}

func (w *Worker) Search(ctx context.Context, collection string, vector []float32, limit int) ([]VectorResult, error) {
	val, err := w.submit(ctx, OpSearchVectors, SearchVectorsPayload{Collection: collection, Vector: vector, Limit: limit})
	if err != nil {
		return nil, err
	}
	return val.([]VectorResult), nil
}

func (w *Worker) Count(ctx context.Context, collection string) (int, error) {
	val, err := w.submit(ctx, OpCountVectors, collection)
	if err != nil {
		return 0, err
	}
	return val.(int), nil
}

// TrimSource deletes the chunks of sourceURL at index from and above, and
// reports how many were removed.
func (w *Worker) TrimSource(ctx context.Context, collection, sourceURL string, from int, idFor func(int) string) (int, error) {
	val, err := w.submit(ctx, OpTrimSource, TrimSourcePayload{Collection: collection, SourceURL: sourceURL, From: from, IDFor: idFor})
	if err != nil {
		return 0, err
	}
	return val.(int), nil
}

// CheckAndMarkKey reports whether key was already marked within its TTL and
// marks it otherwise. The ledger is persisted asynchronously.
func (w *Worker) CheckAndMarkKey(key string, ttl time.Duration) bool {
	if ttl <= 0 {
		if d, err := config.DurationOrDefault("", config.DefaultVectorIngestTTL); err == nil {
			ttl = d
		}
	}
	exists := w.idemStore.CheckAndMark(key, ttl)
	if !exists {
		w.saveIdempotency()
	}
	return exists
}

// ForgetKey unmarks key so the next CheckAndMarkKey succeeds.
func (w *Worker) ForgetKey(key string) {
	if w.idemStore.Forget(key) {
		w.saveIdempotency()
	}
}

func (w *Worker) saveIdempotency() {
	select {
	case w.inbox <- Request{Op: OpSaveIdempotency}:
	case <-w.quit:
	}
}

// SaveIdempotencySync persists the ledger and waits for the write.
func (w *Worker) SaveIdempotencySync(ctx context.Context) error {
	_, err := w.submit(ctx, OpSaveIdempotency, nil)
	return err
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		slog.Debug("Store worker Stop called", "path", w.layout.Root, "lock_held", w.fileLock.IsLocked())

		close(w.quit)
		w.wg.Wait()

		if err := w.idemStore.Save(); err != nil {
			slog.Error("Failed to save ingestion ledger", "error", err)
		}

		if w.fileLock.IsLocked() {
			w.fileLock.Unlock()
		}
	})
}

func (w *Worker) IsLockHeld() bool {
	return w.fileLock.IsLocked()
}

func (w *Worker) IsRunning() bool {
	return w.fileLock.IsLocked() && w.running.Load()
}
