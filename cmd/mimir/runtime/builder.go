// Package runtime assembles the services behind every mimir command.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harunnryd/mimir/internal/agent"
	"github.com/harunnryd/mimir/internal/chat"
	"github.com/harunnryd/mimir/internal/config"
	mimirErrors "github.com/harunnryd/mimir/internal/errors"
	"github.com/harunnryd/mimir/internal/ingest"
	"github.com/harunnryd/mimir/internal/model"
	"github.com/harunnryd/mimir/internal/prompt"
	"github.com/harunnryd/mimir/internal/speech"
	"github.com/harunnryd/mimir/internal/storage"
	"github.com/harunnryd/mimir/internal/store"
	"github.com/harunnryd/mimir/internal/tool"
)

type RuntimeBuilder interface {
	WithContext(ctx context.Context) RuntimeBuilder
	WithConfig(cfg *config.Config) RuntimeBuilder
	WithStore(worker *store.Worker) RuntimeBuilder
	WithoutStore() RuntimeBuilder
	WithPromptOptions(opts ...prompt.Option) RuntimeBuilder
	Build() (*RuntimeComponents, error)
}

type DefaultRuntimeBuilder struct {
	ctx        context.Context
	cfg        *config.Config
	worker     *store.Worker
	skipStore  bool
	promptOpts []prompt.Option
}

func NewRuntimeBuilder() RuntimeBuilder {
	return &DefaultRuntimeBuilder{}
}

func (b *DefaultRuntimeBuilder) WithContext(ctx context.Context) RuntimeBuilder {
	b.ctx = ctx
	return b
}

func (b *DefaultRuntimeBuilder) WithConfig(cfg *config.Config) RuntimeBuilder {
	b.cfg = cfg
	return b
}

// WithStore reuses a running worker instead of opening the vector store.
func (b *DefaultRuntimeBuilder) WithStore(worker *store.Worker) RuntimeBuilder {
	b.worker = worker
	return b
}

// WithoutStore builds only the persona chat path; nothing touches the vector store.
func (b *DefaultRuntimeBuilder) WithoutStore() RuntimeBuilder {
	b.skipStore = true
	return b
}

func (b *DefaultRuntimeBuilder) WithPromptOptions(opts ...prompt.Option) RuntimeBuilder {
	b.promptOpts = append(b.promptOpts, opts...)
	return b
}

func (b *DefaultRuntimeBuilder) Build() (*RuntimeComponents, error) {
	if b.ctx == nil {
		b.ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	router, err := model.NewModelRouter(b.cfg.Models)
	if err != nil {
		return nil, fmt.Errorf("init model router: %w", err)
	}

	prompts := prompt.New(b.promptOpts...)
	c := &RuntimeComponents{
		Config:  b.cfg,
		Router:  router,
		Prompts: prompts,
		Chat:    chat.NewClient(router, prompts),
	}
	c.Narrator = buildNarrator(b.ctx, b.cfg)

	if b.skipStore {
		return c, nil
	}

	worker := b.worker
	if worker == nil {
		worker, err = openStore(b.cfg.Vector)
		if err != nil {
			return nil, err
		}
		c.ownsStore = true
	}
	c.Store = worker

	svc, err := ingest.NewService(b.cfg, router, worker)
	if err != nil {
		c.Stop()
		return nil, fmt.Errorf("init ingestion: %w", err)
	}
	c.Ingest = svc
	c.Retriever = ingest.NewRetriever(svc, b.cfg.Vector.TopK)
	c.Tools = tool.NewDispatcher(svc)
	c.Agent = agent.NewLoop(router, c.Tools,
		agent.WithFollowUpModel(b.cfg.Models.FollowUp),
		agent.WithTemperature(float32(b.cfg.Models.Temperature)),
	)
	return c, nil
}

func openStore(vectorCfg config.VectorConfig) (*store.Worker, error) {
	layout, err := store.ResolveLayout(vectorCfg.Path)
	if err != nil {
		return nil, err
	}
	runtimeCfg, err := store.RuntimeConfigFrom(vectorCfg)
	if err != nil {
		return nil, err
	}
	worker, err := store.NewWorker(layout, runtimeCfg)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	worker.Start()
	return worker, nil
}

// buildNarrator returns nil unless both speech and storage are configured.
func buildNarrator(ctx context.Context, cfg *config.Config) *speech.Narrator {
	tts, err := speech.NewElevenLabs(cfg.Speech)
	if err != nil {
		slog.Warn("Speech disabled", "error", err)
		return nil
	}
	if !tts.Configured() {
		return nil
	}

	audio, err := storage.NewAudioStore(ctx, cfg.Storage)
	if err != nil {
		if errors.Is(err, mimirErrors.ErrNotConfigured) {
			slog.Debug("Audio replies disabled", "reason", err)
		} else {
			slog.Warn("Audio replies disabled", "error", err)
		}
		return nil
	}
	return speech.NewNarrator(tts, audio)
}
