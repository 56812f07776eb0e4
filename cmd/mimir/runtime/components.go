package runtime

import (
	"github.com/harunnryd/mimir/internal/agent"
	"github.com/harunnryd/mimir/internal/chat"
	"github.com/harunnryd/mimir/internal/config"
	"github.com/harunnryd/mimir/internal/ingest"
	"github.com/harunnryd/mimir/internal/model"
	"github.com/harunnryd/mimir/internal/prompt"
	"github.com/harunnryd/mimir/internal/server"
	"github.com/harunnryd/mimir/internal/speech"
	"github.com/harunnryd/mimir/internal/store"
	"github.com/harunnryd/mimir/internal/tool"
)

// RuntimeComponents holds the wired services. Store, Ingest, Retriever, Tools
// and Agent are nil when the builder ran WithoutStore; Narrator is nil when
// audio replies are not configured.
type RuntimeComponents struct {
	Config  *config.Config
	Router  *model.DefaultModelRouter
	Prompts *prompt.Registry
	Chat    *chat.Client

	Store     *store.Worker
	Ingest    *ingest.Service
	Retriever *ingest.Retriever
	Tools     *tool.Dispatcher
	Agent     *agent.Loop
	Narrator  *speech.Narrator

	ownsStore bool
}

// ServerDeps maps the components onto the HTTP handler's dependencies.
func (c *RuntimeComponents) ServerDeps() server.Deps {
	deps := server.Deps{
		Chat:               c.Chat,
		DefaultModel:       c.Config.Models.Default,
		DefaultTemperature: float32(c.Config.Models.Temperature),
	}
	if c.Agent != nil {
		deps.Agent = c.Agent
	}
	if c.Ingest != nil {
		deps.Ingestor = c.Ingest
	}
	if c.Retriever != nil {
		deps.Search = c.Retriever
	}
	if c.Narrator != nil {
		deps.Narrator = c.Narrator
	}
	return deps
}

// Stop releases the vector store if this runtime opened it.
func (c *RuntimeComponents) Stop() {
	if c.ownsStore && c.Store != nil {
		c.Store.Stop()
		c.Store = nil
	}
}
