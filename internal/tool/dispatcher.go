package tool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mimirErrors "github.com/harunnryd/mimir/internal/errors"
	"github.com/harunnryd/mimir/internal/logger"
	"github.com/harunnryd/mimir/internal/model/contract"
)

type Dispatcher struct {
	ingestor Ingestor
}

func NewDispatcher(ingestor Ingestor) *Dispatcher {
	return &Dispatcher{ingestor: ingestor}
}

// Execute invokes the function behind a decoded call synchronously and returns its text result.
func (d *Dispatcher) Execute(ctx context.Context, call Call) (string, error) {
	if d == nil || d.ingestor == nil {
		return "", mimirErrors.NotConfigured("no ingestor configured for tool dispatch")
	}

	switch c := call.(type) {
	case IngestVideo:
		return d.ingestor.IngestVideo(ctx, c.YouTubeURL)
	case IngestWebsite:
		return d.ingestor.IngestWebsite(ctx, c.WebsiteURL)
	default:
		return "", mimirErrors.UnknownTool(fmt.Sprintf("%T", call))
	}
}

// Run decodes and executes a raw tool call, logging the outcome.
func (d *Dispatcher) Run(ctx context.Context, raw *contract.ToolCall) (string, error) {
	if raw == nil {
		return "", mimirErrors.InvalidInput("nil tool call")
	}

	call, err := Decode(raw)
	if err != nil {
		slog.Warn("Tool call rejected", "tool", raw.Name, "error", err, "trace_id", logger.GetTraceID(ctx))
		return "", err
	}

	start := time.Now()
	traceID := logger.GetTraceID(ctx)
	slog.Info("Executing tool", "tool", call.ToolName(), "call_id", raw.ID, "trace_id", traceID)

	result, err := d.Execute(ctx, call)
	duration := time.Since(start)
	if err != nil {
		slog.Error("Tool execution failed", "tool", call.ToolName(), "error", err, "duration", duration, "trace_id", traceID)
		return "", fmt.Errorf("tool %s: %w", call.ToolName(), err)
	}

	slog.Info("Tool execution success", "tool", call.ToolName(), "duration", duration, "trace_id", traceID)
	return result, nil
}
