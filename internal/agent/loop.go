// Package agent runs the tool-augmented chat loop: one completion that may
// request ingestion tools, synchronous dispatch of each request, and a
// follow-up completion after every tool result.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/harunnryd/mimir/internal/logger"
	"github.com/harunnryd/mimir/internal/model/contract"
	"github.com/harunnryd/mimir/internal/prompt"
	"github.com/harunnryd/mimir/internal/tool"
)

// Router is the part of model.ModelRouter the loop needs.
type Router interface {
	Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error)
}

// ToolRunner decodes and executes one model-emitted tool call.
type ToolRunner interface {
	Run(ctx context.Context, call *contract.ToolCall) (string, error)
}

// Conversation is the transcript produced by one Run. Err holds the error that
// ended the run early, if any; it is already reflected in the last message.
type Conversation struct {
	Messages []contract.Message
	Err      error
}

func (c *Conversation) append(msg contract.Message) {
	c.Messages = append(c.Messages, msg)
}

// fail records err and closes the transcript with the error message.
func (c *Conversation) fail(ctx context.Context, err error) {
	c.Err = err
	text := fmt.Sprintf("Function Call: There was an error %v", err)
	c.append(contract.Message{Role: contract.RoleAssistant, Content: text})
	slog.Error("Tool-augmented chat failed", "error", err, "trace_id", logger.GetTraceID(ctx))
}

// Reply extracts the user-facing answer from the transcript.
func (c *Conversation) Reply() Extraction {
	if c == nil {
		return Extract(nil)
	}
	return Extract(c.Messages)
}

// Loop runs one decide, dispatch and follow-up cycle per user message.
type Loop struct {
	router        Router
	tools         ToolRunner
	followUpModel string
	temperature   *float32
}

// Option configures a Loop.
type Option func(*Loop)

// WithFollowUpModel sets the model used for completions issued after a tool
// result. Empty reuses the request model.
func WithFollowUpModel(model string) Option {
	return func(l *Loop) {
		l.followUpModel = model
	}
}

// WithTemperature sets the sampling temperature sent on every completion.
func WithTemperature(t float32) Option {
	return func(l *Loop) {
		l.temperature = contract.Float32(t)
	}
}

// NewLoop builds a loop that completes through router and executes tool calls with tools.
func NewLoop(router Router, tools ToolRunner, opts ...Option) *Loop {
	l := &Loop{router: router, tools: tools}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run answers userMessage, letting the model ingest sources through the tool
// set first. It never returns an error: failures end the transcript with an
// assistant error message and are recorded on Conversation.Err.
func (l *Loop) Run(ctx context.Context, userMessage, model string) *Conversation {
	traceID := logger.GetTraceID(ctx)

	conv := &Conversation{Messages: []contract.Message{
		{Role: contract.RoleSystem, Content: prompt.AgentSystemPrompt},
		{Role: contract.RoleUser, Content: fmt.Sprintf(prompt.AgentUserTemplate, userMessage)},
	}}

	slog.Info("Attempting function call", "model", model, "trace_id", traceID)

	resp, err := l.router.Route(ctx, model, contract.CompletionRequest{
		Model:       model,
		Messages:    slices.Clone(conv.Messages),
		Temperature: l.temperature,
		Tools:       tool.Definitions(),
		ToolChoice:  contract.ToolChoiceAuto,
	})
	if err != nil {
		conv.fail(ctx, err)
		return conv
	}

	if resp == nil || len(resp.ToolCalls) == 0 {
		slog.Info("No tool requested", "trace_id", traceID)
		conv.append(resp.AssistantMessage())
		return conv
	}

	conv.append(resp.AssistantMessage())

	followUpModel := l.followUpModel
	if followUpModel == "" {
		followUpModel = model
	}

	for _, call := range resp.ToolCalls {
		result, err := l.tools.Run(ctx, call)
		if err != nil {
			conv.fail(ctx, err)
			return conv
		}

		conv.append(contract.Message{
			Role:       contract.RoleTool,
			Content:    result,
			ToolCallID: call.ID,
			Name:       call.Name,
		})

		followUp, err := l.router.Route(ctx, followUpModel, contract.CompletionRequest{
			Model:       followUpModel,
			Messages:    slices.Clone(conv.Messages),
			Temperature: l.temperature,
		})
		if err != nil {
			conv.fail(ctx, err)
			return conv
		}
		reply := followUp.AssistantMessage()
		if len(reply.ToolCalls) > 0 {
			slog.Warn("Follow-up completion requested tools without a tool set, ignoring", "count", len(reply.ToolCalls), "trace_id", traceID)
			reply.ToolCalls = nil
		}

		conv.append(reply)
	}

	return conv
}
