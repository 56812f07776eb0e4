// Package chat sends message lists to a completion endpoint and returns the reply text.
package chat

import (
	"context"
	"log/slog"
	"strings"

	mimirErrors "github.com/harunnryd/mimir/internal/errors"
	"github.com/harunnryd/mimir/internal/logger"
	"github.com/harunnryd/mimir/internal/model/contract"
	"github.com/harunnryd/mimir/internal/prompt"
)

// Router is the part of model.ModelRouter the client needs.
type Router interface {
	Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error)
}

type Client struct {
	router  Router
	prompts *prompt.Registry
}

func NewClient(router Router, prompts *prompt.Registry) *Client {
	if prompts == nil {
		prompts = prompt.New()
	}
	return &Client{router: router, prompts: prompts}
}

// Complete sends messages verbatim and returns the content of the top choice.
// One network call; provider errors are returned unchanged.
func (c *Client) Complete(ctx context.Context, messages []contract.Message, model string, temperature float32) (string, error) {
	resp, err := c.router.Route(ctx, model, contract.CompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: contract.Float32(temperature),
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", mimirErrors.Internal("completion returned no choice")
	}
	return resp.Content, nil
}

// Send answers userMessage in the persona named by templateID.
func (c *Client) Send(ctx context.Context, userMessage, templateID, model string, temperature float32) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", mimirErrors.InvalidInput("message is empty")
	}

	system := c.prompts.Resolve(templateID)
	user := userMessage
	// The conversation suffix carries the user turn itself, so it moves into
	// the user message and the input is sent once.
	if strings.HasSuffix(system, prompt.ConversationSuffix) {
		system = strings.TrimSuffix(system, prompt.ConversationSuffix)
		user = strings.TrimSpace(prompt.Fill(prompt.ConversationSuffix, "", userMessage))
	}
	messages := []contract.Message{
		{Role: contract.RoleSystem, Content: system},
		{Role: contract.RoleUser, Content: user},
	}

	slog.Debug("Persona chat", "template", templateID, "model", model, "trace_id", logger.GetTraceID(ctx))

	return c.Complete(ctx, messages, model, temperature)
}
