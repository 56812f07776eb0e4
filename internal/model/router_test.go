package model

import (
	"context"
	"errors"
	"testing"

	"github.com/harunnryd/mimir/internal/config"
	mimirErrors "github.com/harunnryd/mimir/internal/errors"
	"github.com/harunnryd/mimir/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProvider is a mock of Provider interface
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*contract.CompletionResponse)
	return resp, args.Error(1)
}

func (m *MockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

func (m *MockProvider) Name() string                     { return m.name }
func (m *MockProvider) Type() string                     { return "mock" }
func (m *MockProvider) Health(ctx context.Context) error { return nil }

func newTestRouter(cfg config.ModelsConfig, providers map[string]Provider) *DefaultModelRouter {
	r := &DefaultModelRouter{cfg: cfg, providers: make(map[string]Provider)}
	for name, p := range providers {
		r.Register(name, p)
	}
	return r
}

func TestRoute_SetsModelOnRequest(t *testing.T) {
	gpt4 := &MockProvider{name: "gpt-4"}
	gpt4.On("Generate", mock.Anything, mock.MatchedBy(func(req contract.CompletionRequest) bool {
		return req.Model == "gpt-4"
	})).Return(&contract.CompletionResponse{Content: "hello"}, nil).Once()

	r := newTestRouter(config.ModelsConfig{}, map[string]Provider{"gpt-4": gpt4})

	resp, err := r.Route(context.Background(), "gpt-4", contract.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	gpt4.AssertExpectations(t)
}

func TestRoute_UnknownModel(t *testing.T) {
	r := newTestRouter(config.ModelsConfig{}, nil)

	_, err := r.Route(context.Background(), "gpt-9", contract.CompletionRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, mimirErrors.ErrNotFound)
}

func TestRoute_FallsBackOnFailure(t *testing.T) {
	primary := &MockProvider{name: "gpt-4"}
	primary.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("503 service unavailable")).Once()

	fallback := &MockProvider{name: "gpt-4o-mini"}
	fallback.On("Generate", mock.Anything, mock.MatchedBy(func(req contract.CompletionRequest) bool {
		return req.Model == "gpt-4o-mini"
	})).Return(&contract.CompletionResponse{Content: "from fallback"}, nil).Once()

	r := newTestRouter(config.ModelsConfig{Fallback: "gpt-4o-mini", MaxFallbackAttempts: 2}, map[string]Provider{
		"gpt-4":       primary,
		"gpt-4o-mini": fallback,
	})

	resp, err := r.Route(context.Background(), "gpt-4", contract.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", resp.Content)
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestRoute_ClassifiesProviderErrors(t *testing.T) {
	p := &MockProvider{name: "gpt-4"}
	p.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("429 rate limit exceeded")).Once()

	r := newTestRouter(config.ModelsConfig{}, map[string]Provider{"gpt-4": p})

	_, err := r.Route(context.Background(), "gpt-4", contract.CompletionRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, mimirErrors.ErrTransient)
}

func TestRoute_Cancelled(t *testing.T) {
	p := &MockProvider{name: "gpt-4"}
	r := newTestRouter(config.ModelsConfig{}, map[string]Provider{"gpt-4": p})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Route(ctx, "gpt-4", contract.CompletionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	p.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRouteEmbedding_SkipsUnsupportedProviders(t *testing.T) {
	claude := &MockProvider{name: "claude"}
	claude.On("Embed", mock.Anything, "text").Return(nil, errors.New("embedding not supported by anthropic provider")).Once()

	embedder := &MockProvider{name: "text-embedding-3-small"}
	embedder.On("Embed", mock.Anything, "text").Return([]float32{1, 2}, nil).Once()

	r := newTestRouter(config.ModelsConfig{Embedding: "text-embedding-3-small"}, map[string]Provider{
		"claude":                 claude,
		"text-embedding-3-small": embedder,
	})

	vec, err := r.RouteEmbedding(context.Background(), "claude", "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
	claude.AssertExpectations(t)
	embedder.AssertExpectations(t)
}

func TestRouteEmbedding_NothingConfigured(t *testing.T) {
	r := newTestRouter(config.ModelsConfig{}, nil)

	_, err := r.RouteEmbedding(context.Background(), "", "text")
	assert.ErrorIs(t, err, mimirErrors.ErrNotFound)
}

func TestNewModelRouter_RegistersEntriesWithoutKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	r, err := NewModelRouter(config.ModelsConfig{Registry: []config.ModelRegistry{
		{Name: "gpt-4", Provider: "openai"},
		{Name: "llama3", Provider: "ollama"},
		{Name: "claude-3-7-sonnet-latest", Provider: "anthropic"},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"claude-3-7-sonnet-latest", "gpt-4", "llama3"}, r.ListModels())
	assert.NoError(t, r.Health(context.Background()))
}

func TestNewModelRouter_RejectsUnknownProviderType(t *testing.T) {
	_, err := NewModelRouter(config.ModelsConfig{Registry: []config.ModelRegistry{
		{Name: "x", Provider: "carrier-pigeon"},
	}})
	assert.ErrorIs(t, err, mimirErrors.ErrInvalidInput)
}

func TestHealth_NoModels(t *testing.T) {
	r := newTestRouter(config.ModelsConfig{}, nil)
	assert.ErrorIs(t, r.Health(context.Background()), mimirErrors.ErrNotConfigured)
}
