package model

import (
	"context"
	"fmt"

	"github.com/harunnryd/mimir/internal/model/contract"
)

// backend is the surface every package under providers/ implements.
type backend interface {
	Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// ProviderAdapter binds a provider backend to the registry entry it serves.
type ProviderAdapter struct {
	backend      backend
	name         string
	providerType string
}

func (a *ProviderAdapter) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if a.backend == nil {
		return nil, fmt.Errorf("provider %s has no backend", a.name)
	}
	if req.Model == "" {
		req.Model = a.name
	}
	return a.backend.Generate(ctx, req)
}

func (a *ProviderAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	if a.backend == nil {
		return nil, fmt.Errorf("provider %s has no backend", a.name)
	}
	return a.backend.Embed(ctx, text)
}

func (a *ProviderAdapter) Name() string {
	return a.name
}

func (a *ProviderAdapter) Type() string {
	return a.providerType
}

func (a *ProviderAdapter) Health(ctx context.Context) error {
	if a.backend == nil {
		return fmt.Errorf("provider %s has no backend", a.name)
	}
	return nil
}
