package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/mimir/cmd/mimir/runtime"

	"github.com/harunnryd/mimir/internal/logger"
	"github.com/harunnryd/mimir/internal/prompt"

	"github.com/spf13/cobra"
)

type runtimeOptions struct {
	withoutStore bool
	promptOpts   []prompt.Option
}

func executeWithRuntime(cmd *cobra.Command, opts runtimeOptions, fn func(ctx context.Context, r *runtime.RuntimeComponents) error) error {
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	ctx = logger.WithTraceID(ctx, logger.NewTraceID())

	builder := runtime.NewRuntimeBuilder().
		WithContext(ctx).
		WithConfig(cfg).
		WithPromptOptions(opts.promptOpts...)
	if opts.withoutStore {
		builder = builder.WithoutStore()
	}

	components, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer components.Stop()

	return fn(ctx, components)
}

// modelFlag returns --model when set, else the configured default.
func modelFlag(cmd *cobra.Command) string {
	if m, _ := cmd.Flags().GetString("model"); strings.TrimSpace(m) != "" {
		return m
	}
	return cfg.Models.Default
}
