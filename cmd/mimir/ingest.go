package main

import (
	"context"
	"fmt"

	"github.com/harunnryd/mimir/cmd/mimir/runtime"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add a source to the knowledge base",
}

var ingestVideoCmd = &cobra.Command{
	Use:   "video <youtube-url>",
	Short: "Ingest a YouTube video transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithRuntime(cmd, runtimeOptions{}, func(ctx context.Context, r *runtime.RuntimeComponents) error {
			msg, err := r.Ingest.IngestVideo(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		})
	},
}

var ingestWebsiteCmd = &cobra.Command{
	Use:   "website <url>",
	Short: "Ingest the visible text of a web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithRuntime(cmd, runtimeOptions{}, func(ctx context.Context, r *runtime.RuntimeComponents) error {
			msg, err := r.Ingest.IngestWebsite(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		})
	},
}

func init() {
	ingestCmd.AddCommand(ingestVideoCmd)
	ingestCmd.AddCommand(ingestWebsiteCmd)
	rootCmd.AddCommand(ingestCmd)
}
