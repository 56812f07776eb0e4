package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/mimir/cmd/mimir/runtime"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search ingested content",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, _ := cmd.Flags().GetInt("k")

		return executeWithRuntime(cmd, runtimeOptions{}, func(ctx context.Context, r *runtime.RuntimeComponents) error {
			hits, err := r.Retriever.Search(ctx, strings.Join(args, " "), k)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}
			for i, h := range hits {
				fmt.Fprintf(out, "%d. [%.3f] %s (%s)\n   %s\n", i+1, h.Score, h.Title, h.SourceURL, snippet(h.Content, 200))
			}
			return nil
		})
	},
}

func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Int("k", 0, "number of results (default vector.top_k)")
}
