package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harunnryd/mimir/cmd/mimir/runtime"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask Mimir, letting it ingest videos and websites first",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, _ := cmd.Flags().GetBool("transcript")

		return executeWithRuntime(cmd, runtimeOptions{}, func(ctx context.Context, r *runtime.RuntimeComponents) error {
			conv := r.Agent.Run(ctx, strings.Join(args, " "), modelFlag(cmd))
			out := cmd.OutOrStdout()

			if transcript {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(conv.Messages)
			}

			reply := conv.Reply()
			fmt.Fprintln(out, reply.Content)
			if reply.HasToolContext {
				fmt.Fprintf(out, "\n[tool] %s\n", reply.ToolContext)
			}
			return conv.Err
		})
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("model", "m", "", "model override")
	askCmd.Flags().Bool("transcript", false, "print the full message transcript as JSON")
}
