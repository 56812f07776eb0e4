package main

import (
	"fmt"

	"github.com/harunnryd/mimir/internal/prompt"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts [template]",
	Short: "List persona templates, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suffix, _ := cmd.Flags().GetBool("suffix")
		var opts []prompt.Option
		if suffix {
			opts = append(opts, prompt.WithSuffix())
		}
		registry := prompt.New(opts...)
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			for _, id := range registry.Templates() {
				fmt.Fprintln(out, id)
			}
			return nil
		}

		if !registry.Known(args[0]) {
			fmt.Fprintf(cmd.ErrOrStderr(), "unknown template %q, showing %s\n", args[0], prompt.Default)
		}
		fmt.Fprintln(out, registry.Resolve(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.Flags().Bool("suffix", false, "include the conversation suffix")
}
