package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/harunnryd/mimir/cmd/mimir/runtime"

	"github.com/harunnryd/mimir/internal/prompt"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with a persona",
	Long:  `Send one message to a persona, or start an interactive session when no message is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		template, _ := cmd.Flags().GetString("template")
		temperature, _ := cmd.Flags().GetFloat32("temperature")
		if !cmd.Flags().Changed("temperature") {
			temperature = float32(cfg.Models.Temperature)
		}
		suffix, _ := cmd.Flags().GetBool("suffix")
		audio, _ := cmd.Flags().GetBool("audio")

		opts := runtimeOptions{withoutStore: true}
		if suffix {
			opts.promptOpts = append(opts.promptOpts, prompt.WithSuffix())
		}

		return executeWithRuntime(cmd, opts, func(ctx context.Context, r *runtime.RuntimeComponents) error {
			send := func(msg string) error {
				reply, err := r.Chat.Send(ctx, msg, template, modelFlag(cmd), temperature)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)

				if audio && r.Narrator != nil {
					if link, ok := r.Narrator.Narrate(ctx, "cli", reply); ok {
						fmt.Fprintf(cmd.OutOrStdout(), "audio: %s\n", link)
					}
				}
				return nil
			}

			if len(args) > 0 {
				return send(strings.Join(args, " "))
			}
			return chatLoop(cmd.InOrStdin(), cmd.OutOrStdout(), send)
		})
	},
}

// chatLoop reads one message per line until EOF or "exit".
func chatLoop(in io.Reader, out io.Writer, send func(string) error) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "exit", "quit":
			return nil
		default:
			if err := send(line); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("template", "t", prompt.Default, "persona template (girlfriend, therapist, trainer, default)")
	chatCmd.Flags().StringP("model", "m", "", "model override")
	chatCmd.Flags().Float32("temperature", float32(0.7), "sampling temperature")
	chatCmd.Flags().Bool("suffix", false, "append the conversation suffix to the system prompt")
	chatCmd.Flags().Bool("audio", false, "also speak the reply and print a link to the audio")
}
