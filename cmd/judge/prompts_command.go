package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spacesedan/judgeflow/internal/judge"
)

func newPromptsCommand(ctx *commandContext) *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Print the system and user prompts the model would receive",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := input.request()
			if err != nil {
				return err
			}

			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			// No model call is made, so no client is needed.
			j := judge.NewWithClient(nil, judge.WithLexicalSignals(settings.LexicalSignals))

			system, user, err := j.Prompts(req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== SYSTEM ===")
			fmt.Fprintln(out, system)
			fmt.Fprintln(out, "=== USER ===")
			fmt.Fprintln(out, user)
			return nil
		},
	}
	input.register(cmd)

	return cmd
}
