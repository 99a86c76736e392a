package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/spacesedan/judgeflow/internal/judge"
)

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Judge one piece of content and print the result JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := input.request()
			if err != nil {
				return err
			}

			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			j, err := judge.New(settings)
			if err != nil {
				return err
			}

			result, err := j.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}
	input.register(cmd)

	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
