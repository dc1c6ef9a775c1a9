package main

import (
	"fmt"
	"strconv"
	"strings"

	"mediamatrixhub/internal/services/dto"

	"github.com/spf13/cobra"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Media maintenance",
	}
	cmd.AddCommand(newReprocessCommand(ctx))
	return cmd
}

func newReprocessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "reprocess <video|document> <id>",
		Short:     "Run the post-save hooks of a video or document synchronously",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"video", "document"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			svc := a.Services.MediaService
			var report *dto.ProcessReport
			switch strings.ToLower(args[0]) {
			case "video":
				report, err = svc.ProcessVideo(cmd.Context(), a.DB, uint(id), true)
			case "document":
				report, err = svc.ProcessDocument(cmd.Context(), a.DB, uint(id), true)
			default:
				return fmt.Errorf("unknown media kind %q (want video or document)", args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range report.Steps {
				fmt.Fprintf(out, "ok    %s\n", s)
			}
			for _, e := range report.Errors {
				fmt.Fprintf(out, "error %s\n", e)
			}
			if len(report.Errors) > 0 {
				return fmt.Errorf("%s %d: %d step(s) failed", report.Kind, report.ID, len(report.Errors))
			}
			return nil
		},
	}
}
