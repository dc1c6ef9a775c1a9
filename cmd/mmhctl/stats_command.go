package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Playback statistics",
	}
	cmd.AddCommand(newPlaybackStatsCommand(ctx))
	return cmd
}

func newPlaybackStatsCommand(ctx *commandContext) *cobra.Command {
	var category string
	var authenticated bool
	cmd := &cobra.Command{
		Use:   "playback",
		Short: "Unique views per video of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if category == "" {
				category = a.Config.Registration.PillsCategory
			}
			totals, err := a.Services.PlaybackService.UniqueViewTotals(a.DB, category, authenticated)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(totals))
			sum := 0
			for _, t := range totals {
				rows = append(rows, []string{strconv.FormatUint(uint64(t.VideoID), 10), t.Title, strconv.Itoa(t.Count)})
				sum += t.Count
			}
			rows = append(rows, []string{"", "Total", strconv.Itoa(sum)})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "Views"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category name (defaults to registration.pills_category)")
	cmd.Flags().BoolVar(&authenticated, "authenticated", false, "Count only authenticated viewers")
	return cmd
}
