package main

import (
	"context"
	"fmt"

	"github.com/ohmynofan/drops-autoclaimer/internal/app"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent claims, reward runs and collected points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			report, err := a.History(historyLimit)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		})
	},
}

func printReport(r app.Report) {
	const stamp = "2006-01-02 15:04"

	pterm.DefaultSection.Println("Claimed items")
	items := pterm.TableData{{"Platform", "Entity", "Item", "Status", "At"}}
	for _, it := range r.Items {
		items = append(items, []string{it.Platform, it.Entity, it.Item, it.Status, it.ClaimedAt.Local().Format(stamp)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(items).Render()

	pterm.DefaultSection.Println("Reward runs")
	runs := pterm.TableData{{"Game", "Reward", "Outcome", "Progress", "Started", "Detail"}}
	for _, run := range r.Runs {
		progress := fmt.Sprintf("%d%%", run.Percentage)
		if run.Minutes > 0 {
			progress += " · " + ui.FormatMinutes(run.Minutes)
		}
		outcome := run.Outcome
		if outcome == "" {
			outcome = "running"
		}
		runs = append(runs, []string{run.Game, run.Reward, outcome, progress, run.StartedAt.Local().Format(stamp), run.Detail})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(runs).Render()

	pterm.DefaultSection.Println("Platinum points")
	points := pterm.TableData{{"Day", "Source", "Claimed", "Total"}}
	for _, p := range r.Points {
		points = append(points, []string{p.Day, p.Source, p.Claimed, p.Total})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(points).Render()
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "rows per section")
	rootCmd.AddCommand(historyCmd)
}

