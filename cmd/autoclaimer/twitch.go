package main

import (
	"context"
	"strings"

	"github.com/ohmynofan/drops-autoclaimer/internal/app"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var twitchCmd = &cobra.Command{
	Use:   "twitch",
	Short: "Twitch drop campaigns",
}

var twitchCampaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "List open drop campaigns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			_, err := a.TwitchClaim(ctx)
			return err
		})
	},
}

var twitchSelectCmd = &cobra.Command{
	Use:   "select <game>...",
	Short: "Add games to the saved selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateSelection(cmd, args, true)
	},
}

var twitchUnselectCmd = &cobra.Command{
	Use:   "unselect <game>...",
	Short: "Remove games from the saved selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateSelection(cmd, args, false)
	},
}

var twitchClaimCmd = &cobra.Command{
	Use:   "claim <game> <reward>",
	Short: "Watch a live channel until every item of a reward is claimed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
			run, err := a.StartClaim(ctx, args[0], args[1])
			if err != nil || run == nil {
				return err
			}
			select {
			case <-run.Done():
			case <-ctx.Done():
			}
			return nil
		})
	},
}

var twitchAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Claim every reward of the selected games, one after another",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
			return a.AutoClaim(ctx)
		})
	},
}

func updateSelection(cmd *cobra.Command, games []string, add bool) error {
	return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
		selected, err := a.SelectGames(games, add)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			pterm.Info.Println("No games selected.")
			return nil
		}
		pterm.Success.Printfln("Selected games: %s", strings.Join(selected, ", "))
		return nil
	})
}

func init() {
	twitchCmd.AddCommand(twitchCampaignsCmd, twitchSelectCmd, twitchUnselectCmd, twitchClaimCmd, twitchAutoCmd)
	rootCmd.AddCommand(twitchCmd)
}
