package main

import (
	"context"

	"github.com/ohmynofan/drops-autoclaimer/internal/app"
	"github.com/spf13/cobra"
)

var amazonCmd = &cobra.Command{
	Use:   "amazon",
	Short: "Claim every open Prime Gaming offer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
			return a.AmazonClaim(ctx)
		})
	},
}

var nintendoCmd = &cobra.Command{
	Use:   "nintendo",
	Short: "Collect My Nintendo platinum points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.App) error {
			return a.NintendoClaim(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(amazonCmd, nintendoCmd)
}
