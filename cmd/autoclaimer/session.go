package main

import (
	"context"

	"github.com/ohmynofan/drops-autoclaimer/internal/app"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which platforms are signed in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			a.DisplayLogin(ctx)
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <amazon|twitch|nintendo>",
	Short: "Sign in to a platform in a browser window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := platformArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			if !a.CheckSession(ctx, p.ReferenceURL) {
				return app.ErrSignedOut
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout <amazon|twitch|nintendo>",
	Short: "Forget the saved session of a platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := platformArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			return a.Logout(ctx, p.ReferenceURL)
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, loginCmd, logoutCmd)
}
