package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ohmynofan/drops-autoclaimer/internal/app"
	"github.com/ohmynofan/drops-autoclaimer/internal/config"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/ui"
	"github.com/spf13/cobra"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "autoclaimer",
	Short:         "Claim Prime Gaming, Twitch drops and My Nintendo rewards",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		return logger.Init(cfg.LogPath())
	},
}

// withApp starts the app for one command. With dashboard set the live
// per-platform blocks replace plain output.
func withApp(cmd *cobra.Command, dashboard bool, fn func(ctx context.Context, a *app.App) error) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("start failed: %w", err)
	}
	defer a.Close()

	if dashboard {
		ui.StartUISystem()
		defer ui.StopUISystem()
	}
	return a.Run(cmd.Context(), func(ctx context.Context) error {
		return fn(ctx, a)
	})
}

func platformArg(name string) (model.Platform, error) {
	p, ok := model.PlatformByName(name)
	if !ok {
		names := make([]string, 0, len(model.Platforms))
		for _, candidate := range model.Platforms {
			names = append(names, strings.ToLower(candidate.Name))
		}
		return model.Platform{}, fmt.Errorf("unknown platform %q, expected one of %s", name, strings.Join(names, ", "))
	}
	return p, nil
}
