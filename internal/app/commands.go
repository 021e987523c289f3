package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ohmynofan/drops-autoclaimer/internal/app/worker"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/storage/history"
	"github.com/ohmynofan/drops-autoclaimer/internal/storage/settings"
)

// CheckSession makes sure the platform owning url has a session, opening
// the login window when it does not.
func (a *App) CheckSession(ctx context.Context, url string) bool {
	p, ok := model.PlatformForURL(url)
	if !ok {
		a.bus.Emit(model.Message{Text: fmt.Sprintf("Unknown service: %s", url), Severity: model.SeverityError})
		return false
	}
	return a.sessions.Check(ctx, p.ReferenceURL, p.TokenName)
}

func (a *App) Logout(ctx context.Context, url string) error {
	return a.sessions.Logout(ctx, url)
}

// DisplayLogin emits the session state of every platform.
func (a *App) DisplayLogin(ctx context.Context) {
	a.bus.Emit(model.LoginStatus{Status: a.sessions.LoginStatus(ctx)})
}

func (a *App) SaveSettings(key string, value any) error {
	if err := a.settings.Save(key, value); err != nil {
		a.log.Log(fmt.Sprintf("Error saving settings: %v", err))
		return err
	}
	return nil
}

// LoadSettings emits the stored value of key.
func (a *App) LoadSettings(key string) error {
	value, found, err := a.settings.Load(key)
	if err != nil {
		a.log.Log(fmt.Sprintf("Error loading settings: %v", err))
		return err
	}
	a.bus.Emit(model.SettingsValue{Key: key, Value: value, Found: found})
	return nil
}

func (a *App) requireSession(ctx context.Context, p model.Platform) error {
	if !a.CheckSession(ctx, p.ReferenceURL) {
		return fmt.Errorf("%s: %w", p.Name, ErrSignedOut)
	}
	return nil
}

func (a *App) AmazonClaim(ctx context.Context) error {
	if err := a.requireSession(ctx, model.Amazon); err != nil {
		return err
	}
	a.amazon.Run(ctx)
	return nil
}

// TwitchClaim lists the open campaigns for selection.
func (a *App) TwitchClaim(ctx context.Context) ([]model.Campaign, error) {
	if err := a.requireSession(ctx, model.Twitch); err != nil {
		return nil, err
	}
	return a.twitch.ListCampaigns(ctx)
}

func (a *App) OpenTwitchWindows(ctx context.Context) error {
	return a.twitch.OpenWindows(ctx)
}

func (a *App) NintendoClaim(ctx context.Context) error {
	if err := a.requireSession(ctx, model.Nintendo); err != nil {
		return err
	}
	return a.nintendo.Claim(ctx)
}

// StartClaim begins polling one reward. The returned run is nil when the
// reward could not be claimed.
func (a *App) StartClaim(ctx context.Context, game, reward string) (*worker.ClaimRun, error) {
	if err := a.requireSession(ctx, model.Twitch); err != nil {
		return nil, err
	}
	if err := a.twitch.OpenWindows(ctx); err != nil {
		return nil, err
	}
	return a.twitch.StartClaim(ctx, game, reward), nil
}

// AutoClaim claims every reward of the saved game selection.
func (a *App) AutoClaim(ctx context.Context) error {
	games, err := a.SelectedGames()
	if err != nil {
		return err
	}
	if err := a.requireSession(ctx, model.Twitch); err != nil {
		return err
	}
	if err := a.twitch.OpenWindows(ctx); err != nil {
		return err
	}
	return a.twitch.ClaimSelected(ctx, games)
}

func (a *App) SelectedGames() ([]string, error) {
	return a.settings.LoadStrings(settings.SelectedGamesKey)
}

// SelectGames adds games to the saved selection, or removes them when add
// is false.
func (a *App) SelectGames(games []string, add bool) ([]string, error) {
	current, err := a.SelectedGames()
	if err != nil {
		return nil, err
	}
	next := mergeSelection(current, games, add)
	if err := a.SaveSettings(settings.SelectedGamesKey, next); err != nil {
		return nil, err
	}
	return next, nil
}

func mergeSelection(current, games []string, add bool) []string {
	out := make([]string, 0, len(current)+len(games))
	seen := make(map[string]bool, len(current)+len(games))
	drop := make(map[string]bool, len(games))
	if !add {
		for _, g := range games {
			drop[strings.TrimSpace(g)] = true
		}
	}
	appendGame := func(g string) {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] || drop[g] {
			return
		}
		seen[g] = true
		out = append(out, g)
	}
	for _, g := range current {
		appendGame(g)
	}
	if add {
		for _, g := range games {
			appendGame(g)
		}
	}
	return out
}

// Report is the stored claim history.
type Report struct {
	Items  []history.ItemRecord
	Runs   []history.RunRecord
	Points []history.PointsRecord
}

func (a *App) History(limit int) (Report, error) {
	var r Report
	var err error
	if r.Items, err = a.history.RecentItems(limit); err != nil {
		return Report{}, err
	}
	if r.Runs, err = a.history.RecentRuns(limit); err != nil {
		return Report{}, err
	}
	if r.Points, err = a.history.RecentPoints(limit); err != nil {
		return Report{}, err
	}
	return r, nil
}
