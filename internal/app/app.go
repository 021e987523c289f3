package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	apihttp "github.com/ohmynofan/drops-autoclaimer/internal/adapters/http"
	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/notify"
	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/wakelock"
	"github.com/ohmynofan/drops-autoclaimer/internal/app/worker"
	"github.com/ohmynofan/drops-autoclaimer/internal/config"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
	"github.com/ohmynofan/drops-autoclaimer/internal/storage/credentials"
	"github.com/ohmynofan/drops-autoclaimer/internal/storage/history"
	"github.com/ohmynofan/drops-autoclaimer/internal/storage/settings"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// ErrSignedOut is returned when a platform session is missing and login did
// not produce one.
var ErrSignedOut = errors.New("not signed in")

// App owns every long-lived resource and the workers built on them.
type App struct {
	cfg config.Config
	log *logger.ClassLogger

	ctx    context.Context
	cancel context.CancelFunc

	browser  *browser.Browser
	jar      *credentials.Jar
	creds    *credentials.Mirror
	history  *history.Store
	settings *settings.Store
	lock     *wakelock.Inhibitor
	bus      *eventBus

	sessions *worker.Sessions
	amazon   *worker.Amazon
	twitch   *worker.Twitch
	nintendo *worker.Nintendo
}

// New launches the browser, restores saved cookies and wires the workers.
func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg, bus: newEventBus(256)}
	a.log = logger.NewLogger(a, nil)
	a.ctx, a.cancel = context.WithCancel(context.Background())

	jar, err := credentials.Open(cfg.CredentialPath())
	if err != nil {
		a.cancel()
		return nil, err
	}
	a.jar = jar

	store, err := history.NewStore(cfg.HistoryPath())
	if err != nil {
		a.cancel()
		return nil, err
	}
	a.history = store

	b, err := browser.Launch(browser.Options{
		ChromePath: cfg.ChromePath,
		UserAgent:  cfg.UserAgent,
		ProxyURL:   cfg.ProxyURL,
		Headless:   true,
	})
	if err != nil {
		a.cancel()
		a.history.Close()
		return nil, err
	}
	a.browser = b

	a.creds = credentials.NewMirror(b, jar)
	if err := a.creds.Seed(a.ctx); err != nil {
		a.log.JustLog(fmt.Sprintf("restore cookies failed: %v", err))
	}

	a.settings = settings.NewStore(cfg.SettingsPath())
	a.lock = wakelock.New()

	deps := worker.Deps{
		Browser:     browserPort{b: b},
		Credentials: a.creds,
		History:     a.history,
		WakeLock:    a.lock,
		Events:      a.bus,
		Timing:      worker.TimingFromConfig(cfg),
	}
	client, err := apihttp.NewAPIClient(cfg.ProxyURL, cfg.UserAgent, nil)
	if err != nil {
		a.log.JustLog(fmt.Sprintf("push client unavailable: %v", err))
	} else if ntfy := notify.NewNtfy(client, cfg.NtfyServer, cfg.NtfyTopic); ntfy.Enabled() {
		deps.Notifier = ntfy
	}

	a.sessions = worker.NewSessions(deps)
	a.amazon = worker.NewAmazon(deps)
	a.twitch = worker.NewTwitch(a.ctx, deps)
	a.nintendo = worker.NewNintendo(deps)
	return a, nil
}

// Run presents events while work runs. Before returning it stops every
// claim run and lets the presenter drain their teardown events.
func (a *App) Run(ctx context.Context, work func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.bus.present()
		return nil
	})
	g.Go(func() error {
		defer a.bus.stop()
		err := work(gctx)
		a.stopRuns()
		return err
	})
	return g.Wait()
}

func (a *App) stopRuns() {
	a.cancel()
	a.twitch.Wait()
}

// Close persists the browser's cookies and releases everything New acquired.
func (a *App) Close() error {
	a.stopRuns()
	a.bus.stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.twitch.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.creds.Sync(ctx, model.Platforms); err != nil {
		errs = append(errs, fmt.Errorf("save cookies failed: %w", err))
	}
	if err := a.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.lock.Release(); err != nil {
		errs = append(errs, err)
	}
	if err := a.history.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
