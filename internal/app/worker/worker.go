package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/config"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
)

// Emitter delivers events to the UI.
type Emitter interface {
	Emit(model.Event)
}

// Surface is one scriptable page.
type Surface interface {
	Navigate(ctx context.Context, rawURL string) error
	Reload(ctx context.Context) error
	Evaluate(ctx context.Context, script string, out any) error
	Location(ctx context.Context) (string, error)
	ExpectNavigation(match func(url string) bool) (<-chan string, func())
	Close() error
}

// AuthWindow is a visible sign-in window.
type AuthWindow interface {
	Changes() <-chan model.CookieChange
	Closed() <-chan struct{}
	Cookies(ctx context.Context, urls ...string) ([]model.Cookie, error)
	Evaluate(ctx context.Context, script string, out any) error
	Close() error
}

type Browser interface {
	OpenSurface(ctx context.Context) (Surface, error)
	OpenAuthWindow(ctx context.Context, loginURL string, watchURLs []string) (AuthWindow, error)
}

type CredentialStore interface {
	Cookies(ctx context.Context, urls ...string) ([]model.Cookie, error)
	SetCookies(ctx context.Context, cookies []model.Cookie) error
	RemoveCookies(ctx context.Context, rawURL string) error
}

type History interface {
	RecordItem(platform, entity, item, status string, at time.Time) error
	StartRun(runID, game, reward string, at time.Time) error
	UpdateRunProgress(runID string, percentage, minutes int) error
	FinishRun(runID, outcome, detail string, at time.Time) error
	RecordPoints(day time.Time, source, claimed, total string) error
}

type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

type WakeLock interface {
	Acquire() error
	Release() error
}

// Timing holds every wait and interval the workers use.
type Timing struct {
	PollInterval        time.Duration
	GraceCheckpoints    int
	ExtractionTimeout   time.Duration
	SettleQuiet         time.Duration
	ClaimTimeout        time.Duration
	ItemPause           time.Duration
	SourceCheckTimeout  time.Duration
	LoginResolveTimeout time.Duration
	StepDelay           time.Duration
	BlankTimeout        time.Duration
}

func TimingFromConfig(cfg config.Config) Timing {
	return Timing{
		PollInterval:        cfg.PollInterval,
		GraceCheckpoints:    cfg.GraceCheckpoints,
		ExtractionTimeout:   cfg.ExtractionTimeout,
		SettleQuiet:         cfg.SettleQuiet,
		ClaimTimeout:        cfg.ClaimTimeout,
		ItemPause:           cfg.ItemPause,
		SourceCheckTimeout:  cfg.SourceCheckTimeout,
		LoginResolveTimeout: cfg.LoginResolveTimeout,
		StepDelay:           3 * time.Second,
		BlankTimeout:        10 * time.Second,
	}
}

type Deps struct {
	Browser     Browser
	Credentials CredentialStore
	History     History
	Notifier    Notifier
	WakeLock    WakeLock
	Events      Emitter
	Timing      Timing
	Now         func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) emit(ev model.Event) {
	if d.Events != nil {
		d.Events.Emit(ev)
	}
}

func (d Deps) say(platform, text string) {
	d.emit(model.Message{Platform: platform, Text: text})
}

func (d Deps) success(platform, text string) {
	d.emit(model.Message{Platform: platform, Text: text, Severity: model.SeveritySuccess})
}

func (d Deps) fail(platform, text string) {
	d.emit(model.Message{Platform: platform, Text: text, Severity: model.SeverityError})
}

// handleError logs err in full and shows the user the short text.
func (d Deps) handleError(log *logger.ClassLogger, platform, text string, err error) {
	if err != nil {
		log.Log(fmt.Sprintf("%s: %v", text, err))
	} else {
		log.Log(text)
	}
	d.fail(platform, text)
}

func sessionFor(p model.Platform) *model.Session {
	for i, candidate := range model.Platforms {
		if candidate.Name == p.Name {
			return &model.Session{Platform: p.Name, Idx: i}
		}
	}
	return &model.Session{Platform: p.Name, Idx: len(model.Platforms)}
}
