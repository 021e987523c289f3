package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
)

const cookiePollInterval = 500 * time.Millisecond

// AuthWindow is a visible Chrome window where the user signs in. It runs
// in its own process and profile, so nothing it stores reaches the claim
// browser unless exported.
type AuthWindow struct {
	profileDir  string
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	targetID    target.ID
	watchURLs   []string

	changes   chan model.CookieChange
	closed    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// OpenAuthWindow launches a headed window at loginURL and starts watching
// the cookies of watchURLs.
func (b *Browser) OpenAuthWindow(ctx context.Context, loginURL string, watchURLs []string) (*AuthWindow, error) {
	profileDir, err := os.MkdirTemp("", "autoclaimer-login-*")
	if err != nil {
		return nil, fmt.Errorf("create login profile failed: %w", err)
	}

	opts := b.opts
	opts.Headless = false
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts, profileDir)...)
	winCtx, cancel := chromedp.NewContext(allocCtx)

	w := &AuthWindow{
		profileDir:  profileDir,
		allocCancel: allocCancel,
		ctx:         winCtx,
		cancel:      cancel,
		watchURLs:   watchURLs,
		changes:     make(chan model.CookieChange, 64),
		closed:      make(chan struct{}),
		done:        make(chan struct{}),
	}

	stop := context.AfterFunc(ctx, cancel)
	err = chromedp.Run(winCtx, chromedp.Navigate(loginURL))
	stop()
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("open login window failed: %w", err)
	}
	if c := chromedp.FromContext(winCtx); c != nil && c.Target != nil {
		w.targetID = c.Target.TargetID
	}

	go w.watch()
	return w, nil
}

// Changes streams cookie mutations seen in the window.
func (w *AuthWindow) Changes() <-chan model.CookieChange {
	return w.changes
}

// Closed is closed when the window is gone, whoever closed it.
func (w *AuthWindow) Closed() <-chan struct{} {
	return w.closed
}

func (w *AuthWindow) Cookies(ctx context.Context, urls ...string) ([]model.Cookie, error) {
	return readCookies(ctx, w.ctx, urls)
}

func (w *AuthWindow) Evaluate(ctx context.Context, script string, out any) error {
	return evaluate(ctx, w.ctx, script, out)
}

func (w *AuthWindow) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.cancel()
		w.allocCancel()
		_ = os.RemoveAll(w.profileDir)
	})
	return nil
}

func (w *AuthWindow) watch() {
	defer close(w.closed)

	ticker := time.NewTicker(cookiePollInterval)
	defer ticker.Stop()

	seen := make(map[string]model.Cookie)
	for {
		select {
		case <-w.done:
			return
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		}

		if !w.alive() {
			return
		}
		cookies, err := w.Cookies(w.ctx, w.watchURLs...)
		if err != nil {
			if !w.alive() {
				return
			}
			continue
		}
		for _, change := range diffCookies(seen, cookies) {
			select {
			case w.changes <- change:
			case <-w.done:
				return
			}
		}
	}
}

func (w *AuthWindow) alive() bool {
	checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	targets, err := targetsOf(checkCtx, w.ctx)
	if err != nil {
		return false
	}
	for _, t := range targets {
		if t.TargetID == w.targetID {
			return true
		}
	}
	return false
}

func targetsOf(ctx, tabCtx context.Context) ([]*target.Info, error) {
	runCtx, cancel := context.WithCancel(tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Targets(runCtx)
}

// diffCookies updates seen to current and returns what changed.
func diffCookies(seen map[string]model.Cookie, current []model.Cookie) []model.CookieChange {
	var changes []model.CookieChange
	present := make(map[string]bool, len(current))
	for _, c := range current {
		key := cookieKey(c)
		present[key] = true
		if prev, ok := seen[key]; ok && prev.Value == c.Value {
			continue
		}
		seen[key] = c
		changes = append(changes, model.CookieChange{Cookie: c})
	}
	for key, c := range seen {
		if !present[key] {
			delete(seen, key)
			changes = append(changes, model.CookieChange{Cookie: c, Removed: true})
		}
	}
	return changes
}
