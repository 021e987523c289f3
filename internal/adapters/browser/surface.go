package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Surface is a browser tab.
type Surface struct {
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (s *Surface) run(ctx context.Context, actions ...chromedp.Action) error {
	return runBound(ctx, s.ctx, actions...)
}

func (s *Surface) Navigate(ctx context.Context, rawURL string) error {
	if err := s.run(ctx, chromedp.Navigate(rawURL)); err != nil {
		return fmt.Errorf("navigate to %s failed: %w", rawURL, err)
	}
	return nil
}

func (s *Surface) Reload(ctx context.Context) error {
	if err := s.run(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

// Evaluate runs script in the page, awaiting it when it yields a promise,
// and decodes the JSON result into out. A nil out discards the result.
func (s *Surface) Evaluate(ctx context.Context, script string, out any) error {
	return evaluate(ctx, s.ctx, script, out)
}

func (s *Surface) Location(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// ExpectNavigation reports, once, the first document request whose URL
// satisfies match. Redirects count. Call stop to detach the listener.
func (s *Surface) ExpectNavigation(match func(url string) bool) (<-chan string, func()) {
	listenCtx, stop := context.WithCancel(s.ctx)
	found := make(chan string, 1)
	var once sync.Once

	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		e, ok := ev.(*network.EventRequestWillBeSent)
		if !ok || e.Type != network.ResourceTypeDocument || e.Request == nil {
			return
		}
		if match(e.Request.URL) {
			once.Do(func() {
				found <- e.Request.URL
				stop()
			})
		}
	})
	return found, stop
}

func (s *Surface) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

func evaluate(ctx, tabCtx context.Context, script string, out any) error {
	err := runBound(ctx, tabCtx, chromedp.Evaluate(script, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err == nil {
		return nil
	}
	var exception *runtime.ExceptionDetails
	if errors.As(err, &exception) {
		return &ScriptError{Message: exception.Error()}
	}
	return err
}
