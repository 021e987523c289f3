package app

import (
	"context"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/internal/app/worker"
)

// browserPort exposes the chromedp browser through the worker interfaces.
type browserPort struct {
	b *browser.Browser
}

func (p browserPort) OpenSurface(ctx context.Context) (worker.Surface, error) {
	s, err := p.b.OpenSurface(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p browserPort) OpenAuthWindow(ctx context.Context, loginURL string, watchURLs []string) (worker.AuthWindow, error) {
	w, err := p.b.OpenAuthWindow(ctx, loginURL, watchURLs)
	if err != nil {
		return nil, err
	}
	return w, nil
}
