package worker

import (
	"context"
	"fmt"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
)

// Discover loads listingURL on a fresh hidden surface, waits for the page to
// settle into what probe expects and decodes the result into out.
func Discover(ctx context.Context, b Browser, listingURL string, probe browser.Probe, spec browser.WaitSpec, out any) error {
	surface, err := b.OpenSurface(ctx)
	if err != nil {
		return fmt.Errorf("discover %s: %w", listingURL, err)
	}
	defer surface.Close()

	if err := surface.Navigate(ctx, listingURL); err != nil {
		return fmt.Errorf("discover %s: %w", listingURL, err)
	}
	return classify("discover "+listingURL, browser.WaitFor(ctx, surface, probe, spec, out))
}

func (t Timing) settle() browser.WaitSpec {
	return browser.WaitSpec{Quiet: t.SettleQuiet, Limit: t.ExtractionTimeout}
}

// dedupeCatalog keeps one entry per entity, at the position the entity first
// appeared, carrying its last seen item.
func dedupeCatalog(entries []model.CatalogEntry) []model.CatalogEntry {
	index := make(map[string]int, len(entries))
	out := make([]model.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Entity]; ok {
			out[i] = e
			continue
		}
		index[e.Entity] = len(out)
		out = append(out, e)
	}
	return out
}
