package worker

import (
	"context"
	"fmt"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
)

type sourceCheck struct {
	Status string `json:"status"`
	Target string `json:"target"`
}

// selectSource returns the first usable target among sources, checked
// strictly in order.
func (t *Twitch) selectSource(ctx context.Context, sources []model.Source) (string, error) {
	for _, src := range sources {
		target, err := t.checkSource(ctx, src)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			t.log.JustLog(fmt.Sprintf("Error checking streamer status: %s: %v", src.URL, err))
		case target == "":
			t.log.JustLog(fmt.Sprintf("Streamer unavailable: %s", src.URL))
		default:
			t.log.JustLog(fmt.Sprintf("Active streamer: %s", target))
			return target, nil
		}
	}
	return "", ErrNoActiveSource
}

// checkSource loads one source on a throwaway surface. Directory sources
// resolve to a joinable channel; direct sources must show as live.
func (t *Twitch) checkSource(ctx context.Context, src model.Source) (string, error) {
	surface, err := t.deps.Browser.OpenSurface(ctx)
	if err != nil {
		return "", err
	}
	defer surface.Close()

	if err := surface.Navigate(ctx, src.URL); err != nil {
		return "", err
	}

	probe := directSourceProbe
	if src.NeedsResolution {
		probe = resolveSourceProbe
	}
	var check sourceCheck
	spec := browser.WaitSpec{Limit: t.deps.Timing.SourceCheckTimeout}
	if err := browser.WaitFor(ctx, surface, probe, spec, &check); err != nil {
		return "", classify("check source "+src.URL, err)
	}
	if check.Status != "live" {
		return "", nil
	}
	if src.NeedsResolution {
		return check.Target, nil
	}
	return src.URL, nil
}
