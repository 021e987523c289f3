package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
)

type claimOutcome int

const (
	outcomeClaimed claimOutcome = iota
	outcomeLinkingRequired
	outcomeTimedOut
	outcomeError
)

// Amazon claims every open Prime Gaming offer in one sequential pass.
type Amazon struct {
	deps Deps
	log  *logger.ClassLogger
}

func NewAmazon(deps Deps) *Amazon {
	a := &Amazon{deps: deps}
	a.log = logger.NewNamed("Amazon", sessionFor(model.Amazon))
	return a
}

// Catalog lists the claimable offers on the home page.
func (a *Amazon) Catalog(ctx context.Context) ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry
	if err := Discover(ctx, a.deps.Browser, model.Amazon.ReferenceURL, amazonCatalogProbe, a.deps.Timing.settle(), &entries); err != nil {
		return nil, err
	}
	return dedupeCatalog(entries), nil
}

// Run discovers the catalog and claims it.
func (a *Amazon) Run(ctx context.Context) {
	a.deps.say(model.Amazon.Name, "Retrieving list of items to claim...")
	catalog, err := a.Catalog(ctx)
	if err != nil {
		a.deps.handleError(a.log, model.Amazon.Name, "Error retrieving list of items to claim.", err)
		return
	}
	a.log.LogObject("Retrieved Amazon rewards list", catalog)
	a.deps.say(model.Amazon.Name, "Claiming in progress...")
	a.deps.emit(model.LoaderHidden{Platform: model.Amazon.Name})
	a.ClaimAll(ctx, catalog)
}

// ClaimAll claims each entry in order on one dedicated surface. Every entry
// yields exactly one Claiming event, followed by a single ClaimFinished.
func (a *Amazon) ClaimAll(ctx context.Context, catalog []model.CatalogEntry) {
	defer a.deps.emit(model.Claiming{Status: model.ClaimFinished})

	surface, err := a.deps.Browser.OpenSurface(ctx)
	if err != nil {
		a.log.Log(fmt.Sprintf("claim surface unavailable: %v", err))
	} else {
		defer surface.Close()
	}

	for _, entry := range catalog {
		outcome := outcomeError
		if surface != nil {
			outcome = a.claimOne(ctx, surface, entry)
		}
		a.report(entry, outcome)

		if err := a.log.Wait(ctx, "Waiting before the next claim", a.deps.Timing.ItemPause); err != nil {
			return
		}
	}
}

func (a *Amazon) claimOne(ctx context.Context, surface Surface, entry model.CatalogEntry) claimOutcome {
	if err := surface.Navigate(ctx, entry.ClaimLink); err != nil {
		a.log.JustLog(fmt.Sprintf("navigate to %s failed: %v", entry.ClaimLink, err))
		return outcomeError
	}

	var result string
	err := browser.WaitFor(ctx, surface, amazonClaimProbe, browser.WaitSpec{Limit: a.deps.Timing.ClaimTimeout}, &result)
	switch {
	case err == nil && result == "claimed":
		return outcomeClaimed
	case err == nil && result == "linking-required":
		return outcomeLinkingRequired
	case errors.Is(err, browser.ErrWaitTimeout):
		return outcomeTimedOut
	case err != nil:
		// A full page navigation tears the probe down; a moved page is a claim.
		if location, locErr := surface.Location(ctx); locErr == nil && location != entry.ClaimLink {
			return outcomeClaimed
		}
		a.log.JustLog(fmt.Sprintf("claim script for %s failed: %v", entry.Entity, classify("amazon claim", err)))
		return outcomeError
	default:
		return outcomeError
	}
}

func (a *Amazon) report(entry model.CatalogEntry, outcome claimOutcome) {
	status := model.ClaimFailed
	switch outcome {
	case outcomeClaimed:
		status = model.ClaimSucceeded
		a.deps.success(model.Amazon.Name, fmt.Sprintf("Successfully claimed items for %s.", entry.Entity))
	case outcomeLinkingRequired:
		a.deps.fail(model.Amazon.Name, fmt.Sprintf("Failed to claim items for %s, account linking required.", entry.Entity))
	case outcomeTimedOut:
		a.deps.fail(model.Amazon.Name, fmt.Sprintf("Failed to claim items for %s due to timeout.", entry.Entity))
	default:
		a.deps.fail(model.Amazon.Name, fmt.Sprintf("Failed to claim items for %s due to an error.", entry.Entity))
	}

	a.deps.emit(model.Claiming{Entity: entry.Entity, Item: entry.Item, Status: status})
	if a.deps.History != nil {
		if err := a.deps.History.RecordItem(model.Amazon.Name, entry.Entity, entry.Item, status.String(), a.deps.now()); err != nil {
			a.log.JustLog(fmt.Sprintf("record claim failed: %v", err))
		}
	}
}
