package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
)

const (
	myNintendoURL      = "https://my.nintendo.com"
	myNintendoMissions = "https://my.nintendo.com/missions"
)

type pointsReading struct {
	Total   string `json:"total"`
	Claimed string `json:"claimed"`
}

func (p pointsReading) trimmed() pointsReading {
	return pointsReading{Total: strings.TrimSpace(p.Total), Claimed: strings.TrimSpace(p.Claimed)}
}

// Nintendo collects the weekly sign-in bonus and finished mission points.
type Nintendo struct {
	deps Deps
	log  *logger.ClassLogger
}

func NewNintendo(deps Deps) *Nintendo {
	n := &Nintendo{deps: deps}
	n.log = logger.NewNamed("Nintendo", sessionFor(model.Nintendo))
	return n
}

func (n *Nintendo) Claim(ctx context.Context) error {
	n.deps.say(model.Nintendo.Name, "Starting to claim platinum points...")
	if err := n.claim(ctx); err != nil {
		n.deps.handleError(n.log, model.Nintendo.Name, "Error claiming platinum points.", err)
		return err
	}
	return nil
}

func (n *Nintendo) claim(ctx context.Context) error {
	surface, err := n.deps.Browser.OpenSurface(ctx)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			surface.Close()
		}
	}()

	if err := surface.Navigate(ctx, myNintendoURL); err != nil {
		return err
	}
	if err := n.log.Wait(ctx, "Loading My Nintendo", n.deps.Timing.StepDelay); err != nil {
		return err
	}
	if err := surface.Evaluate(ctx, nintendoSignInScript, nil); err != nil {
		return classify("nintendo sign-in", err)
	}

	weekly, err := n.weeklyBonus(ctx, surface)
	if err != nil {
		return err
	}
	if weekly.Claimed == "0" {
		n.deps.fail(model.Nintendo.Name, "My Nintendo weekly sign-in bonus is not available.")
	} else {
		n.deps.success(model.Nintendo.Name, "Collected My Nintendo weekly sign-in bonus.")
	}
	n.deps.emit(model.PlatinumPoints{Claimed: weekly.Claimed, Total: weekly.Total, Status: model.PointsUpdate})
	n.deps.emit(model.LoaderHidden{Platform: model.Nintendo.Name})
	n.record("weekly", weekly)

	if err := surface.Navigate(ctx, myNintendoMissions); err != nil {
		return err
	}
	n.deps.say(model.Nintendo.Name, "Checking Earn Points page...")
	if err := n.log.Wait(ctx, "Loading missions", n.deps.Timing.StepDelay); err != nil {
		return err
	}

	var click struct {
		Clicked  bool `json:"clicked"`
		Inactive bool `json:"inactive"`
	}
	if err := surface.Evaluate(ctx, nintendoMissionsClickScript, &click); err != nil {
		return classify("nintendo missions", err)
	}
	if click.Clicked {
		if err := n.log.Wait(ctx, "Collecting mission points", n.deps.Timing.StepDelay); err != nil {
			return err
		}
	}

	var missions pointsReading
	if err := surface.Evaluate(ctx, nintendoMissionsPointsScript, &missions); err != nil {
		return classify("nintendo mission points", err)
	}
	missions = missions.trimmed()
	if missions.Claimed == "0" || missions.Claimed == "" {
		n.deps.fail(model.Nintendo.Name, "No points to claim from missions.")
	} else {
		n.deps.success(model.Nintendo.Name, "Collected all points from completed missions.")
	}
	n.deps.emit(model.PlatinumPoints{Claimed: missions.Claimed, Total: missions.Total, Status: model.PointsUpdate})
	n.record("missions", missions)

	surface.Close()
	closed = true
	if err := n.log.Wait(ctx, "Finishing", n.deps.Timing.StepDelay); err != nil {
		return err
	}
	n.deps.emit(model.PlatinumPoints{Status: model.PointsFinished})
	return nil
}

// weeklyBonus waits for the gift overlay. No overlay means no bonus this
// week, read as zero claimed.
func (n *Nintendo) weeklyBonus(ctx context.Context, surface Surface) (pointsReading, error) {
	var reading pointsReading
	err := browser.WaitFor(ctx, surface, nintendoBonusProbe, browser.WaitSpec{Limit: n.deps.Timing.StepDelay}, &reading)
	if errors.Is(err, browser.ErrWaitTimeout) {
		reading = pointsReading{}
		err = surface.Evaluate(ctx, nintendoTotalScript, &reading)
	}
	if err != nil {
		return pointsReading{}, classify("nintendo weekly bonus", err)
	}
	reading = reading.trimmed()
	if reading.Claimed == "" {
		reading.Claimed = "0"
	}
	return reading, nil
}

func (n *Nintendo) record(source string, reading pointsReading) {
	if n.deps.History == nil {
		return
	}
	if err := n.deps.History.RecordPoints(n.deps.now(), source, reading.Claimed, reading.Total); err != nil {
		n.log.JustLog(fmt.Sprintf("record %s points failed: %v", source, err))
	}
}
