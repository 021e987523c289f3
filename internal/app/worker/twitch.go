package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
)

const twitchInventoryURL = "https://www.twitch.tv/drops/inventory"

type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeExhausted
	OutcomeSuperseded
	OutcomeErrored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "errored"
	}
}

// ClaimRun is one polling claim of a reward.
type ClaimRun struct {
	ID     string
	Game   string
	Reward string

	done    chan struct{}
	mu      sync.Mutex
	outcome Outcome
	detail  string
}

func newClaimRun(game, reward string) *ClaimRun {
	return &ClaimRun{
		ID:     uuid.New().String(),
		Game:   game,
		Reward: reward,
		done:   make(chan struct{}),
	}
}

// Done is closed once the run has fully torn down.
func (r *ClaimRun) Done() <-chan struct{} {
	return r.done
}

func (r *ClaimRun) Result() (Outcome, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome, r.detail
}

func (r *ClaimRun) complete(outcome Outcome, detail string) {
	r.mu.Lock()
	r.outcome = outcome
	r.detail = detail
	r.mu.Unlock()
	close(r.done)
}

type step int

const (
	stepContinue step = iota
	stepReselect
	stepTerminal
)

type verdict struct {
	step    step
	outcome Outcome
	detail  string
}

func terminal(outcome Outcome, detail string) verdict {
	return verdict{step: stepTerminal, outcome: outcome, detail: detail}
}

type pollState struct {
	loops int
	seen  bool
}

// Twitch owns the shared watch and inventory pages and the Active Claim
// tag. Only one reward holds the tag at a time; starting another claim
// supersedes the current one.
type Twitch struct {
	deps     Deps
	log      *logger.ClassLogger
	base     context.Context
	registry *ClaimRegistry

	mu        sync.Mutex
	activeTag string

	surfMu    sync.Mutex
	watch     Surface
	inventory Surface

	wg sync.WaitGroup
}

// NewTwitch creates the worker. Runs live until base is cancelled; the wake
// lock in deps is held while any claim is running.
func NewTwitch(base context.Context, deps Deps) *Twitch {
	t := &Twitch{deps: deps, base: base, registry: NewClaimRegistry(deps.WakeLock)}
	t.log = logger.NewNamed("Twitch", sessionFor(model.Twitch))
	return t
}

// Registry lists the rewards with a running claim.
func (t *Twitch) Registry() *ClaimRegistry {
	return t.registry
}

// Campaigns scrapes the open drop campaigns.
func (t *Twitch) Campaigns(ctx context.Context) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	if err := Discover(ctx, t.deps.Browser, model.Twitch.ReferenceURL, twitchCampaignsProbe, t.deps.Timing.settle(), &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// ListCampaigns shows the open campaigns for selection.
func (t *Twitch) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	t.deps.say(model.Twitch.Name, "Retrieving list of open campaigns...")
	campaigns, err := t.Campaigns(ctx)
	if err != nil {
		t.deps.handleError(t.log, model.Twitch.Name, "Error retrieving list of campaigns.", err)
		return nil, err
	}
	t.deps.say(model.Twitch.Name, "Please select games that you want to claim.")
	t.deps.say(model.Twitch.Name, "Your selections will be saved for future sessions.")
	t.deps.emit(model.LoaderHidden{Platform: model.Twitch.Name})
	t.deps.emit(model.CampaignsDisplay{Campaigns: campaigns, InitialLoad: true})
	return campaigns, nil
}

// OpenWindows creates the inventory and watch pages if they do not exist.
func (t *Twitch) OpenWindows(ctx context.Context) error {
	_, _, err := t.surfaces(ctx)
	return err
}

func (t *Twitch) surfaces(ctx context.Context) (watch, inventory Surface, err error) {
	t.surfMu.Lock()
	defer t.surfMu.Unlock()

	if t.inventory == nil {
		s, err := t.deps.Browser.OpenSurface(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("open inventory page failed: %w", err)
		}
		if err := s.Navigate(ctx, twitchInventoryURL); err != nil {
			s.Close()
			return nil, nil, err
		}
		t.inventory = s
	}
	if t.watch == nil {
		s, err := t.deps.Browser.OpenSurface(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("open watch page failed: %w", err)
		}
		t.watch = s
	}
	return t.watch, t.inventory, nil
}

// ActiveTag is the reward currently owning the watch page.
func (t *Twitch) ActiveTag() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeTag
}

func (t *Twitch) owns(reward string) bool {
	return t.ActiveTag() == reward
}

// StartClaim validates the reward, finds a live source and starts polling
// it in the background. It returns nil when no run was started.
func (t *Twitch) StartClaim(ctx context.Context, game, reward string) *ClaimRun {
	defer t.deps.emit(model.ClaimEnabled{})

	t.deps.say(model.Twitch.Name, "Validating reward availability...")
	campaigns, err := t.Campaigns(ctx)
	if err != nil {
		t.deps.handleError(t.log, model.Twitch.Name, "Error retrieving list of campaigns.", err)
		return nil
	}
	t.deps.emit(model.CampaignsDisplay{Campaigns: campaigns})

	target, reason := t.pickTarget(ctx, campaigns, game, reward)
	if reason != "" {
		t.deps.fail(model.Twitch.Name, reason)
		return nil
	}
	t.deps.say(model.Twitch.Name, "Found available streamer, started claiming...")

	run, ok := t.claim(game, reward)
	if !ok {
		t.deps.fail(model.Twitch.Name, fmt.Sprintf("Claiming already in progress: %s", reward))
		return nil
	}

	t.wg.Add(1)
	go t.poll(run, target)
	return run
}

// claim takes the tag and registers the reward in one step.
func (t *Twitch) claim(game, reward string) (*ClaimRun, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeTag == reward || t.registry.Has(reward) {
		return nil, false
	}
	t.activeTag = reward
	t.registry.Begin(reward)
	return newClaimRun(game, reward), true
}

func (t *Twitch) pickTarget(ctx context.Context, campaigns []model.Campaign, game, reward string) (string, string) {
	campaign, ok := model.FindCampaign(campaigns, game)
	if !ok {
		return "", fmt.Sprintf("%s currently has no open campaigns.", game)
	}
	r, ok := campaign.FindReward(reward)
	if !ok {
		return "", fmt.Sprintf("No rewards found for %s.", reward)
	}
	target, err := t.selectSource(ctx, r.Sources)
	if err != nil {
		return "", fmt.Sprintf("No active streamers found for %s.", reward)
	}
	return target, ""
}

func (t *Twitch) poll(run *ClaimRun, target string) {
	defer t.wg.Done()

	if t.deps.History != nil {
		if err := t.deps.History.StartRun(run.ID, run.Game, run.Reward, t.deps.now()); err != nil {
			t.log.JustLog(fmt.Sprintf("record run failed: %v", err))
		}
	}

	v := t.watchAndPoll(t.base, run, target)
	t.finish(run, v.outcome, v.detail)
}

func (t *Twitch) watchAndPoll(ctx context.Context, run *ClaimRun, target string) verdict {
	watch, inventory, err := t.surfaces(ctx)
	if err != nil {
		t.log.JustLog(fmt.Sprintf("twitch pages unavailable: %v", err))
		return terminal(OutcomeErrored, "Error opening Twitch pages.")
	}
	if stop := t.watchOwned(ctx, watch, run, target); stop != nil {
		return *stop
	}

	ticker := time.NewTicker(t.deps.Timing.PollInterval)
	defer ticker.Stop()

	var st pollState
	for {
		v := t.checkpoint(ctx, run, watch, inventory, &st)
		switch v.step {
		case stepTerminal:
			return v
		case stepReselect:
			t.deps.say(model.Twitch.Name, "Streamer went offline, finding a new one...")
			next, stop := t.reselect(ctx, run)
			if stop != nil {
				return *stop
			}
			if stop := t.watchOwned(ctx, watch, run, next); stop != nil {
				return *stop
			}
			st = pollState{}
			ticker.Reset(t.deps.Timing.PollInterval)
			continue
		}

		select {
		case <-ctx.Done():
			return terminal(OutcomeErrored, "Claiming stopped.")
		case <-ticker.C:
		}
	}
}

// checkpoint samples the inventory once and decides the next step.
func (t *Twitch) checkpoint(ctx context.Context, run *ClaimRun, watch, inventory Surface, st *pollState) verdict {
	st.loops++

	sample, err := t.sample(ctx, inventory, run.Reward)
	if err != nil {
		t.log.JustLog(fmt.Sprintf("Error updating reward progress: %v", err))
		return terminal(OutcomeErrored, "Error updating reward progress.")
	}
	t.log.LogObject(fmt.Sprintf("%s: %s", run.Game, run.Reward), sample)

	if !st.seen && (sample.RewardAvailable || len(sample.Claimed) > 0) {
		st.seen = true
	}

	gone := false
	if st.seen {
		listed, err := t.rewardListed(ctx, inventory, run.Reward)
		if err != nil {
			t.log.JustLog(fmt.Sprintf("Error checking reward listing: %v", err))
			return terminal(OutcomeErrored, "Error updating reward progress.")
		}
		gone = !listed
	}

	offline, err := t.watchOffline(ctx, watch)
	if err != nil {
		t.log.JustLog(fmt.Sprintf("Error checking stream status: %v", err))
		return terminal(OutcomeErrored, "Error updating reward progress.")
	}
	if offline {
		st.seen = false
	}

	if !t.owns(run.Reward) {
		return terminal(OutcomeSuperseded, "A new reward claiming is in progress.")
	}

	if sample.RewardAvailable {
		t.deps.emit(model.RewardProgress{
			Percentage: sample.Percentage,
			Minutes:    sample.LongestMinutes,
			Game:       run.Game,
			Reward:     run.Reward,
		})
		if t.deps.History != nil {
			if err := t.deps.History.UpdateRunProgress(run.ID, sample.Percentage, sample.LongestMinutes); err != nil {
				t.log.JustLog(fmt.Sprintf("record progress failed: %v", err))
			}
		}
	}
	for _, item := range sample.Claimed {
		t.deps.success(model.Twitch.Name, fmt.Sprintf("Successfully claimed %s.", item))
	}

	if gone && st.seen {
		t.completed(ctx, run)
		return terminal(OutcomeSucceeded, "")
	}

	if (!sample.RewardAvailable || offline) && !st.seen && st.loops > t.deps.Timing.GraceCheckpoints {
		if offline {
			return verdict{step: stepReselect}
		}
		return terminal(OutcomeExhausted, "Reward is already claimed or closed.")
	}
	return verdict{step: stepContinue}
}

func (t *Twitch) completed(ctx context.Context, run *ClaimRun) {
	t.deps.emit(model.RewardProgress{Percentage: 100, Game: run.Game, Reward: run.Reward})

	title := "All items claimed!"
	body := fmt.Sprintf("Successfully claimed %s for %s.", run.Reward, run.Game)
	t.deps.emit(model.Notification{Title: title, Body: body})
	if t.deps.Notifier != nil {
		if err := t.deps.Notifier.Notify(ctx, title, body); err != nil {
			t.log.JustLog(fmt.Sprintf("push failed: %v", err))
		}
	}
}

// reselect finds a fresh source for the same reward. A non-nil verdict ends
// the run.
func (t *Twitch) reselect(ctx context.Context, run *ClaimRun) (string, *verdict) {
	campaigns, err := t.Campaigns(ctx)
	if err != nil {
		t.log.JustLog(fmt.Sprintf("Error retrieving list of campaigns: %v", err))
		v := terminal(OutcomeErrored, "Error retrieving list of campaigns.")
		return "", &v
	}
	t.deps.emit(model.CampaignsDisplay{Campaigns: campaigns})

	target, reason := t.pickTarget(ctx, campaigns, run.Game, run.Reward)
	if reason != "" {
		v := terminal(OutcomeExhausted, reason)
		return "", &v
	}
	t.log.JustLog(fmt.Sprintf("Active streamer: %s", target))
	return target, nil
}

// watchOwned points the watch page at target while run holds the tag. The
// tag lock stays held across the navigation so a newer claim cannot start
// watching in between.
func (t *Twitch) watchOwned(ctx context.Context, watch Surface, run *ClaimRun, target string) *verdict {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeTag != run.Reward {
		v := terminal(OutcomeSuperseded, "A new reward claiming is in progress.")
		return &v
	}
	if err := watch.Navigate(ctx, target); err != nil {
		t.log.JustLog(fmt.Sprintf("watch %s failed: %v", target, err))
		v := terminal(OutcomeErrored, "Error loading the stream.")
		return &v
	}
	return nil
}

func (t *Twitch) sample(ctx context.Context, inventory Surface, reward string) (model.ProgressSample, error) {
	if err := inventory.Reload(ctx); err != nil {
		return model.ProgressSample{}, fmt.Errorf("reload inventory failed: %w", err)
	}
	var scan inventoryScan
	if err := browser.WaitFor(ctx, inventory, progressProbe(reward), t.deps.Timing.settle(), &scan); err != nil {
		return model.ProgressSample{}, classify("sample progress", err)
	}
	return sampleFrom(scan), nil
}

func (t *Twitch) rewardListed(ctx context.Context, inventory Surface, reward string) (bool, error) {
	var res struct {
		Listed bool `json:"listed"`
	}
	if err := inventory.Evaluate(ctx, rewardListedScript(reward), &res); err != nil {
		return false, classify("reward listing", err)
	}
	return res.Listed, nil
}

func (t *Twitch) watchOffline(ctx context.Context, watch Surface) (bool, error) {
	var res struct {
		Offline bool `json:"offline"`
	}
	if err := watch.Evaluate(ctx, watchOfflineScript, &res); err != nil {
		return false, classify("stream status", err)
	}
	return res.Offline, nil
}

// finish is the teardown of every terminal state.
func (t *Twitch) finish(run *ClaimRun, outcome Outcome, detail string) {
	t.mu.Lock()
	if t.activeTag == run.Reward {
		t.activeTag = ""
	}
	if t.registry.End(run.Reward) {
		t.blankWatch()
	}
	t.mu.Unlock()

	if t.deps.History != nil {
		if err := t.deps.History.FinishRun(run.ID, outcome.String(), detail, t.deps.now()); err != nil {
			t.log.JustLog(fmt.Sprintf("record run end failed: %v", err))
		}
	}

	if outcome == OutcomeSucceeded {
		t.deps.success(model.Twitch.Name, fmt.Sprintf("Successfully claimed all items for %s.", run.Reward))
	} else {
		t.deps.fail(model.Twitch.Name, fmt.Sprintf("Claiming terminated for %s: %s", run.Reward, detail))
	}

	t.deps.emit(model.ClaimEnabled{})
	run.complete(outcome, detail)
}

func (t *Twitch) blankWatch() {
	t.surfMu.Lock()
	watch := t.watch
	t.surfMu.Unlock()
	if watch == nil {
		return
	}

	ctx := context.Background()
	if d := t.deps.Timing.BlankTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := watch.Navigate(ctx, "about:blank"); err != nil {
		t.log.JustLog(fmt.Sprintf("blank watch page failed: %v", err))
	}
}

// ClaimSelected claims every reward of the given games one after another.
func (t *Twitch) ClaimSelected(ctx context.Context, games []string) error {
	if len(games) == 0 {
		t.deps.fail(model.Twitch.Name, "No games selected.")
		return nil
	}
	campaigns, err := t.Campaigns(ctx)
	if err != nil {
		t.deps.handleError(t.log, model.Twitch.Name, "Error retrieving list of campaigns.", err)
		return err
	}

	for _, game := range games {
		campaign, ok := model.FindCampaign(campaigns, game)
		if !ok {
			t.deps.fail(model.Twitch.Name, fmt.Sprintf("%s currently has no open campaigns.", game))
			continue
		}
		for _, reward := range campaign.Rewards {
			run := t.StartClaim(ctx, game, reward.Name)
			if run == nil {
				continue
			}
			select {
			case <-run.Done():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// Wait blocks until every run has torn down.
func (t *Twitch) Wait() {
	t.wg.Wait()
}

func (t *Twitch) Close() error {
	t.surfMu.Lock()
	defer t.surfMu.Unlock()
	if t.watch != nil {
		t.watch.Close()
		t.watch = nil
	}
	if t.inventory != nil {
		t.inventory.Close()
		t.inventory = nil
	}
	return nil
}
