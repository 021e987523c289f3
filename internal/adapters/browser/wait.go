package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrWaitTimeout is returned when a probe never produced a value within
// its limit.
var ErrWaitTimeout = errors.New("wait timed out")

// ScriptError is an exception raised by a script running in the page.
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script error: %s", e.Message)
}

// Evaluator runs a script in a page.
type Evaluator interface {
	Evaluate(ctx context.Context, script string, out any) error
}

// Probe is a page check. Setup runs once before observing; Body is the body
// of a function that returns a value when the page is ready, or null to keep
// waiting. Both are plain JavaScript statements.
type Probe struct {
	Setup string
	Body  string
}

// WaitSpec bounds a wait. With Quiet > 0 the probe runs only after the DOM
// has stopped mutating for Quiet; otherwise it runs on every mutation.
type WaitSpec struct {
	Quiet time.Duration
	Limit time.Duration
}

type waitResult struct {
	Value   json.RawMessage `json:"__value"`
	Timeout bool            `json:"__timeout"`
	Error   *string         `json:"__error"`
}

// WaitFor observes the page until probe yields a value and decodes it into
// out. It is the single wait primitive for every page interaction.
func WaitFor(ctx context.Context, page Evaluator, probe Probe, spec WaitSpec, out any) error {
	var res waitResult
	if err := page.Evaluate(ctx, waitScript(probe, spec), &res); err != nil {
		return err
	}
	switch {
	case res.Error != nil:
		return &ScriptError{Message: *res.Error}
	case res.Timeout:
		return ErrWaitTimeout
	}
	if out == nil || len(res.Value) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Value, out); err != nil {
		return fmt.Errorf("decode probe result failed: %w", err)
	}
	return nil
}

func waitScript(probe Probe, spec WaitSpec) string {
	return fmt.Sprintf(`new Promise((resolve) => {
  const quiet = %d, limit = %d;
  let done = false, settle = null, observer = null, hard = null;
  const finish = (v) => {
    if (done) return;
    done = true;
    if (observer) observer.disconnect();
    clearTimeout(settle);
    clearTimeout(hard);
    resolve(v);
  };
  %s
  const probe = () => { %s };
  const check = () => {
    if (done) return;
    let v;
    try { v = probe(); } catch (e) { finish({__error: String((e && e.message) || e)}); return; }
    if (v !== undefined && v !== null) finish({__value: v});
  };
  const schedule = () => {
    if (quiet > 0) { clearTimeout(settle); settle = setTimeout(check, quiet); } else { check(); }
  };
  observer = new MutationObserver(schedule);
  observer.observe(document.documentElement || document, {childList: true, subtree: true, attributes: true});
  if (limit > 0) hard = setTimeout(() => finish({__timeout: true}), limit);
  schedule();
})`, spec.Quiet.Milliseconds(), spec.Limit.Milliseconds(), probe.Setup, probe.Body)
}
