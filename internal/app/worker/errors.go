package worker

import (
	"errors"
	"fmt"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
)

var (
	// ErrExtractionTimeout means a page never reached the expected structure.
	ErrExtractionTimeout = errors.New("extraction timed out")
	// ErrLoginAbandoned means the user closed the sign-in window.
	ErrLoginAbandoned = errors.New("login window closed by user")
	// ErrNoActiveSource means no source of a reward is live.
	ErrNoActiveSource = errors.New("no active source found")
)

// ScriptError is an exception thrown by a page script.
type ScriptError struct {
	Op      string
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: script error: %s", e.Op, e.Message)
}

// classify maps browser failures onto the worker error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, browser.ErrWaitTimeout) {
		return fmt.Errorf("%s: %w", op, ErrExtractionTimeout)
	}
	var scriptErr *browser.ScriptError
	if errors.As(err, &scriptErr) {
		return &ScriptError{Op: op, Message: scriptErr.Message}
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
