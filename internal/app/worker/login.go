package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
)

const amazonSignInMarker = "www.amazon.com/ap/signin"

// Login opens a sign-in window for the platform of referenceURL and waits
// for its session cookie. It resolves exactly once.
func (s *Sessions) Login(ctx context.Context, referenceURL string) bool {
	platform, ok := model.PlatformForURL(referenceURL)
	if !ok {
		return false
	}

	loginURL, err := s.loginURL(ctx, platform)
	if err != nil {
		s.log.JustLog(fmt.Sprintf("resolve login url failed: %v", err))
		return false
	}

	window, err := s.deps.Browser.OpenAuthWindow(ctx, loginURL, platform.CookieURLs)
	if err != nil {
		s.deps.handleError(s.log, platform.Name, "Error opening the login window.", err)
		return false
	}
	defer window.Close()

	s.deps.say(platform.Name, "Login window opened.")
	s.adjustWindow(ctx, window, platform)

	err = s.awaitToken(ctx, window, platform)
	switch {
	case err == nil:
		s.log.JustLog(fmt.Sprintf("%s cookie found, login successful.", platform.Name))
		return true
	case errors.Is(err, ErrLoginAbandoned):
		s.deps.fail(platform.Name, "Login window closed by user.")
		return false
	default:
		s.deps.handleError(s.log, platform.Name, "Error saving login credentials.", err)
		return false
	}
}

func (s *Sessions) awaitToken(ctx context.Context, window AuthWindow, platform model.Platform) error {
	changes := window.Changes()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-window.Closed():
			return ErrLoginAbandoned
		case change, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if !isSessionToken(change, platform) {
				continue
			}
			cookies, err := window.Cookies(ctx, platform.CookieURLs...)
			if err != nil {
				return fmt.Errorf("export login cookies failed: %w", err)
			}
			return s.deps.Credentials.SetCookies(ctx, cookies)
		}
	}
}

func isSessionToken(change model.CookieChange, platform model.Platform) bool {
	return !change.Removed &&
		change.Cookie.Value != "" &&
		change.Cookie.Name == platform.TokenName &&
		strings.Contains(change.Cookie.Domain, platform.TokenDomain)
}

// adjustWindow applies best-effort cosmetic fixes to the login page.
func (s *Sessions) adjustWindow(ctx context.Context, window AuthWindow, platform model.Platform) {
	var script string
	switch platform.Name {
	case model.Twitch.Name:
		script = twitchConsentScript
	case model.Nintendo.Name:
		script = nintendoCenterScript
	default:
		return
	}
	if err := window.Evaluate(ctx, script, nil); err != nil {
		s.log.JustLog(fmt.Sprintf("login window adjustment failed: %v", err))
	}
}

func (s *Sessions) loginURL(ctx context.Context, platform model.Platform) (string, error) {
	if platform.LoginURL != "" {
		return platform.LoginURL, nil
	}
	if platform.Name != model.Amazon.Name {
		return "", fmt.Errorf("no login url for %s", platform.Name)
	}
	return s.resolveAmazonSignIn(ctx)
}

// resolveAmazonSignIn presses the sign-in button on a hidden page and
// captures where it redirects.
func (s *Sessions) resolveAmazonSignIn(ctx context.Context) (string, error) {
	timing := s.deps.Timing
	surface, err := s.deps.Browser.OpenSurface(ctx)
	if err != nil {
		s.deps.handleError(s.log, model.Amazon.Name, "Error loading amazon login page.", err)
		return "", err
	}
	defer surface.Close()

	found, stop := surface.ExpectNavigation(func(url string) bool {
		return strings.Contains(url, amazonSignInMarker)
	})
	defer stop()

	if err := surface.Navigate(ctx, model.Amazon.ReferenceURL); err != nil {
		s.deps.handleError(s.log, model.Amazon.Name, "Error loading amazon login page.", err)
		return "", err
	}

	clicked := make(chan error, 1)
	go func() {
		clicked <- browser.WaitFor(ctx, surface, amazonSignInProbe, browser.WaitSpec{Limit: timing.LoginResolveTimeout}, nil)
	}()

	deadline := time.NewTimer(timing.LoginResolveTimeout)
	defer deadline.Stop()

	for {
		select {
		case url := <-found:
			return url, nil
		case err := <-clicked:
			var scriptErr *browser.ScriptError
			if errors.As(err, &scriptErr) {
				s.deps.handleError(s.log, model.Amazon.Name, "Error loading amazon login page.", err)
				return "", classify("amazon sign-in", err)
			}
			// The click navigates away, which usually ends the probe with a
			// context error. Keep waiting for the redirect.
			clicked = nil
		case <-deadline.C:
			return "", fmt.Errorf("amazon sign-in redirect: %w", ErrExtractionTimeout)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
