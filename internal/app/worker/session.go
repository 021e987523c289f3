package worker

import (
	"context"
	"fmt"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
)

// Sessions verifies, establishes and drops platform sessions.
type Sessions struct {
	deps Deps
	log  *logger.ClassLogger
}

func NewSessions(deps Deps) *Sessions {
	s := &Sessions{deps: deps}
	s.log = logger.NewLogger(s, nil)
	return s
}

// IsAuthenticated reports whether the credential store holds a non-empty
// tokenName cookie for referenceURL. A store failure counts as signed out.
func (s *Sessions) IsAuthenticated(ctx context.Context, referenceURL, tokenName string) bool {
	cookies, err := s.deps.Credentials.Cookies(ctx, referenceURL)
	if err != nil {
		s.log.JustLog(fmt.Sprintf("credential lookup for %s failed: %v", referenceURL, err))
		return false
	}
	for _, c := range cookies {
		if c.Name == tokenName && c.Value != "" {
			return true
		}
	}
	return false
}

// LoginStatus checks every platform, keyed by reference URL.
func (s *Sessions) LoginStatus(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(model.Platforms))
	for _, p := range model.Platforms {
		status[p.ReferenceURL] = s.IsAuthenticated(ctx, p.ReferenceURL, p.TokenName)
	}
	return status
}

// Check verifies the session of referenceURL and runs the login flow when
// there is none. The outcome is emitted as SessionStatus.
func (s *Sessions) Check(ctx context.Context, referenceURL, tokenName string) bool {
	platform, ok := model.PlatformForURL(referenceURL)
	if !ok {
		s.deps.fail("", fmt.Sprintf("Unknown service: %s", referenceURL))
		return false
	}

	if s.IsAuthenticated(ctx, referenceURL, tokenName) {
		s.deps.emit(model.SessionStatus{Platform: platform.Name, LoggedIn: true})
		return true
	}

	s.deps.fail(platform.Name, "Login credentials not found, opening the login window...")
	loggedIn := s.Login(ctx, referenceURL)
	s.deps.emit(model.SessionStatus{Platform: platform.Name, LoggedIn: loggedIn})
	return loggedIn
}

// Logout removes every credential of url and re-emits the login status.
func (s *Sessions) Logout(ctx context.Context, url string) error {
	if err := s.deps.Credentials.RemoveCookies(ctx, url); err != nil {
		s.log.Log(fmt.Sprintf("Error clearing credentials of %s: %v", url, err))
		s.deps.emit(model.LoginStatus{Status: s.LoginStatus(ctx)})
		return fmt.Errorf("logout failed: %w", err)
	}
	s.log.JustLog(fmt.Sprintf("Cleared credentials of %s", url))
	s.deps.emit(model.LoginStatus{Status: s.LoginStatus(ctx)})
	return nil
}
