package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twitchToken(value string) model.Cookie {
	return model.Cookie{Name: "auth-token", Value: value, Domain: ".twitch.tv", Path: "/"}
}

func newSessionRig(creds *fakeCredentials) (*Sessions, *fakeBrowser, *recorder) {
	b := newFakeBrowser(func(string, string) (string, error) { return "", nil })
	events := &recorder{}
	s := NewSessions(Deps{Browser: b, Credentials: creds, Events: events, Timing: fastTiming()})
	return s, b, events
}

func TestIsAuthenticated(t *testing.T) {
	ctx := context.Background()

	s, _, _ := newSessionRig(&fakeCredentials{cookies: []model.Cookie{twitchToken("abc")}})
	assert.True(t, s.IsAuthenticated(ctx, model.Twitch.ReferenceURL, "auth-token"))
	assert.False(t, s.IsAuthenticated(ctx, model.Nintendo.ReferenceURL, "NAOPBS"))

	s, _, _ = newSessionRig(&fakeCredentials{cookies: []model.Cookie{twitchToken("")}})
	assert.False(t, s.IsAuthenticated(ctx, model.Twitch.ReferenceURL, "auth-token"))

	s, _, _ = newSessionRig(&fakeCredentials{err: errors.New("store offline")})
	assert.False(t, s.IsAuthenticated(ctx, model.Twitch.ReferenceURL, "auth-token"))
}

func TestLoginStatusCoversEveryPlatform(t *testing.T) {
	s, _, _ := newSessionRig(&fakeCredentials{cookies: []model.Cookie{twitchToken("abc")}})

	status := s.LoginStatus(context.Background())
	assert.Equal(t, map[string]bool{
		model.Amazon.ReferenceURL:   false,
		model.Twitch.ReferenceURL:   true,
		model.Nintendo.ReferenceURL: false,
	}, status)
}

func TestLoginResolvesOnSessionCookie(t *testing.T) {
	creds := &fakeCredentials{}
	s, b, events := newSessionRig(creds)
	window := newFakeAuthWindow()
	window.cookies = []model.Cookie{twitchToken("abc"), {Name: "unique_id", Value: "u", Domain: ".twitch.tv"}}
	window.changes <- model.CookieChange{Cookie: model.Cookie{Name: "unique_id", Value: "u", Domain: ".twitch.tv"}}
	window.changes <- model.CookieChange{Cookie: twitchToken("abc")}
	b.auth = window

	require.True(t, s.Login(context.Background(), model.Twitch.ReferenceURL))

	assert.Equal(t, model.Twitch.LoginURL, b.authURL)
	assert.True(t, window.shut)
	assert.Equal(t, []string{twitchConsentScript}, window.scripts)
	assert.Len(t, creds.cookies, 2)
	assert.Contains(t, events.texts(), "Login window opened.")
}

func TestLoginIgnoresRemovedToken(t *testing.T) {
	window := newFakeAuthWindow()
	window.changes <- model.CookieChange{Cookie: twitchToken("abc"), Removed: true}
	close(window.closed)

	s, b, events := newSessionRig(&fakeCredentials{})
	b.auth = window

	assert.False(t, s.Login(context.Background(), model.Twitch.ReferenceURL))
	assert.Contains(t, events.texts(), "Login window closed by user.")
}

func TestLoginStopsWithContext(t *testing.T) {
	s, b, _ := newSessionRig(&fakeCredentials{})
	b.auth = newFakeAuthWindow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, s.Login(ctx, model.Twitch.ReferenceURL))
}

func TestCheckSkipsLoginWithSession(t *testing.T) {
	s, b, events := newSessionRig(&fakeCredentials{cookies: []model.Cookie{twitchToken("abc")}})

	assert.True(t, s.Check(context.Background(), model.Twitch.ReferenceURL, "auth-token"))
	assert.Empty(t, b.authURL)
	assert.Equal(t, []model.SessionStatus{{Platform: "Twitch", LoggedIn: true}}, eventsOf[model.SessionStatus](events))
}

func TestCheckOpensLoginWithoutSession(t *testing.T) {
	s, b, events := newSessionRig(&fakeCredentials{})
	window := newFakeAuthWindow()
	window.cookies = []model.Cookie{{Name: "NAOPBS", Value: "n", Domain: ".nintendo.com"}}
	window.changes <- model.CookieChange{Cookie: window.cookies[0]}
	b.auth = window

	assert.True(t, s.Check(context.Background(), model.Nintendo.ReferenceURL, "NAOPBS"))
	assert.Contains(t, events.texts(), "Login credentials not found, opening the login window...")
	assert.Equal(t, []model.SessionStatus{{Platform: "Nintendo", LoggedIn: true}}, eventsOf[model.SessionStatus](events))
	assert.Equal(t, []string{nintendoCenterScript}, window.scripts)
}

func TestLogoutEmitsStatus(t *testing.T) {
	creds := &fakeCredentials{cookies: []model.Cookie{twitchToken("abc")}}
	s, _, events := newSessionRig(creds)

	require.NoError(t, s.Logout(context.Background(), model.Twitch.ReferenceURL))

	assert.Equal(t, []string{model.Twitch.ReferenceURL}, creds.removed)
	statuses := eventsOf[model.LoginStatus](events)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Status[model.Twitch.ReferenceURL])
}
