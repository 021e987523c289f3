package credentials

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies", "credentials.json")
	jar, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, jar.Put([]model.Cookie{
		{Name: "auth-token", Value: "abc", Domain: ".twitch.tv", Path: "/"},
		{Name: "x-main", Value: "xyz", Domain: ".amazon.com", Path: "/"},
	}))

	reopened, err := Open(path)
	require.NoError(t, err)

	twitch := reopened.Cookies("https://www.twitch.tv/drops/campaigns")
	require.Len(t, twitch, 1)
	assert.Equal(t, "abc", twitch[0].Value)

	amazon := reopened.Cookies("https://gaming.amazon.com/home")
	require.Len(t, amazon, 1)
	assert.Equal(t, "x-main", amazon[0].Name)
}

func TestJarPutReplacesAndExpires(t *testing.T) {
	jar, err := Open("")
	require.NoError(t, err)

	require.NoError(t, jar.Put([]model.Cookie{{Name: "a", Value: "1", Domain: "twitch.tv"}}))
	require.NoError(t, jar.Put([]model.Cookie{{Name: "a", Value: "2", Domain: "twitch.tv"}}))
	got := jar.Cookies("https://www.twitch.tv/")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Value)

	require.NoError(t, jar.Put([]model.Cookie{{Name: "a", Value: "", Domain: "twitch.tv", Expires: time.Now().Add(-time.Hour)}}))
	assert.Empty(t, jar.Cookies("https://www.twitch.tv/"))
	assert.False(t, jar.HasCookies())
}

func TestJarRemoveOnlyTouchesMatchingDomains(t *testing.T) {
	jar, err := Open("")
	require.NoError(t, err)
	require.NoError(t, jar.Put([]model.Cookie{
		{Name: "auth-token", Value: "abc", Domain: ".twitch.tv"},
		{Name: "NAOPBS", Value: "n", Domain: ".nintendo.com"},
	}))

	require.NoError(t, jar.Remove("https://www.twitch.tv/drops/campaigns"))

	assert.Empty(t, jar.Cookies("https://www.twitch.tv/"))
	assert.Len(t, jar.Cookies("https://accounts.nintendo.com"), 1)
}

func TestJarPathMatching(t *testing.T) {
	jar, err := Open("")
	require.NoError(t, err)
	require.NoError(t, jar.Put([]model.Cookie{{Name: "scoped", Value: "1", Domain: "amazon.com", Path: "/ap"}}))

	assert.Len(t, jar.Cookies("https://www.amazon.com/ap/signin"), 1)
	assert.Empty(t, jar.Cookies("https://www.amazon.com/home"))
}

type liveStub struct {
	cookies []model.Cookie
	removed []string
}

func (l *liveStub) Cookies(_ context.Context, _ ...string) ([]model.Cookie, error) {
	return l.cookies, nil
}

func (l *liveStub) SetCookies(_ context.Context, cookies []model.Cookie) error {
	l.cookies = append(l.cookies, cookies...)
	return nil
}

func (l *liveStub) RemoveCookies(_ context.Context, rawURL string) error {
	l.removed = append(l.removed, rawURL)
	l.cookies = nil
	return nil
}

func TestMirrorWritesThroughAndSeeds(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	jar, err := Open(path)
	require.NoError(t, err)

	live := &liveStub{}
	mirror := NewMirror(live, jar)
	require.NoError(t, mirror.SetCookies(ctx, []model.Cookie{{Name: "auth-token", Value: "abc", Domain: ".twitch.tv"}}))
	assert.Len(t, live.cookies, 1)
	assert.True(t, jar.HasCookies())

	fresh := &liveStub{}
	reopened, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, NewMirror(fresh, reopened).Seed(ctx))
	require.Len(t, fresh.cookies, 1)
	assert.Equal(t, "auth-token", fresh.cookies[0].Name)

	require.NoError(t, mirror.RemoveCookies(ctx, model.Twitch.ReferenceURL))
	assert.Equal(t, []string{model.Twitch.ReferenceURL}, live.removed)
	assert.False(t, jar.HasCookies())
}

func TestMirrorSyncReplacesPlatformCookies(t *testing.T) {
	ctx := context.Background()
	jar, err := Open("")
	require.NoError(t, err)
	require.NoError(t, jar.Put([]model.Cookie{{Name: "stale", Value: "1", Domain: ".twitch.tv"}}))

	live := &liveStub{cookies: []model.Cookie{{Name: "auth-token", Value: "new", Domain: ".twitch.tv"}}}
	require.NoError(t, NewMirror(live, jar).Sync(ctx, []model.Platform{model.Twitch}))

	got := jar.Cookies("https://www.twitch.tv/")
	require.Len(t, got, 1)
	assert.Equal(t, "auth-token", got[0].Name)
}
