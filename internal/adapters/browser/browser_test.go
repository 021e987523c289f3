package browser

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPage struct {
	response string
	err      error
	scripts  []string
}

func (p *scriptedPage) Evaluate(_ context.Context, script string, out any) error {
	p.scripts = append(p.scripts, script)
	if p.err != nil {
		return p.err
	}
	return json.Unmarshal([]byte(p.response), out)
}

func TestWaitForDecodesValue(t *testing.T) {
	page := &scriptedPage{response: `{"__value": {"count": 3}}`}
	var out struct {
		Count int `json:"count"`
	}

	err := WaitFor(context.Background(), page, Probe{Body: "return {count: 3};"}, WaitSpec{Quiet: time.Second, Limit: time.Minute}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)

	require.Len(t, page.scripts, 1)
	assert.Contains(t, page.scripts[0], "const quiet = 1000, limit = 60000;")
	assert.Contains(t, page.scripts[0], "return {count: 3};")
	assert.Contains(t, page.scripts[0], "new MutationObserver(schedule)")
}

func TestWaitForTimeout(t *testing.T) {
	page := &scriptedPage{response: `{"__timeout": true}`}
	err := WaitFor(context.Background(), page, Probe{Body: "return null;"}, WaitSpec{Limit: time.Second}, nil)
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestWaitForScriptError(t *testing.T) {
	page := &scriptedPage{response: `{"__error": "boom is not defined"}`}
	err := WaitFor(context.Background(), page, Probe{Body: "boom();"}, WaitSpec{Limit: time.Second}, nil)

	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, "boom is not defined", scriptErr.Message)
}

func TestWaitForPropagatesEvaluateFailure(t *testing.T) {
	page := &scriptedPage{err: context.Canceled}
	err := WaitFor(context.Background(), page, Probe{Body: "return 1;"}, WaitSpec{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitScriptPlacesSetupBeforeProbe(t *testing.T) {
	script := waitScript(Probe{Setup: "const start = location.href;", Body: "return start;"}, WaitSpec{})
	assert.Less(t, strings.Index(script, "const start"), strings.Index(script, "const probe"))
	assert.Contains(t, script, "const quiet = 0, limit = 0;")
}

func TestDiffCookies(t *testing.T) {
	seen := make(map[string]model.Cookie)

	first := diffCookies(seen, []model.Cookie{{Name: "a", Value: "1", Domain: ".twitch.tv", Path: "/"}})
	require.Len(t, first, 1)
	assert.False(t, first[0].Removed)

	assert.Empty(t, diffCookies(seen, []model.Cookie{{Name: "a", Value: "1", Domain: ".twitch.tv", Path: "/"}}))

	changed := diffCookies(seen, []model.Cookie{
		{Name: "a", Value: "2", Domain: ".twitch.tv", Path: "/"},
		{Name: "auth-token", Value: "tok", Domain: ".twitch.tv", Path: "/"},
	})
	assert.Len(t, changed, 2)

	removed := diffCookies(seen, []model.Cookie{{Name: "auth-token", Value: "tok", Domain: ".twitch.tv", Path: "/"}})
	require.Len(t, removed, 1)
	assert.True(t, removed[0].Removed)
	assert.Equal(t, "a", removed[0].Cookie.Name)
}

func TestCookieConversionRoundTrip(t *testing.T) {
	expires := time.Unix(1893456000, 0)
	param := toCookieParam(model.Cookie{Name: "x-main", Value: "v", Domain: ".amazon.com", Expires: expires, Secure: true})
	assert.Equal(t, "/", param.Path)
	require.NotNil(t, param.Expires)
	assert.True(t, param.Expires.Time().Equal(expires))

	back := fromNetworkCookie(&network.Cookie{Name: "x-main", Value: "v", Domain: ".amazon.com", Path: "/", Expires: 1893456000})
	assert.True(t, back.Expires.Equal(expires))

	session := fromNetworkCookie(&network.Cookie{Name: "s", Session: true, Expires: -1})
	assert.True(t, session.Expires.IsZero())
}

func TestCookieQueryScopesToURLs(t *testing.T) {
	urls := []string{"https://www.twitch.tv", "https://gaming.amazon.com"}
	assert.Equal(t, urls, cookieQuery(urls).Urls)
	assert.Empty(t, cookieQuery(nil).Urls)
}
