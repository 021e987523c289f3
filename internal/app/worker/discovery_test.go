package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeCatalog(t *testing.T) {
	got := dedupeCatalog([]model.CatalogEntry{
		{Entity: "A", Item: "1"},
		{Entity: "B", Item: "2"},
		{Entity: "A", Item: "3"},
	})
	assert.Equal(t, []model.CatalogEntry{
		{Entity: "A", Item: "3"},
		{Entity: "B", Item: "2"},
	}, got)
}

func TestDiscoverClosesSurface(t *testing.T) {
	const listing = "https://example.test/list"
	b := newFakeBrowser(func(url, _ string) (string, error) {
		if url != listing {
			return "", fmt.Errorf("unexpected page %s", url)
		}
		return value([]string{"a", "b"}), nil
	})

	var out []string
	require.NoError(t, Discover(context.Background(), b, listing, browser.Probe{Body: "return [];"}, fastTiming().settle(), &out))
	assert.Equal(t, []string{"a", "b"}, out)
	assert.Zero(t, b.openSurfaces())
}

func TestDiscoverClassifiesFailures(t *testing.T) {
	b := newFakeBrowser(func(string, string) (string, error) { return waitTimeout, nil })
	err := Discover(context.Background(), b, "https://example.test", browser.Probe{}, browser.WaitSpec{}, nil)
	assert.ErrorIs(t, err, ErrExtractionTimeout)

	b = newFakeBrowser(func(string, string) (string, error) { return `{"__error":"x is undefined"}`, nil })
	err = Discover(context.Background(), b, "https://example.test", browser.Probe{}, browser.WaitSpec{}, nil)
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, "x is undefined", scriptErr.Message)
}
