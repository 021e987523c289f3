package wakelock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCounting() (*Inhibitor, *int, *int) {
	acquired, released := 0, 0
	i := New()
	i.inhibit = func() (func() error, error) {
		acquired++
		return func() error {
			released++
			return nil
		}, nil
	}
	return i, &acquired, &released
}

func TestAcquireReleaseAreIdempotent(t *testing.T) {
	i, acquired, released := newCounting()

	require.NoError(t, i.Acquire())
	require.NoError(t, i.Acquire())
	assert.True(t, i.Held())
	assert.Equal(t, 1, *acquired)

	require.NoError(t, i.Release())
	require.NoError(t, i.Release())
	assert.False(t, i.Held())
	assert.Equal(t, 1, *released)
}

func TestAcquireFailureLeavesUnheld(t *testing.T) {
	i := New()
	i.inhibit = func() (func() error, error) { return nil, errors.New("no inhibitor") }

	err := i.Acquire()
	assert.ErrorContains(t, err, "no inhibitor")
	assert.False(t, i.Held())
	assert.NoError(t, i.Release())
}
