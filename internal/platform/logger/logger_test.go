package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitReturnsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := NewNamed("Test", nil).Wait(ctx, "waiting", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.ErrorIs(t, NewNamed("Test", nil).Wait(ctx, "waiting", 0), context.Canceled)
}

func TestWaitCompletes(t *testing.T) {
	start := time.Now()
	assert.NoError(t, NewNamed("Test", nil).Wait(context.Background(), "waiting", 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
