package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryHoldsLockWhileNonEmpty(t *testing.T) {
	lock := &fakeLock{}
	r := NewClaimRegistry(lock)

	r.Begin("Skin A")
	r.Begin("Skin B")
	r.Begin("Skin A")
	held, acquired, _ := lock.state()
	assert.True(t, held)
	assert.Equal(t, 1, acquired)
	assert.Equal(t, []string{"Skin A", "Skin B"}, r.Names())

	assert.False(t, r.End("Skin A"))
	assert.False(t, r.End("Unknown"))
	held, _, released := lock.state()
	assert.True(t, held)
	assert.Zero(t, released)

	assert.True(t, r.End("Skin B"))
	held, _, released = lock.state()
	assert.False(t, held)
	assert.Equal(t, 1, released)
	assert.False(t, r.End("Skin B"))

	r.Begin("Skin C")
	_, acquired, _ = lock.state()
	assert.Equal(t, 2, acquired)
	assert.True(t, r.Has("Skin C"))
}

func TestRegistryWithoutLock(t *testing.T) {
	r := NewClaimRegistry(nil)
	r.Begin("Skin A")
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.End("Skin A"))
}
