package worker

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
)

// ClaimRegistry is the set of rewards being polled. It holds the wake lock
// exactly while the set is non-empty.
type ClaimRegistry struct {
	mu    sync.Mutex
	names map[string]struct{}
	lock  WakeLock
	log   *logger.ClassLogger
}

func NewClaimRegistry(lock WakeLock) *ClaimRegistry {
	r := &ClaimRegistry{
		names: make(map[string]struct{}),
		lock:  lock,
	}
	r.log = logger.NewLogger(r, nil)
	return r
}

// Begin registers name, acquiring the wake lock on the first entry.
func (r *ClaimRegistry) Begin(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; ok {
		return
	}
	first := len(r.names) == 0
	r.names[name] = struct{}{}
	if first && r.lock != nil {
		if err := r.lock.Acquire(); err != nil {
			r.log.JustLog(fmt.Sprintf("wake lock unavailable: %v", err))
		}
	}
	r.log.JustLog(fmt.Sprintf("Current campaigns: %v", r.sortedLocked()))
}

// End removes name and reports whether that emptied the registry. Names
// that were never registered are ignored.
func (r *ClaimRegistry) End(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; !ok {
		return false
	}
	delete(r.names, name)
	r.log.JustLog(fmt.Sprintf("Current campaigns: %v", r.sortedLocked()))
	if len(r.names) > 0 {
		return false
	}
	if r.lock != nil {
		if err := r.lock.Release(); err != nil {
			r.log.JustLog(fmt.Sprintf("wake lock release failed: %v", err))
		}
	}
	return true
}

func (r *ClaimRegistry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.names[name]
	return ok
}

func (r *ClaimRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

func (r *ClaimRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedLocked()
}

func (r *ClaimRegistry) sortedLocked() []string {
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
