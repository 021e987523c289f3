package wakelock

import (
	"fmt"
	"sync"

	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
)

// Inhibitor keeps the machine from sleeping while held.
type Inhibitor struct {
	mu      sync.Mutex
	release func() error
	inhibit func() (func() error, error)
	log     *logger.ClassLogger
}

func New() *Inhibitor {
	i := &Inhibitor{inhibit: inhibit}
	i.log = logger.NewLogger(i, nil)
	return i
}

// Acquire is a no-op while already held.
func (i *Inhibitor) Acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.release != nil {
		return nil
	}
	release, err := i.inhibit()
	if err != nil {
		return fmt.Errorf("acquire wake lock failed: %w", err)
	}
	i.release = release
	i.log.JustLog("Sleep inhibitor is active.")
	return nil
}

// Release is a no-op while not held.
func (i *Inhibitor) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.release == nil {
		return nil
	}
	release := i.release
	i.release = nil
	if err := release(); err != nil {
		return fmt.Errorf("release wake lock failed: %w", err)
	}
	i.log.JustLog("Sleep inhibitor is inactive.")
	return nil
}

func (i *Inhibitor) Held() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.release != nil
}
