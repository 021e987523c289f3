package app

import (
	"sync"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/ui"
)

// eventBus queues core events for the presenter. Events emitted after stop
// are dropped.
type eventBus struct {
	ch       chan model.Event
	done     chan struct{}
	stopOnce sync.Once
}

func newEventBus(size int) *eventBus {
	return &eventBus{
		ch:   make(chan model.Event, size),
		done: make(chan struct{}),
	}
}

func (b *eventBus) Emit(ev model.Event) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.ch <- ev:
	case <-b.done:
	}
}

func (b *eventBus) present() {
	ui.Present(b.ch, b.done)
}

func (b *eventBus) stop() {
	b.stopOnce.Do(func() { close(b.done) })
}
