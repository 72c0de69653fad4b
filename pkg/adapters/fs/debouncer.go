package fs

import (
	"sync"
	"time"

	"github.com/monodeaf/notemode/pkg/core"
)

// debouncer coalesces bursts of events per key. An atomic save produces
// several raw notifications; consumers should see one.
type debouncer struct {
	wait time.Duration

	mu      sync.Mutex
	stopped bool
	timers  map[string]*time.Timer
	pending map[string]core.Event
	wg      sync.WaitGroup
}

func newDebouncer(wait time.Duration) *debouncer {
	return &debouncer{
		wait:    wait,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]core.Event),
	}
}

// add schedules fn for the latest event of key once the key has been quiet
// for the wait period. A pending CREATE is not downgraded by a MODIFY.
func (d *debouncer) add(key string, e core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if prev, ok := d.pending[key]; ok && prev.Type == core.EventCreate && e.Type == core.EventModify {
		e.Type = core.EventCreate
	}
	d.pending[key] = e

	// A timer that already fired is blocked on mu and will deliver e itself;
	// the replacement then finds nothing pending.
	if t, ok := d.timers[key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	d.timers[key] = time.AfterFunc(d.wait, func() {
		defer d.wg.Done()

		d.mu.Lock()
		ev, ok := d.pending[key]
		delete(d.pending, key)
		delete(d.timers, key)
		d.mu.Unlock()

		if ok {
			fn(ev)
		}
	})
}

// stopAndWait drops pending events and waits for callbacks already running.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	clear(d.pending)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
