package game

import "time"

// Handle identifies a scheduled phase timer.
type Handle uint64

// PhaseTimer schedules the delayed transitions of one session. It is not
// safe for concurrent use: the session's clock delivers callbacks on the
// session goroutine.
//
// Cancel is idempotent. Canceling a fired, canceled or unknown handle does
// nothing, and a canceled callback never runs.
type PhaseTimer struct {
	clock Clock
	next  Handle
	live  map[Handle]Stopper
}

func NewPhaseTimer(clock Clock) *PhaseTimer {
	return &PhaseTimer{
		clock: clock,
		live:  make(map[Handle]Stopper),
	}
}

// Schedule runs fn once after d.
func (t *PhaseTimer) Schedule(d time.Duration, fn func()) Handle {
	t.next++
	h := t.next

	t.live[h] = t.clock.AfterFunc(d, func() {
		if _, ok := t.live[h]; !ok {
			return
		}
		delete(t.live, h)
		fn()
	})

	return h
}

// Tick runs onTick every period with the number of periods still to go and
// onComplete once count periods have elapsed. The whole run shares one
// handle.
func (t *PhaseTimer) Tick(period time.Duration, count int, onTick func(remaining int), onComplete func()) Handle {
	t.next++
	h := t.next

	var arm func(left int)
	arm = func(left int) {
		t.live[h] = t.clock.AfterFunc(period, func() {
			if _, ok := t.live[h]; !ok {
				return
			}
			left--
			if left > 0 {
				if onTick != nil {
					onTick(left)
				}
				// onTick may have canceled the run
				if _, ok := t.live[h]; ok {
					arm(left)
				}
				return
			}
			delete(t.live, h)
			if onComplete != nil {
				onComplete()
			}
		})
	}

	if count <= 0 {
		count = 1
		period = 0
	}
	arm(count)

	return h
}

func (t *PhaseTimer) Cancel(h Handle) {
	s, ok := t.live[h]
	if !ok {
		return
	}
	delete(t.live, h)
	s.Stop()
}

// CancelAll cancels every pending timer.
func (t *PhaseTimer) CancelAll() {
	for h, s := range t.live {
		delete(t.live, h)
		s.Stop()
	}
}

// Active reports whether h is still pending.
func (t *PhaseTimer) Active(h Handle) bool {
	_, ok := t.live[h]
	return ok
}

// Pending reports how many timers are scheduled.
func (t *PhaseTimer) Pending() int {
	return len(t.live)
}
