package game

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCatalog alternates shoot and pass so both answers get exercised.
func testCatalog(n int) []Scenario {
	out := make([]Scenario, n)
	for i := range out {
		action := Shoot
		if i%2 == 1 {
			action = Pass
		}
		out[i] = Scenario{
			ID:        fmt.Sprintf("s%02d", i+1),
			Player:    Position{X: 50, Y: 70},
			Defenders: []Position{{X: 40 + float64(i), Y: 50}},
			Teammates: []Position{{X: 30, Y: 65}},
			Action:    action,
			Reasoning: fmt.Sprintf("reason %d", i+1),
		}
	}
	return out
}

type recorder struct {
	snaps []Snapshot
	stale []string
}

func (r *recorder) observe(s Snapshot) { r.snaps = append(r.snaps, s) }

func (r *recorder) last() Snapshot { return r.snaps[len(r.snaps)-1] }

func newTestSession(t *testing.T, cfg Config, opts ...Option) (*Session, *ManualClock, *recorder) {
	t.Helper()

	clock := NewManualClock(epoch)
	rec := &recorder{}
	base := []Option{
		WithClock(clock),
		WithRand(NewSeededRand(7)),
		WithLogger(quietLogger()),
		WithObserver(rec.observe),
		WithCatalog(testCatalog(12)),
		WithHooks(Hooks{OnStale: func(_ Kind, reason string) { rec.stale = append(rec.stale, reason) }}),
	}
	s, err := NewSession(cfg, append(base, opts...)...)
	require.NoError(t, err)
	return s, clock, rec
}

// advanceToNext moves the clock onto the next pending callback.
func advanceToNext(t *testing.T, clock *ManualClock) time.Duration {
	t.Helper()
	d, ok := clock.NextDue()
	require.True(t, ok, "no timer pending")
	clock.Advance(d)
	return d
}

func phaseOf(s *Session) Phase { return s.State().Phase() }

func otherDirection(d Direction) Direction {
	for _, o := range Directions {
		if o != d {
			return o
		}
	}
	return d
}
