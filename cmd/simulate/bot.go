package main

import (
	"errors"
	mrand "math/rand/v2"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"reflex_drills/internal/game"
)

var errStuck = errors.New("session stopped making progress")

// bot plays a session on a manual clock. It answers correctly with
// probability accuracy after a reaction time drawn from
// [reaction-spread, reaction+spread].
type bot struct {
	accuracy float64
	reaction time.Duration
	spread   time.Duration
	rng      *mrand.Rand

	catalog map[string]game.Action

	flashed  []int
	last     game.Snapshot
	answered int
	plan     *plan
}

type plan struct {
	trial  int
	wait   time.Duration
	inputs []game.Input
}

func newBot(seed uint64, accuracy float64, reaction, spread time.Duration, catalog []game.Scenario) *bot {
	answers := make(map[string]game.Action, len(catalog))
	for _, s := range catalog {
		answers[s.ID] = s.Action
	}
	return &bot{
		accuracy: accuracy,
		reaction: reaction,
		spread:   spread,
		rng:      mrand.New(mrand.NewPCG(seed, seed+1)),
		catalog:  answers,
	}
}

// observe runs inside session callbacks, so it only plans; play sends.
func (b *bot) observe(s game.Snapshot) {
	b.last = s
	switch s.Phase {
	case game.PhaseCountdown:
		b.flashed = b.flashed[:0]
	case game.PhaseStimulusPending:
		if s.Highlight != nil && !contains(b.flashed, *s.Highlight) {
			b.flashed = append(b.flashed, *s.Highlight)
		}
	case game.PhaseFeedback:
		b.flashed = b.flashed[:0]
	case game.PhaseResponseOpen:
		if b.answered == s.Trial {
			return
		}
		b.answered = s.Trial
		b.plan = &plan{trial: s.Trial, wait: b.reactionTime(), inputs: b.answer(s)}
	}
}

func (b *bot) reactionTime() time.Duration {
	d := b.reaction
	if b.spread > 0 {
		d += time.Duration(b.rng.Int64N(int64(2*b.spread)+1)) - b.spread
	}
	return max(d, time.Millisecond)
}

func (b *bot) right() bool {
	return b.rng.Float64() < b.accuracy
}

func (b *bot) answer(s game.Snapshot) []game.Input {
	switch s.Game {
	case game.KindArrow:
		if s.Spec == nil {
			return nil
		}
		d := s.Spec.Direction
		if !b.right() {
			d = game.Directions[(indexOf(game.Directions, d)+1+b.rng.IntN(3))%len(game.Directions)]
		}
		return []game.Input{game.DirectionInput(d)}

	case game.KindScan:
		picks := make([]int, 0, s.Required)
		for _, cell := range b.flashed {
			if len(picks) == s.Required {
				break
			}
			if b.right() {
				picks = append(picks, cell)
			}
		}
		for len(picks) < s.Required {
			cell := b.rng.IntN(game.GridCells)
			if !contains(picks, cell) {
				picks = append(picks, cell)
			}
		}
		inputs := make([]game.Input, 0, len(picks))
		for _, cell := range picks {
			inputs = append(inputs, game.CellInput(cell))
		}
		return inputs

	case game.KindStriker:
		if s.Scenario == nil {
			return nil
		}
		a := b.catalog[s.Scenario.ID]
		if !b.right() {
			a = other(a)
		}
		return []game.Input{game.ActionInput(a)}
	}
	return nil
}

// play starts s and drives clock until the session is terminal.
func (b *bot) play(s *game.Session, clock *game.ManualClock) (game.Summary, error) {
	if err := s.Start(); err != nil {
		return game.Summary{}, err
	}

	for {
		if sum, ok := s.Summary(); ok {
			return sum, nil
		}

		due, hasDue := clock.NextDue()
		if p := b.plan; p != nil {
			if b.last.Trial != p.trial || b.last.Phase != game.PhaseResponseOpen {
				b.plan = nil
				continue
			}
			if !hasDue || due >= p.wait {
				clock.Advance(p.wait)
				b.plan = nil
				for _, in := range p.inputs {
					s.Input(in)
				}
				continue
			}
			p.wait -= due
		}

		if !hasDue {
			return game.Summary{}, goerr.Wrap(errStuck, "no pending timer", goerr.V("phase", s.State().Phase()))
		}
		clock.Advance(due)
	}
}

func other(a game.Action) game.Action {
	if a == game.Shoot {
		return game.Pass
	}
	return game.Shoot
}

func contains(cells []int, cell int) bool {
	for _, c := range cells {
		if c == cell {
			return true
		}
	}
	return false
}

func indexOf(ds []game.Direction, d game.Direction) int {
	for i, x := range ds {
		if x == d {
			return i
		}
	}
	return 0
}
