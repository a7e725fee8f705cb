package game

import "time"

// scanRules: the targets flash one after another, then the grid opens for
// recall. Selecting the last required cell submits after a short delay
// unless a cell is deselected first.
type scanRules struct{}

func (scanRules) kind() Kind { return KindScan }

func (scanRules) enterPending(s *Session) {
	seq := s.spec.Sequence
	steps := 2 * len(seq)
	s.state = StimulusPending{Highlight: seq[0]}

	// Even steps light the next target, odd steps leave the grid dark.
	s.tick(s.cfg.FlashStep, steps,
		func(remaining int) {
			done := steps - remaining
			h := -1
			if done%2 == 0 {
				h = seq[done/2]
			}
			s.state = StimulusPending{Highlight: h}
		},
		func() {
			s.state = StimulusPending{Highlight: -1}
			delay := s.difficulty(s.trial).RecallDelay
			if delay <= 0 {
				s.openWindow()
				return
			}
			s.after(delay, s.openWindow)
		})
}

func (scanRules) pendingInput(*Session, Input) bool { return false }

func (scanRules) openInput(s *Session, in Input) bool {
	open := s.state.(ResponseOpen)

	if in.Submit {
		s.resolve(Response{Cells: open.Selection}, s.elapsed(in), false)
		return true
	}
	if !in.HasCell || in.Cell < 0 || in.Cell >= s.cfg.Universe {
		return false
	}

	if open.Selection.Has(in.Cell) {
		open.Selection = open.Selection.Remove(in.Cell)
		s.state = open
		s.timer.Cancel(s.submit)
		s.held = nil
		return true
	}

	required := s.spec.Targets.Len()
	if open.Selection.Len() >= required {
		return false
	}
	open.Selection = open.Selection.Add(in.Cell)
	s.state = open

	if open.Selection.Len() == required {
		elapsed := s.elapsed(in)
		resp := Response{Cells: open.Selection}
		if s.cfg.SubmitDelay <= 0 {
			s.resolve(resp, elapsed, false)
			return true
		}
		s.held = &capture{resp: resp, elapsed: elapsed}
		s.submit = s.after(s.cfg.SubmitDelay, func() { s.resolve(resp, elapsed, false) })
	}
	return true
}

// capture is a capped selection waiting on its auto-submit.
type capture struct {
	resp    Response
	elapsed time.Duration
}

// expire resolves a capped selection as answered when the window closes
// before its auto-submit fires.
func (scanRules) expire(s *Session) {
	if h := s.held; h != nil {
		s.resolve(h.resp, h.elapsed, false)
		return
	}
	open := s.state.(ResponseOpen)
	s.resolve(Response{Cells: open.Selection, TimedOut: true}, 0, false)
}
