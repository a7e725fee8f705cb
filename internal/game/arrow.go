package game

// arrowRules: a jittered wait, then one directional press. A press during
// the wait ends the trial at once as a premature failure.
type arrowRules struct{}

func (arrowRules) kind() Kind { return KindArrow }

func (arrowRules) enterPending(s *Session) {
	s.after(uniformDuration(s.rng, s.cfg.JitterMin, s.cfg.JitterMax), s.openWindow)
}

func (arrowRules) pendingInput(s *Session, in Input) bool {
	if in.Direction == "" {
		return false
	}
	s.resolve(Response{Direction: in.Direction}, s.cfg.Scoring.PrematureBase, true)
	return true
}

func (arrowRules) openInput(s *Session, in Input) bool {
	if in.Direction == "" {
		return false
	}
	s.resolve(Response{Direction: in.Direction}, s.elapsed(in), false)
	return true
}

func (arrowRules) expire(s *Session) {
	s.resolve(NoResponse, 0, false)
}
