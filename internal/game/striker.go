package game

// strikerRules: the scenario is shown immediately and the first shoot or
// pass inside the window decides the trial.
type strikerRules struct{}

func (strikerRules) kind() Kind { return KindStriker }

func (strikerRules) enterPending(s *Session) {
	s.openWindow()
}

func (strikerRules) pendingInput(*Session, Input) bool { return false }

func (strikerRules) openInput(s *Session, in Input) bool {
	if in.Action == "" {
		return false
	}
	s.resolve(Response{Action: in.Action}, s.elapsed(in), false)
	return true
}

func (strikerRules) expire(s *Session) {
	s.resolve(NoResponse, 0, false)
}
