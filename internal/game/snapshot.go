package game

// Snapshot is a read-only view of a session published after every handled
// event. Ground truth is withheld while it would give the answer away: the
// arrow direction before the window opens, the scan targets once the flash
// sequence ends and the striker action until feedback.
type Snapshot struct {
	SessionID string `json:"session_id"`
	Game      Kind   `json:"game"`
	Seq       uint64 `json:"seq"`
	Phase     Phase  `json:"phase"`

	Trial     int `json:"trial"`
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Score     int `json:"score"`
	Streak    int `json:"streak"`

	Countdown int        `json:"countdown,omitempty"`
	Spec      *TrialSpec `json:"spec,omitempty"`
	Scenario  *Scenario  `json:"scenario,omitempty"`
	Highlight *int       `json:"highlight,omitempty"`
	Selection *CellSet   `json:"selection,omitempty"`
	Required  int        `json:"required,omitempty"`

	// Time left in the response window.
	RemainingMS *int64 `json:"remaining_ms,omitempty"`
	WindowMS    int64  `json:"window_ms,omitempty"`

	Last    *Outcome `json:"last,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		Game:      s.cfg.Kind,
		Seq:       s.seq,
		Phase:     s.state.Phase(),
		Trial:     s.trial,
		Total:     s.cfg.TotalTrials,
		Completed: len(s.trials),
		Score:     s.score,
		Streak:    s.streak,
		WindowMS:  s.cfg.ResponseWindow.Milliseconds(),
	}
	if n := len(s.trials); n > 0 {
		last := s.trials[n-1]
		snap.Last = &last
	}

	switch st := s.state.(type) {
	case Countdown:
		snap.Countdown = st.Remaining

	case StimulusPending:
		if s.cfg.Kind == KindScan {
			snap.Required = s.spec.Targets.Len()
			if st.Highlight >= 0 {
				h := st.Highlight
				snap.Highlight = &h
			}
		}

	case ResponseOpen:
		if !st.Deadline.IsZero() {
			left := st.Deadline.Sub(s.clock.Now()).Milliseconds()
			if left < 0 {
				left = 0
			}
			snap.RemainingMS = &left
		}
		switch s.cfg.Kind {
		case KindArrow:
			spec := s.spec
			snap.Spec = &spec
		case KindScan:
			sel := st.Selection
			snap.Selection = &sel
			snap.Required = s.spec.Targets.Len()
		case KindStriker:
			spec := TrialSpec{Kind: KindStriker, Scenario: s.spec.Scenario}
			snap.Spec = &spec
			sc := s.catalog[s.spec.Scenario].Public()
			snap.Scenario = &sc
		}

	case Feedback:
		spec := s.spec
		snap.Spec = &spec
		if s.cfg.Kind == KindStriker {
			sc := s.catalog[s.spec.Scenario]
			snap.Scenario = &sc
		}

	case Terminal:
		sum := st.Summary
		snap.Summary = &sum
	}

	return snap
}
