package game

import "time"

type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseCountdown       Phase = "countdown"
	PhaseStimulusPending Phase = "stimulus_pending"
	PhaseResponseOpen    Phase = "response_open"
	PhaseFeedback        Phase = "feedback"
	PhaseTerminal        Phase = "terminal"
)

// State is the current phase of a session together with the data only that
// phase carries.
type State interface {
	Phase() Phase
	isState()
}

type Idle struct{}

type Countdown struct {
	Remaining int
}

// StimulusPending is the pre-stimulus delay. Highlight is the scan cell
// currently lit, or -1.
type StimulusPending struct {
	Highlight int
}

// ResponseOpen holds the response window. Deadline is zero when the window
// has no time limit. Selection accumulates scan cells.
type ResponseOpen struct {
	OpenedAt  time.Time
	Deadline  time.Time
	Selection CellSet
}

type Feedback struct {
	Outcome Outcome
}

type Terminal struct {
	Summary Summary
}

func (Idle) Phase() Phase            { return PhaseIdle }
func (Countdown) Phase() Phase       { return PhaseCountdown }
func (StimulusPending) Phase() Phase { return PhaseStimulusPending }
func (ResponseOpen) Phase() Phase    { return PhaseResponseOpen }
func (Feedback) Phase() Phase        { return PhaseFeedback }
func (Terminal) Phase() Phase        { return PhaseTerminal }

func (Idle) isState()            {}
func (Countdown) isState()       {}
func (StimulusPending) isState() {}
func (ResponseOpen) isState()    {}
func (Feedback) isState()        {}
func (Terminal) isState()        {}
