package game

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"reflex_drills/internal/logger"
)

// Hooks observe what a session does. Every hook runs on the session
// goroutine and must not block.
type Hooks struct {
	OnOutcome  func(kind Kind, o Outcome)
	OnComplete func(kind Kind, s Summary)
	OnStale    func(kind Kind, reason string)
}

type Option func(*Session)

func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

func WithRand(r Rand) Option { return func(s *Session) { s.rng = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.log = l } }

// WithObserver registers fn to receive a snapshot after every handled event.
func WithObserver(fn func(Snapshot)) Option { return func(s *Session) { s.observer = fn } }

// WithCatalog supplies the striker scenarios.
func WithCatalog(scenarios []Scenario) Option {
	return func(s *Session) { s.catalog = scenarios }
}

func WithID(id string) Option { return func(s *Session) { s.id = id } }

func WithHooks(h Hooks) Option { return func(s *Session) { s.hooks = h } }

// Session is the state machine of one game. It is not safe for concurrent
// use; Loop hosts it on a single goroutine.
type Session struct {
	id       string
	cfg      Config
	rules    rules
	clock    Clock
	rng      Rand
	log      *slog.Logger
	catalog  []Scenario
	observer func(Snapshot)
	hooks    Hooks

	timer   *PhaseTimer
	gen     uint64
	stimuli Generator

	state   State
	trial   int
	spec    TrialSpec
	hasSpec bool
	score   int
	streak  int
	trials  []Outcome
	submit  Handle
	held    *capture
	seq     uint64
	closed  bool
}

// NewSession validates cfg and returns an idle session.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:   cfg,
		rng:   CryptoRand(),
		state: Idle{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.log = s.log.With("session", s.id, "game", cfg.Kind)

	if s.clock == nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "session needs a clock")
	}
	if err := cfg.Validate(len(s.catalog)); err != nil {
		s.log.Warn("rejected game configuration", "error", err)
		return nil, err
	}

	r, err := newRules(cfg.Kind)
	if err != nil {
		return nil, err
	}
	s.rules = r
	s.timer = NewPhaseTimer(s.clock)

	return s, nil
}

func (s *Session) ID() string     { return s.id }
func (s *Session) Kind() Kind     { return s.cfg.Kind }
func (s *Session) Config() Config { return s.cfg }
func (s *Session) State() State   { return s.state }
func (s *Session) Score() int     { return s.score }

// Trials returns a copy of the trial log.
func (s *Session) Trials() []Outcome {
	out := make([]Outcome, len(s.trials))
	copy(out, s.trials)
	return out
}

// Summary returns the final summary once the session is terminal.
func (s *Session) Summary() (Summary, bool) {
	t, ok := s.state.(Terminal)
	return t.Summary, ok
}

// Start leaves idle and runs the countdown of the first trial.
func (s *Session) Start() error {
	if s.closed {
		return goerr.Wrap(ErrNotIdle, "session is closed", goerr.V("session", s.id))
	}
	if _, ok := s.state.(Idle); !ok {
		return goerr.Wrap(ErrNotIdle, "start outside idle",
			goerr.V("session", s.id), goerr.V("phase", s.state.Phase()))
	}

	stimuli, err := newGenerator(s.cfg, s.rng, s.catalog)
	if err != nil {
		return err
	}
	s.stimuli = stimuli

	s.log.Debug("session started", "total", s.cfg.TotalTrials)
	s.enterCountdown()
	s.publish()
	return nil
}

// Restart drops every timer and the trial log and starts over.
func (s *Session) Restart() error {
	if s.closed {
		return goerr.Wrap(ErrNotIdle, "session is closed", goerr.V("session", s.id))
	}
	s.reset()
	return s.Start()
}

// Close cancels every pending timer. A closed session ignores all events.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.reset()
	s.closed = true
	s.log.Debug("session closed")
}

// Input hands one player event to the current phase. It reports whether the
// event was accepted.
func (s *Session) Input(in Input) bool {
	if s.closed {
		return false
	}
	if in.At.IsZero() {
		in.At = s.clock.Now()
	}

	var accepted bool
	switch s.state.(type) {
	case StimulusPending:
		accepted = s.rules.pendingInput(s, in)
	case ResponseOpen:
		accepted = s.rules.openInput(s, in)
	}
	if !accepted {
		s.stale("input outside response window")
		return false
	}

	s.publish()
	return true
}

func (s *Session) reset() {
	s.timer.CancelAll()
	s.gen++
	s.state = Idle{}
	s.trial = 0
	s.spec = TrialSpec{}
	s.hasSpec = false
	s.score = 0
	s.streak = 0
	s.trials = nil
	s.submit = 0
	s.held = nil
	s.stimuli = nil
}

// transition leaves the current phase: its timers are canceled and any of
// its callbacks still in flight become stale.
func (s *Session) transition(next State) {
	s.timer.CancelAll()
	s.gen++
	s.log.Debug("phase", "from", s.state.Phase(), "to", next.Phase(), "trial", s.trial)
	s.state = next
}

// after schedules fn in the current phase.
func (s *Session) after(d time.Duration, fn func()) Handle {
	gen := s.gen
	return s.timer.Schedule(d, func() {
		if !s.current(gen) {
			return
		}
		fn()
		s.publish()
	})
}

// tick runs a periodic timer in the current phase.
func (s *Session) tick(period time.Duration, count int, onTick func(remaining int), onComplete func()) Handle {
	gen := s.gen
	return s.timer.Tick(period, count,
		func(remaining int) {
			if !s.current(gen) {
				return
			}
			onTick(remaining)
			s.publish()
		},
		func() {
			if !s.current(gen) {
				return
			}
			onComplete()
			s.publish()
		})
}

func (s *Session) current(gen uint64) bool {
	if s.closed || gen != s.gen {
		s.stale("timer from a finished phase")
		return false
	}
	return true
}

func (s *Session) stale(reason string) {
	s.log.Debug("stale event dropped", "reason", reason, "phase", s.state.Phase())
	if s.hooks.OnStale != nil {
		s.hooks.OnStale(s.cfg.Kind, reason)
	}
}

func (s *Session) enterCountdown() {
	if s.cfg.CountdownTicks <= 0 {
		s.beginTrial()
		return
	}
	s.transition(Countdown{Remaining: s.cfg.CountdownTicks})
	s.tick(s.cfg.CountdownPeriod, s.cfg.CountdownTicks,
		func(remaining int) { s.state = Countdown{Remaining: remaining} },
		s.beginTrial)
}

// beginTrial draws the next spec, or finishes the session once every trial
// has been played.
func (s *Session) beginTrial() {
	if s.trial >= s.cfg.TotalTrials {
		s.enterTerminal()
		return
	}

	var prev *TrialSpec
	if s.hasSpec {
		p := s.spec
		prev = &p
	}
	spec, err := s.stimuli.Next(prev, s.difficulty(s.trial+1))
	if err != nil {
		s.log.Error("stimulus generation failed", "error", err, "trial", s.trial+1)
		s.enterTerminal()
		return
	}

	s.trial++
	s.spec = spec
	s.hasSpec = true
	s.transition(StimulusPending{Highlight: -1})
	s.rules.enterPending(s)
}

func (s *Session) difficulty(trial int) Difficulty {
	if s.cfg.Kind != KindScan {
		return Difficulty{}
	}
	d, _ := s.cfg.Schedule.At(trial)
	return d
}

// openWindow starts the response window of the current trial.
func (s *Session) openWindow() {
	now := s.clock.Now()
	open := ResponseOpen{OpenedAt: now}
	if s.cfg.ResponseWindow > 0 {
		open.Deadline = now.Add(s.cfg.ResponseWindow)
	}
	s.transition(open)
	if s.cfg.ResponseWindow > 0 {
		s.after(s.cfg.ResponseWindow, func() { s.rules.expire(s) })
	}
}

// elapsed is the time from the window opening to the input.
func (s *Session) elapsed(in Input) time.Duration {
	open, ok := s.state.(ResponseOpen)
	if !ok {
		return 0
	}
	d := in.At.Sub(open.OpenedAt)
	if d < 0 {
		return 0
	}
	return d
}

// resolve records the outcome of the current trial and enters feedback.
func (s *Session) resolve(resp Response, elapsed time.Duration, premature bool) {
	s.held = nil
	out, err := s.cfg.Scoring.Evaluate(s.spec, resp, elapsed, premature, s.streak)
	if err != nil {
		s.log.Error("trial evaluation failed", "error", err, "trial", s.trial)
		out = Outcome{Spec: s.spec, Response: resp, TimedOut: resp.TimedOut}
	}
	out.Trial = s.trial

	s.streak = out.Streak
	s.score += out.Delta
	if s.cfg.ClampScore && s.score < 0 {
		s.score = 0
	}
	s.trials = append(s.trials, out)
	if s.hooks.OnOutcome != nil {
		s.hooks.OnOutcome(s.cfg.Kind, out)
	}

	s.transition(Feedback{Outcome: out})
	s.after(s.cfg.FeedbackDwell, s.beginTrial)
}

func (s *Session) enterTerminal() {
	sum := Summarize(s.trials, s.cfg.TotalTrials, s.cfg.Tiers)
	sum.Score = s.score
	s.transition(Terminal{Summary: sum})
	s.log.Debug("session complete", "correct", sum.Correct, "score", sum.Score, "tier", sum.Tier)
	if s.hooks.OnComplete != nil {
		s.hooks.OnComplete(s.cfg.Kind, sum)
	}
}

func (s *Session) publish() {
	s.seq++
	if s.observer != nil {
		s.observer(s.Snapshot())
	}
}
