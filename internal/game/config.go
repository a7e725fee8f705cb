package game

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Config is the tuning of one drill. Durations are written as Go duration
// strings in YAML ("1500ms").
type Config struct {
	Kind        Kind `json:"kind" yaml:"kind"`
	TotalTrials int  `json:"total_trials" yaml:"total_trials"`

	CountdownTicks  int           `json:"countdown_ticks" yaml:"countdown_ticks"`
	CountdownPeriod time.Duration `json:"countdown_period" yaml:"countdown_period"`

	// Pre-stimulus delay, drawn per trial from [JitterMin, JitterMax].
	JitterMin time.Duration `json:"jitter_min" yaml:"jitter_min"`
	JitterMax time.Duration `json:"jitter_max" yaml:"jitter_max"`

	// ResponseWindow bounds the response_open phase. Zero leaves it open
	// until the player answers.
	ResponseWindow time.Duration `json:"response_window" yaml:"response_window"`
	FeedbackDwell  time.Duration `json:"feedback_dwell" yaml:"feedback_dwell"`

	// Scan only.
	Universe    int                `json:"universe,omitempty" yaml:"universe"`
	FlashStep   time.Duration      `json:"flash_step,omitempty" yaml:"flash_step"`
	SubmitDelay time.Duration      `json:"submit_delay,omitempty" yaml:"submit_delay"`
	Schedule    DifficultySchedule `json:"schedule,omitempty" yaml:"schedule"`

	// ClampScore keeps the running score at or above zero.
	ClampScore bool `json:"clamp_score" yaml:"clamp_score"`

	Scoring Scoring    `json:"scoring" yaml:"scoring"`
	Tiers   TierPolicy `json:"tiers" yaml:"tiers"`
}

// DifficultyStep applies from trial FromTrial (1-based) until the next step.
type DifficultyStep struct {
	FromTrial   int           `json:"from_trial" yaml:"from_trial"`
	Targets     int           `json:"targets" yaml:"targets"`
	RecallDelay time.Duration `json:"recall_delay" yaml:"recall_delay"`
}

type DifficultySchedule []DifficultyStep

// At returns the difficulty of the given 1-based trial.
func (s DifficultySchedule) At(trial int) (Difficulty, bool) {
	var (
		d  Difficulty
		ok bool
	)
	for _, step := range s {
		if step.FromTrial <= trial {
			d = Difficulty{Targets: step.Targets, RecallDelay: step.RecallDelay}
			ok = true
		}
	}
	return d, ok
}

// DefaultConfig returns the tuning the drills ship with.
func DefaultConfig(kind Kind) Config {
	switch kind {
	case KindArrow:
		return Config{
			Kind:            KindArrow,
			TotalTrials:     20,
			CountdownTicks:  3,
			CountdownPeriod: ms(1000),
			JitterMin:       ms(800),
			JitterMax:       ms(1500),
			ResponseWindow:  ms(2000),
			FeedbackDwell:   ms(400),
			Scoring:         DefaultScoring(),
			Tiers: TierPolicy{
				Metric: MetricLatency,
				Tiers: []Tier{
					{Label: "Pro reflexes", Below: ms(200)},
					{Label: "First-team ready", Below: ms(250)},
					{Label: "Training needed", Below: ms(300)},
				},
				Fallback: "Work on reaction drills",
			},
		}
	case KindScan:
		return Config{
			Kind:            KindScan,
			TotalTrials:     10,
			CountdownTicks:  1,
			CountdownPeriod: ms(1000),
			ResponseWindow:  ms(8000),
			FeedbackDwell:   ms(1200),
			Universe:        GridCells,
			FlashStep:       ms(300),
			SubmitDelay:     ms(500),
			Schedule: DifficultySchedule{
				{FromTrial: 1, Targets: 2, RecallDelay: ms(1500)},
				{FromTrial: 4, Targets: 3, RecallDelay: ms(1200)},
				{FromTrial: 7, Targets: 4, RecallDelay: ms(1000)},
			},
			Scoring: DefaultScoring(),
			Tiers: TierPolicy{
				Metric: MetricAccuracy,
				Tiers: []Tier{
					{Label: "Elite", AtLeast: 80},
					{Label: "Solid", AtLeast: 60},
				},
				Fallback: "Keep practicing",
			},
		}
	case KindStriker:
		return Config{
			Kind:           KindStriker,
			TotalTrials:    12,
			ResponseWindow: ms(1200),
			FeedbackDwell:  ms(1500),
			ClampScore:     true,
			Scoring:        DefaultScoring(),
			Tiers: TierPolicy{
				Metric: MetricAccuracy,
				Tiers: []Tier{
					{Label: "Elite", AtLeast: 80},
					{Label: "Solid", AtLeast: 60},
				},
				Fallback: "Keep practicing",
			},
		}
	}
	return Config{Kind: kind}
}

// Validate rejects configurations a session cannot run. catalogSize is
// only consulted by the striker drill.
func (c Config) Validate(catalogSize int) error {
	invalid := func(msg string, opts ...goerr.Option) error {
		return goerr.Wrap(ErrInvalidConfig, msg, append(opts, goerr.V("kind", c.Kind))...)
	}

	if _, ok := ParseKind(string(c.Kind)); !ok {
		return goerr.Wrap(ErrUnknownGame, "unsupported game kind", goerr.V("kind", c.Kind))
	}
	if c.TotalTrials <= 0 {
		return invalid("total trials must be positive", goerr.V("total_trials", c.TotalTrials))
	}
	if c.CountdownTicks < 0 || (c.CountdownTicks > 0 && c.CountdownPeriod <= 0) {
		return invalid("countdown needs a positive period", goerr.V("ticks", c.CountdownTicks), goerr.V("period", c.CountdownPeriod))
	}
	if c.JitterMin < 0 || c.JitterMax < c.JitterMin {
		return invalid("jitter interval is empty", goerr.V("min", c.JitterMin), goerr.V("max", c.JitterMax))
	}
	if c.ResponseWindow < 0 || c.FeedbackDwell < 0 {
		return invalid("durations must not be negative")
	}
	if err := c.Tiers.validate(); err != nil {
		return invalid(err.Error())
	}

	switch c.Kind {
	case KindScan:
		if c.Universe <= 0 || c.Universe > GridCells {
			return invalid("grid universe out of range", goerr.V("universe", c.Universe))
		}
		if c.FlashStep <= 0 {
			return invalid("flash step must be positive", goerr.V("flash_step", c.FlashStep))
		}
		if c.SubmitDelay < 0 {
			return invalid("submit delay must not be negative")
		}
		if _, ok := c.Schedule.At(1); !ok {
			return invalid("difficulty schedule does not cover the first trial")
		}
		for _, step := range c.Schedule {
			if step.Targets <= 0 || step.Targets > c.Universe {
				return invalid("target count exceeds the grid",
					goerr.V("targets", step.Targets), goerr.V("universe", c.Universe))
			}
			if step.RecallDelay < 0 {
				return invalid("recall delay must not be negative")
			}
		}
	case KindStriker:
		if catalogSize == 0 {
			return invalid("scenario catalog is empty")
		}
		if c.TotalTrials > catalogSize {
			return invalid("more trials than scenarios",
				goerr.V("total_trials", c.TotalTrials), goerr.V("catalog", catalogSize))
		}
	}

	return nil
}
