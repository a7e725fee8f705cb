package game

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Response is what the player answered. A zero Response with TimedOut set
// is the "no response" of an expired window; the scan drill keeps its
// partial selection in Cells.
type Response struct {
	Direction Direction `json:"direction,omitempty"`
	Cells     CellSet   `json:"cells,omitempty"`
	Action    Action    `json:"action,omitempty"`
	TimedOut  bool      `json:"timed_out,omitempty"`
}

// NoResponse is the answer recorded when a window expires untouched.
var NoResponse = Response{TimedOut: true}

// Outcome is the immutable result of one trial.
type Outcome struct {
	Trial      int           `json:"trial"`
	Spec       TrialSpec     `json:"spec"`
	Response   Response      `json:"response"`
	Latency    time.Duration `json:"-"`
	HasLatency bool          `json:"-"`
	Correct    bool          `json:"correct"`
	Premature  bool          `json:"premature,omitempty"`
	TimedOut   bool          `json:"timed_out,omitempty"`
	Delta      int           `json:"delta"`
	Streak     int           `json:"streak"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	type plain Outcome
	var latency *int64
	if o.HasLatency {
		v := o.Latency.Milliseconds()
		latency = &v
	}
	return json.Marshal(struct {
		plain
		LatencyMS *int64 `json:"latency_ms"`
	}{plain: plain(o), LatencyMS: latency})
}

// Scoring holds every constant the evaluator applies.
type Scoring struct {
	WrongDirectionPenalty time.Duration `json:"wrong_direction_penalty" yaml:"wrong_direction_penalty"`
	PrematurePenalty      time.Duration `json:"premature_penalty" yaml:"premature_penalty"`
	// PrematureBase stands in for the elapsed time of a press made before
	// the stimulus was shown.
	PrematureBase    time.Duration `json:"premature_base" yaml:"premature_base"`
	DirectionCorrect int           `json:"direction_correct" yaml:"direction_correct"`

	CellHit      int `json:"cell_hit" yaml:"cell_hit"`
	CellMiss     int `json:"cell_miss" yaml:"cell_miss"`
	PerfectBonus int `json:"perfect_bonus" yaml:"perfect_bonus"`

	DecisionCorrect int `json:"decision_correct" yaml:"decision_correct"`
	StreakBonus     int `json:"streak_bonus" yaml:"streak_bonus"`
	StreakThreshold int `json:"streak_threshold" yaml:"streak_threshold"`
	TimeoutPenalty  int `json:"timeout_penalty" yaml:"timeout_penalty"`
}

func DefaultScoring() Scoring {
	return Scoring{
		WrongDirectionPenalty: ms(200),
		PrematurePenalty:      ms(300),
		PrematureBase:         ms(300),
		DirectionCorrect:      1,
		CellHit:               10,
		CellMiss:              -5,
		PerfectBonus:          20,
		DecisionCorrect:       10,
		StreakBonus:           5,
		StreakThreshold:       3,
		TimeoutPenalty:        -5,
	}
}

// Evaluate scores one response against its spec. streak is the number of
// consecutive correct trials before this one.
func (sc Scoring) Evaluate(spec TrialSpec, resp Response, elapsed time.Duration, premature bool, streak int) (Outcome, error) {
	switch spec.Kind {
	case KindArrow:
		return sc.EvaluateDirection(spec, resp, elapsed, premature, streak)
	case KindScan:
		return sc.EvaluateRecall(spec, resp, elapsed, streak)
	case KindStriker:
		return sc.EvaluateDecision(spec, resp, elapsed, streak)
	}
	return Outcome{}, goerr.Wrap(ErrContractViolation, "spec has no game kind", goerr.V("kind", spec.Kind))
}

func (sc Scoring) EvaluateDirection(spec TrialSpec, resp Response, elapsed time.Duration, premature bool, streak int) (Outcome, error) {
	if _, ok := ParseDirection(string(spec.Direction)); !ok {
		return Outcome{}, goerr.Wrap(ErrContractViolation, "arrow spec without direction", goerr.V("direction", spec.Direction))
	}
	if resp.Cells != 0 || resp.Action != "" {
		return Outcome{}, goerr.Wrap(ErrContractViolation, "arrow response has the wrong shape")
	}

	out := Outcome{Spec: spec, Response: resp, Premature: premature}
	if resp.TimedOut || resp.Direction == "" {
		out.TimedOut = true
		return out, nil
	}

	out.Latency = elapsed
	out.HasLatency = true
	if resp.Direction != spec.Direction {
		out.Latency += sc.WrongDirectionPenalty
	}
	if premature {
		out.Latency += sc.PrematurePenalty
	}

	out.Correct = resp.Direction == spec.Direction && !premature
	if out.Correct {
		out.Delta = sc.DirectionCorrect
		out.Streak = streak + 1
	}
	return out, nil
}

func (sc Scoring) EvaluateRecall(spec TrialSpec, resp Response, elapsed time.Duration, streak int) (Outcome, error) {
	if spec.Targets == 0 {
		return Outcome{}, goerr.Wrap(ErrContractViolation, "scan spec has no targets")
	}
	if resp.Direction != "" || resp.Action != "" {
		return Outcome{}, goerr.Wrap(ErrContractViolation, "scan response has the wrong shape")
	}
	if resp.Cells.Max() >= GridCells || spec.Targets.Max() >= GridCells {
		return Outcome{}, goerr.Wrap(ErrContractViolation, "cell outside the grid",
			goerr.V("response", resp.Cells.String()), goerr.V("targets", spec.Targets.String()))
	}

	out := Outcome{Spec: spec, Response: resp, TimedOut: resp.TimedOut}
	if !resp.TimedOut {
		out.Latency = elapsed
		out.HasLatency = true
	}

	hits := (resp.Cells & spec.Targets).Len()
	misses := (resp.Cells &^ spec.Targets).Len()
	out.Delta = hits*sc.CellHit + misses*sc.CellMiss
	out.Correct = resp.Cells == spec.Targets
	if out.Correct {
		out.Delta += sc.PerfectBonus
		out.Streak = streak + 1
	}
	return out, nil
}

func (sc Scoring) EvaluateDecision(spec TrialSpec, resp Response, elapsed time.Duration, streak int) (Outcome, error) {
	if _, ok := ParseAction(string(spec.Action)); !ok {
		return Outcome{}, goerr.Wrap(ErrContractViolation, "striker spec without action", goerr.V("action", spec.Action))
	}
	if resp.Direction != "" || resp.Cells != 0 {
		return Outcome{}, goerr.Wrap(ErrContractViolation, "striker response has the wrong shape")
	}

	out := Outcome{Spec: spec, Response: resp}
	if resp.TimedOut || resp.Action == "" {
		out.TimedOut = true
		out.Delta = sc.TimeoutPenalty
		return out, nil
	}

	out.Latency = elapsed
	out.HasLatency = true
	out.Correct = resp.Action == spec.Action
	if out.Correct {
		out.Streak = streak + 1
		out.Delta = sc.DecisionCorrect
		if sc.StreakThreshold > 0 && out.Streak >= sc.StreakThreshold {
			out.Delta += sc.StreakBonus
		}
	}
	return out, nil
}
