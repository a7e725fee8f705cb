package game

import (
	"encoding/json"
	"errors"
	"time"
)

type TierMetric string

const (
	MetricLatency  TierMetric = "latency"
	MetricAccuracy TierMetric = "accuracy"
)

// Tier is one band of the end-of-session message. Latency tiers match when
// the mean latency is below Below; accuracy tiers when accuracy is at least
// AtLeast percent. Tiers are tried in order.
type Tier struct {
	Label   string        `json:"label" yaml:"label"`
	Below   time.Duration `json:"below,omitempty" yaml:"below"`
	AtLeast float64       `json:"at_least,omitempty" yaml:"at_least"`
}

type TierPolicy struct {
	Metric   TierMetric `json:"metric" yaml:"metric"`
	Tiers    []Tier     `json:"tiers" yaml:"tiers"`
	Fallback string     `json:"fallback" yaml:"fallback"`
}

func (p TierPolicy) validate() error {
	switch p.Metric {
	case MetricLatency, MetricAccuracy:
	default:
		return errors.New("tier metric must be latency or accuracy")
	}
	if p.Fallback == "" {
		return errors.New("tier fallback label is empty")
	}
	for _, t := range p.Tiers {
		if t.Label == "" {
			return errors.New("tier label is empty")
		}
	}
	return nil
}

// Pick returns the label for the given summary.
func (p TierPolicy) Pick(s Summary) string {
	for _, t := range p.Tiers {
		switch p.Metric {
		case MetricLatency:
			if s.HasLatency && s.MeanLatency < t.Below {
				return t.Label
			}
		case MetricAccuracy:
			if s.Accuracy >= t.AtLeast {
				return t.Label
			}
		}
	}
	return p.Fallback
}

const (
	ConsistencyExcellent = "excellent"
	ConsistencyGood      = "good"
	ConsistencyNeedsWork = "needs work"
)

// Summary aggregates a finished trial log.
type Summary struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
	Score    int     `json:"score"`
	// Perfect counts exact scan recalls.
	Perfect    int `json:"perfect"`
	BestStreak int `json:"best_streak"`

	// Latency statistics cover correct trials only.
	MeanLatency  time.Duration `json:"-"`
	BestLatency  time.Duration `json:"-"`
	WorstLatency time.Duration `json:"-"`
	HasLatency   bool          `json:"-"`

	// AnsweredMean covers every trial that got an answer, right or wrong.
	AnsweredMean time.Duration `json:"-"`
	HasAnswered  bool          `json:"-"`

	Consistency string `json:"consistency"`
	Tier        string `json:"tier"`
}

func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	msOrNil := func(d time.Duration, ok bool) *int64 {
		if !ok {
			return nil
		}
		v := d.Milliseconds()
		return &v
	}
	return json.Marshal(struct {
		plain
		MeanLatencyMS  *int64 `json:"mean_latency_ms"`
		BestLatencyMS  *int64 `json:"best_latency_ms"`
		WorstLatencyMS *int64 `json:"worst_latency_ms"`
		AnsweredMeanMS *int64 `json:"answered_mean_ms"`
	}{
		plain:          plain(s),
		MeanLatencyMS:  msOrNil(s.MeanLatency, s.HasLatency),
		BestLatencyMS:  msOrNil(s.BestLatency, s.HasLatency),
		WorstLatencyMS: msOrNil(s.WorstLatency, s.HasLatency),
		AnsweredMeanMS: msOrNil(s.AnsweredMean, s.HasAnswered),
	})
}

// Summarize aggregates a trial log against the configured total. Score is
// the plain sum of deltas; a session that clamps its score reports its own
// running value instead.
func Summarize(trials []Outcome, total int, policy TierPolicy) Summary {
	s := Summary{Total: total}

	var (
		sum, answered time.Duration
		nSum, nAns    int
		streak        int
	)
	for _, o := range trials {
		s.Score += o.Delta
		if o.Correct {
			s.Correct++
			streak++
			if o.Spec.Kind == KindScan {
				s.Perfect++
			}
		} else {
			streak = 0
		}
		if streak > s.BestStreak {
			s.BestStreak = streak
		}

		if !o.HasLatency {
			continue
		}
		answered += o.Latency
		nAns++
		if !o.Correct {
			continue
		}
		if nSum == 0 || o.Latency < s.BestLatency {
			s.BestLatency = o.Latency
		}
		if nSum == 0 || o.Latency > s.WorstLatency {
			s.WorstLatency = o.Latency
		}
		sum += o.Latency
		nSum++
	}

	if total > 0 {
		s.Accuracy = float64(s.Correct) * 100 / float64(total)
	}
	if nSum > 0 {
		s.MeanLatency = sum / time.Duration(nSum)
		s.HasLatency = true
	}
	if nAns > 0 {
		s.AnsweredMean = answered / time.Duration(nAns)
		s.HasAnswered = true
	}

	switch {
	case s.Accuracy >= 90:
		s.Consistency = ConsistencyExcellent
	case s.Accuracy >= 75:
		s.Consistency = ConsistencyGood
	default:
		s.Consistency = ConsistencyNeedsWork
	}
	s.Tier = policy.Pick(s)

	return s
}
