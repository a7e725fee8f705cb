package handlers

import (
	"net/http"

	"reflex_drills/internal/game"

	"github.com/gin-gonic/gin"
)

// GameInfo is the public tuning of one drill with durations in milliseconds.
type GameInfo struct {
	Kind             game.Kind       `json:"kind"`
	TotalTrials      int             `json:"total_trials"`
	CountdownTicks   int             `json:"countdown_ticks"`
	CountdownMS      int64           `json:"countdown_period_ms"`
	JitterMinMS      int64           `json:"jitter_min_ms"`
	JitterMaxMS      int64           `json:"jitter_max_ms"`
	ResponseWindowMS int64           `json:"response_window_ms"`
	FeedbackDwellMS  int64           `json:"feedback_dwell_ms"`
	Universe         int             `json:"universe,omitempty"`
	FlashStepMS      int64           `json:"flash_step_ms,omitempty"`
	SubmitDelayMS    int64           `json:"submit_delay_ms,omitempty"`
	Schedule         []ScheduleInfo  `json:"schedule,omitempty"`
	Scoring          ScoringInfo     `json:"scoring"`
	Tiers            TiersInfo       `json:"tiers"`
}

type ScheduleInfo struct {
	FromTrial     int   `json:"from_trial"`
	Targets       int   `json:"targets"`
	RecallDelayMS int64 `json:"recall_delay_ms"`
}

type ScoringInfo struct {
	WrongDirectionPenaltyMS int64 `json:"wrong_direction_penalty_ms"`
	PrematurePenaltyMS      int64 `json:"premature_penalty_ms"`
	PrematureBaseMS         int64 `json:"premature_base_ms"`
	DirectionCorrect        int   `json:"direction_correct"`
	CellHit                 int   `json:"cell_hit"`
	CellMiss                int   `json:"cell_miss"`
	PerfectBonus            int   `json:"perfect_bonus"`
	DecisionCorrect         int   `json:"decision_correct"`
	StreakBonus             int   `json:"streak_bonus"`
	StreakThreshold         int   `json:"streak_threshold"`
	TimeoutPenalty          int   `json:"timeout_penalty"`
}

type TiersInfo struct {
	Metric   game.TierMetric `json:"metric"`
	Tiers    []TierInfo      `json:"tiers"`
	Fallback string          `json:"fallback"`
}

type TierInfo struct {
	Label   string  `json:"label"`
	BelowMS int64   `json:"below_ms,omitempty"`
	AtLeast float64 `json:"at_least,omitempty"`
}

func gameInfo(cfg game.Config) GameInfo {
	info := GameInfo{
		Kind:             cfg.Kind,
		TotalTrials:      cfg.TotalTrials,
		CountdownTicks:   cfg.CountdownTicks,
		CountdownMS:      cfg.CountdownPeriod.Milliseconds(),
		JitterMinMS:      cfg.JitterMin.Milliseconds(),
		JitterMaxMS:      cfg.JitterMax.Milliseconds(),
		ResponseWindowMS: cfg.ResponseWindow.Milliseconds(),
		FeedbackDwellMS:  cfg.FeedbackDwell.Milliseconds(),
		Universe:         cfg.Universe,
		FlashStepMS:      cfg.FlashStep.Milliseconds(),
		SubmitDelayMS:    cfg.SubmitDelay.Milliseconds(),
		Scoring: ScoringInfo{
			WrongDirectionPenaltyMS: cfg.Scoring.WrongDirectionPenalty.Milliseconds(),
			PrematurePenaltyMS:      cfg.Scoring.PrematurePenalty.Milliseconds(),
			PrematureBaseMS:         cfg.Scoring.PrematureBase.Milliseconds(),
			DirectionCorrect:        cfg.Scoring.DirectionCorrect,
			CellHit:                 cfg.Scoring.CellHit,
			CellMiss:                cfg.Scoring.CellMiss,
			PerfectBonus:            cfg.Scoring.PerfectBonus,
			DecisionCorrect:         cfg.Scoring.DecisionCorrect,
			StreakBonus:             cfg.Scoring.StreakBonus,
			StreakThreshold:         cfg.Scoring.StreakThreshold,
			TimeoutPenalty:          cfg.Scoring.TimeoutPenalty,
		},
		Tiers: TiersInfo{
			Metric:   cfg.Tiers.Metric,
			Fallback: cfg.Tiers.Fallback,
		},
	}
	for _, t := range cfg.Tiers.Tiers {
		info.Tiers.Tiers = append(info.Tiers.Tiers, TierInfo{
			Label:   t.Label,
			BelowMS: t.Below.Milliseconds(),
			AtLeast: t.AtLeast,
		})
	}
	for _, step := range cfg.Schedule {
		info.Schedule = append(info.Schedule, ScheduleInfo{
			FromTrial:     step.FromTrial,
			Targets:       step.Targets,
			RecallDelayMS: step.RecallDelay.Milliseconds(),
		})
	}
	return info
}

// ListGames returns every configured drill in a stable order.
func (h *Handler) ListGames(c *gin.Context) {
	games := make([]GameInfo, 0, len(h.Games))
	for _, kind := range game.Kinds {
		if cfg, ok := h.Games[kind]; ok {
			games = append(games, gameInfo(cfg))
		}
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// GetGame returns one drill's tuning.
func (h *Handler) GetGame(c *gin.Context) {
	kind, ok := game.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game"})
		return
	}
	cfg, ok := h.Games[kind]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not configured"})
		return
	}
	c.JSON(http.StatusOK, gameInfo(cfg))
}

// ListScenarios returns the striker catalog for rendering. Answers are
// withheld; they are revealed per trial in feedback snapshots.
func (h *Handler) ListScenarios(c *gin.Context) {
	scenarios := make([]game.Scenario, 0, len(h.Catalog))
	for _, s := range h.Catalog {
		scenarios = append(scenarios, s.Public())
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     len(scenarios),
		"scenarios": scenarios,
	})
}
