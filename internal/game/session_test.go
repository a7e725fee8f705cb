package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const msec = time.Millisecond

// openWindow advances the clock until the current trial accepts answers.
func openWindow(t *testing.T, s *Session, clock *ManualClock) {
	t.Helper()
	for i := 0; i < 50 && phaseOf(s) != PhaseResponseOpen; i++ {
		advanceToNext(t, clock)
	}
	require.Equal(t, PhaseResponseOpen, phaseOf(s))
}

func TestArrowSessionPlaysWorkedExample(t *testing.T) {
	cfg := DefaultConfig(KindArrow)
	cfg.TotalTrials = 2
	s, clock, rec := newTestSession(t, cfg)

	require.NoError(t, s.Start())
	assert.Equal(t, Countdown{Remaining: 3}, s.State())

	clock.Advance(1000 * msec)
	assert.Equal(t, Countdown{Remaining: 2}, s.State())
	clock.Advance(2000 * msec)
	require.Equal(t, PhaseStimulusPending, phaseOf(s))

	jitter := advanceToNext(t, clock)
	assert.GreaterOrEqual(t, jitter, 800*msec)
	assert.LessOrEqual(t, jitter, 1500*msec)
	require.Equal(t, PhaseResponseOpen, phaseOf(s))

	clock.Advance(180 * msec)
	require.True(t, s.Input(DirectionInput(s.spec.Direction)))
	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.True(t, fb.Outcome.Correct)
	assert.Equal(t, 180*msec, fb.Outcome.Latency)
	assert.Equal(t, 1, fb.Outcome.Trial)

	clock.Advance(400 * msec)
	openWindow(t, s, clock)
	assert.Equal(t, 2, s.Snapshot().Trial)

	clock.Advance(220 * msec)
	require.True(t, s.Input(DirectionInput(otherDirection(s.spec.Direction))))
	out := s.Trials()[1]
	assert.False(t, out.Correct)
	assert.Equal(t, 420*msec, out.Latency)

	clock.Advance(400 * msec)
	sum, ok := s.Summary()
	require.True(t, ok)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Correct)
	assert.Equal(t, 50.0, sum.Accuracy)
	assert.Equal(t, 1, sum.Score)
	assert.Equal(t, 0, clock.Pending())

	assert.Equal(t, PhaseTerminal, rec.last().Phase)
	for i := 1; i < len(rec.snaps); i++ {
		assert.Greater(t, rec.snaps[i].Seq, rec.snaps[i-1].Seq)
	}
}

func TestArrowPrematurePressEndsTrial(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindArrow))
	require.NoError(t, s.Start())
	clock.Advance(3000 * msec)
	require.Equal(t, PhaseStimulusPending, phaseOf(s))

	require.True(t, s.Input(DirectionInput(s.spec.Direction)))
	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.True(t, fb.Outcome.Premature)
	assert.False(t, fb.Outcome.Correct)
	assert.Equal(t, 600*msec, fb.Outcome.Latency)

	// only the feedback dwell is left; the jitter timer is gone
	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, 1, len(s.Trials()))
}

func TestArrowWindowExpires(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindArrow))
	require.NoError(t, s.Start())
	openWindow(t, s, clock)

	clock.Advance(1999 * msec)
	require.Equal(t, PhaseResponseOpen, phaseOf(s))
	clock.Advance(msec)

	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.True(t, fb.Outcome.TimedOut)
	assert.False(t, fb.Outcome.HasLatency)
	assert.False(t, fb.Outcome.Correct)
}

func TestAnswerCancelsWindowTimeout(t *testing.T) {
	cfg := DefaultConfig(KindArrow)
	cfg.FeedbackDwell = 5 * time.Second
	s, clock, rec := newTestSession(t, cfg)
	require.NoError(t, s.Start())
	openWindow(t, s, clock)

	clock.Advance(100 * msec)
	require.True(t, s.Input(DirectionInput(s.spec.Direction)))
	clock.Advance(3 * time.Second)

	require.Equal(t, PhaseFeedback, phaseOf(s))
	require.Len(t, s.Trials(), 1)
	assert.False(t, s.Trials()[0].TimedOut)
	assert.Empty(t, rec.stale)
	assert.Equal(t, 1, clock.Pending())
}

func TestInputOutsideWindowIsDropped(t *testing.T) {
	cfg := DefaultConfig(KindArrow)
	cfg.TotalTrials = 1
	s, clock, rec := newTestSession(t, cfg)

	assert.False(t, s.Input(DirectionInput(Up)))

	require.NoError(t, s.Start())
	assert.False(t, s.Input(DirectionInput(Up)))
	assert.Equal(t, PhaseCountdown, phaseOf(s))

	openWindow(t, s, clock)
	assert.False(t, s.Input(ActionInput(Shoot)))
	require.True(t, s.Input(DirectionInput(Up)))
	assert.False(t, s.Input(DirectionInput(Up)))

	clock.Advance(cfg.FeedbackDwell)
	require.Equal(t, PhaseTerminal, phaseOf(s))
	assert.False(t, s.Input(DirectionInput(Up)))
	assert.Len(t, rec.stale, 5)
	assert.Len(t, s.Trials(), 1)
}

func TestRestartDiscardsTimersAndLog(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindArrow))
	require.NoError(t, s.Start())
	openWindow(t, s, clock)
	require.True(t, s.Input(DirectionInput(s.spec.Direction)))
	clock.Advance(400 * msec)

	require.NoError(t, s.Restart())
	assert.Equal(t, Countdown{Remaining: 3}, s.State())
	assert.Empty(t, s.Trials())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 0, s.Snapshot().Trial)
	assert.Equal(t, 1, clock.Pending())

	assert.ErrorIs(t, s.Start(), ErrNotIdle)
}

func TestCloseStopsSession(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindArrow))
	require.NoError(t, s.Start())
	clock.Advance(3000 * msec)

	s.Close()
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, PhaseIdle, phaseOf(s))
	assert.False(t, s.Input(DirectionInput(Up)))
	assert.ErrorIs(t, s.Start(), ErrNotIdle)
	assert.ErrorIs(t, s.Restart(), ErrNotIdle)
}

func TestArrowSnapshotHidesDirectionUntilWindowOpens(t *testing.T) {
	s, clock, rec := newTestSession(t, DefaultConfig(KindArrow))
	require.NoError(t, s.Start())
	clock.Advance(3000 * msec)

	snap := rec.last()
	require.Equal(t, PhaseStimulusPending, snap.Phase)
	assert.Nil(t, snap.Spec)

	advanceToNext(t, clock)
	snap = rec.last()
	require.Equal(t, PhaseResponseOpen, snap.Phase)
	require.NotNil(t, snap.Spec)
	assert.Equal(t, s.spec.Direction, snap.Spec.Direction)
	require.NotNil(t, snap.RemainingMS)
	assert.EqualValues(t, 2000, *snap.RemainingMS)

	clock.Advance(500 * msec)
	assert.EqualValues(t, 1500, *s.Snapshot().RemainingMS)
}

func TestScanFlashSequence(t *testing.T) {
	s, clock, rec := newTestSession(t, DefaultConfig(KindScan))
	require.NoError(t, s.Start())
	assert.Equal(t, Countdown{Remaining: 1}, s.State())

	clock.Advance(1000 * msec)
	seq := s.spec.Sequence
	require.Len(t, seq, 2)

	want := []int{seq[0], -1, seq[1], -1}
	for i, h := range want {
		assert.Equal(t, StimulusPending{Highlight: h}, s.State(), "step %d", i)
		if h >= 0 {
			require.NotNil(t, rec.last().Highlight)
			assert.Equal(t, h, *rec.last().Highlight)
		}
		assert.Nil(t, rec.last().Spec)
		assert.Equal(t, 2, rec.last().Required)
		assert.False(t, s.Input(CellInput(seq[0])))
		clock.Advance(300 * msec)
	}

	// recall delay of the first difficulty step
	require.Equal(t, PhaseStimulusPending, phaseOf(s))
	clock.Advance(1499 * msec)
	require.Equal(t, PhaseStimulusPending, phaseOf(s))
	clock.Advance(msec)
	require.Equal(t, PhaseResponseOpen, phaseOf(s))

	snap := rec.last()
	assert.Nil(t, snap.Spec)
	require.NotNil(t, snap.Selection)
	assert.Equal(t, CellSet(0), *snap.Selection)
}

func outsider(targets CellSet) int {
	for c := 0; c < GridCells; c++ {
		if !targets.Has(c) {
			return c
		}
	}
	return -1
}

func TestScanExactRecallAutoSubmits(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindScan))
	require.NoError(t, s.Start())
	openWindow(t, s, clock)
	seq := s.spec.Sequence

	clock.Advance(50 * msec)
	require.True(t, s.Input(CellInput(seq[1])))
	clock.Advance(50 * msec)
	require.True(t, s.Input(CellInput(seq[0])))

	clock.Advance(499 * msec)
	require.Equal(t, PhaseResponseOpen, phaseOf(s))
	assert.False(t, s.Input(CellInput(outsider(s.spec.Targets))), "selection is capped")
	clock.Advance(msec)

	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.True(t, fb.Outcome.Correct)
	assert.Equal(t, 40, fb.Outcome.Delta)
	assert.Equal(t, 100*msec, fb.Outcome.Latency)
	assert.Equal(t, 40, s.Score())
}

func TestScanDeselectCancelsAutoSubmit(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindScan))
	require.NoError(t, s.Start())
	openWindow(t, s, clock)
	seq := s.spec.Sequence

	require.True(t, s.Input(CellInput(seq[0])))
	require.True(t, s.Input(CellInput(seq[1])))
	clock.Advance(200 * msec)
	require.True(t, s.Input(CellInput(seq[1])))

	clock.Advance(time.Second)
	require.Equal(t, PhaseResponseOpen, phaseOf(s))

	require.True(t, s.Input(CellInput(outsider(s.spec.Targets))))
	clock.Advance(500 * msec)

	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.False(t, fb.Outcome.Correct)
	assert.Equal(t, 5, fb.Outcome.Delta)
}

func TestScanCapNearWindowEndKeepsLatency(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindScan))
	require.NoError(t, s.Start())
	openWindow(t, s, clock)
	seq := s.spec.Sequence

	clock.Advance(7800 * msec)
	require.True(t, s.Input(CellInput(seq[0])))
	require.True(t, s.Input(CellInput(seq[1])))
	clock.Advance(600 * msec)

	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.True(t, fb.Outcome.Correct)
	assert.False(t, fb.Outcome.TimedOut)
	assert.True(t, fb.Outcome.HasLatency)
	assert.Equal(t, 7800*msec, fb.Outcome.Latency)
	assert.Equal(t, 40, fb.Outcome.Delta)
	assert.Len(t, s.Trials(), 1)
}

func TestScanDeselectBeforeExpiryTimesOut(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindScan))
	require.NoError(t, s.Start())
	openWindow(t, s, clock)
	seq := s.spec.Sequence

	clock.Advance(7800 * msec)
	require.True(t, s.Input(CellInput(seq[0])))
	require.True(t, s.Input(CellInput(seq[1])))
	require.True(t, s.Input(CellInput(seq[1])))
	clock.Advance(600 * msec)

	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.True(t, fb.Outcome.TimedOut)
	assert.False(t, fb.Outcome.HasLatency)
}

func TestScanInputHeldWhileFlashing(t *testing.T) {
	s, clock, rec := newTestSession(t, DefaultConfig(KindScan))
	require.NoError(t, s.Start())
	clock.Advance(1000 * msec)
	seq := s.spec.Sequence

	for phaseOf(s) == PhaseStimulusPending {
		assert.False(t, s.Input(CellInput(seq[0])))
		assert.False(t, s.Input(SubmitInput()))
		assert.Empty(t, s.Trials())
		advanceToNext(t, clock)
	}
	require.Equal(t, PhaseResponseOpen, phaseOf(s))
	assert.Equal(t, CellSet(0), s.State().(ResponseOpen).Selection)
	assert.NotEmpty(t, rec.stale)
}

func TestStrikerIgnoresPendingInput(t *testing.T) {
	s, _, _ := newTestSession(t, DefaultConfig(KindStriker))
	require.NoError(t, s.Start())
	before := len(s.Trials())

	assert.False(t, strikerRules{}.pendingInput(s, ActionInput(Shoot)))
	assert.Len(t, s.Trials(), before)
	assert.Equal(t, PhaseResponseOpen, phaseOf(s))
}

func TestScanExplicitSubmitAndExpiry(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindScan))
	require.NoError(t, s.Start())
	openWindow(t, s, clock)

	require.True(t, s.Input(CellInput(s.spec.Sequence[0])))
	require.True(t, s.Input(SubmitInput()))
	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.Equal(t, 10, fb.Outcome.Delta)
	assert.False(t, fb.Outcome.Correct)
	assert.True(t, fb.Outcome.HasLatency)

	clock.Advance(1200 * msec)
	openWindow(t, s, clock)
	require.True(t, s.Input(CellInput(s.spec.Sequence[0])))
	clock.Advance(8000 * msec)

	fb, ok = s.State().(Feedback)
	require.True(t, ok)
	assert.True(t, fb.Outcome.TimedOut)
	assert.False(t, fb.Outcome.HasLatency)
	assert.Equal(t, 10, fb.Outcome.Delta)
	assert.Equal(t, 20, s.Score())
}

func TestScanFullSessionFollowsDifficulty(t *testing.T) {
	cfg := DefaultConfig(KindScan)
	s, clock, _ := newTestSession(t, cfg)
	require.NoError(t, s.Start())

	var counts []int
	for i := 0; i < cfg.TotalTrials; i++ {
		openWindow(t, s, clock)
		counts = append(counts, s.spec.Targets.Len())
		for _, c := range s.spec.Sequence {
			require.True(t, s.Input(CellInput(c)))
		}
		clock.Advance(cfg.SubmitDelay)
		require.Equal(t, PhaseFeedback, phaseOf(s))
		clock.Advance(cfg.FeedbackDwell)
	}

	assert.Equal(t, []int{2, 2, 2, 3, 3, 3, 4, 4, 4, 4}, counts)
	sum, ok := s.Summary()
	require.True(t, ok)
	assert.Equal(t, 100.0, sum.Accuracy)
	assert.Equal(t, 10, sum.Perfect)
	assert.Equal(t, 510, sum.Score)
	assert.Equal(t, "Elite", sum.Tier)
}

func TestStrikerStreakScoring(t *testing.T) {
	s, clock, rec := newTestSession(t, DefaultConfig(KindStriker))
	require.NoError(t, s.Start())

	snap := rec.last()
	require.Equal(t, PhaseResponseOpen, snap.Phase)
	require.NotNil(t, snap.Scenario)
	assert.Empty(t, snap.Scenario.Action)
	assert.Empty(t, snap.Scenario.Reasoning)
	assert.Empty(t, snap.Spec.Action)
	assert.EqualValues(t, 1200, *snap.RemainingMS)

	for i := 0; i < 3; i++ {
		clock.Advance(300 * msec)
		require.True(t, s.Input(ActionInput(s.spec.Action)))

		snap = rec.last()
		require.Equal(t, PhaseFeedback, snap.Phase)
		assert.NotEmpty(t, snap.Scenario.Action)
		assert.NotEmpty(t, snap.Scenario.Reasoning)
		clock.Advance(1500 * msec)
	}

	assert.Equal(t, 35, s.Score())
	assert.Equal(t, 3, s.Snapshot().Streak)
}

func TestStrikerScoreFloor(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindStriker))
	require.NoError(t, s.Start())

	clock.Advance(1200 * msec)
	fb, ok := s.State().(Feedback)
	require.True(t, ok)
	assert.Equal(t, -5, fb.Outcome.Delta)
	assert.Equal(t, 0, s.Score())

	clock.Advance(1500 * msec)
	require.True(t, s.Input(ActionInput(s.spec.Action)))
	assert.Equal(t, 10, s.Score())

	clock.Advance(1500 * msec)
	clock.Advance(1200 * msec)
	assert.Equal(t, 5, s.Score())
}

func TestStrikerDealsEveryScenarioOnce(t *testing.T) {
	s, clock, _ := newTestSession(t, DefaultConfig(KindStriker))
	require.NoError(t, s.Start())

	for i := 0; i < 12; i++ {
		require.Equal(t, PhaseResponseOpen, phaseOf(s))
		clock.Advance(1200 * msec)
		clock.Advance(1500 * msec)
	}

	sum, ok := s.Summary()
	require.True(t, ok)
	assert.Equal(t, 0.0, sum.Accuracy)
	assert.False(t, sum.HasLatency)
	assert.Equal(t, 0, sum.Score)

	seen := map[int]bool{}
	for _, o := range s.Trials() {
		seen[o.Spec.Scenario] = true
	}
	assert.Len(t, seen, 12)
}

func TestNewSessionRejectsBadSetup(t *testing.T) {
	_, err := NewSession(DefaultConfig(KindArrow), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	clock := NewManualClock(epoch)
	_, err = NewSession(DefaultConfig(KindStriker), WithClock(clock), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSession(DefaultConfig(KindStriker), WithClock(clock), WithLogger(quietLogger()), WithCatalog(testCatalog(5)))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSession(Config{Kind: "chess"}, WithClock(clock), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrUnknownGame)
}
