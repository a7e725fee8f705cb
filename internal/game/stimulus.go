package game

import (
	"encoding/json"
	"math/bits"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions is the fixed symbol set of the arrow drill.
var Directions = []Direction{Up, Down, Left, Right}

func ParseDirection(s string) (Direction, bool) {
	for _, d := range Directions {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

type Action string

const (
	Shoot Action = "shoot"
	Pass  Action = "pass"
)

func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case Shoot, Pass:
		return Action(s), true
	}
	return "", false
}

// GridCells is the size of the scan drill's 3x3 universe.
const GridCells = 9

// CellSet is an unordered set of grid cell indices.
type CellSet uint32

func CellsOf(cells ...int) CellSet {
	var s CellSet
	for _, c := range cells {
		s = s.Add(c)
	}
	return s
}

func (s CellSet) Has(cell int) bool {
	return cell >= 0 && cell < 32 && s&(1<<uint(cell)) != 0
}

func (s CellSet) Add(cell int) CellSet {
	if cell < 0 || cell >= 32 {
		return s
	}
	return s | 1<<uint(cell)
}

func (s CellSet) Remove(cell int) CellSet {
	if cell < 0 || cell >= 32 {
		return s
	}
	return s &^ (1 << uint(cell))
}

func (s CellSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// Slice returns the members in ascending order.
func (s CellSet) Slice() []int {
	out := make([]int, 0, s.Len())
	for c := 0; c < 32; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Max returns the largest member, or -1 for the empty set.
func (s CellSet) Max() int {
	if s == 0 {
		return -1
	}
	return 31 - bits.LeadingZeros32(uint32(s))
}

func (s CellSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *CellSet) UnmarshalJSON(data []byte) error {
	var cells []int
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	*s = CellsOf(cells...)
	return nil
}

func (s CellSet) String() string {
	out := "{"
	for i, c := range s.Slice() {
		if i > 0 {
			out += ","
		}
		out += strconv.Itoa(c)
	}
	return out + "}"
}

// TrialSpec is the ground truth of one trial. Which fields are set depends
// on Kind.
type TrialSpec struct {
	Kind      Kind      `json:"kind"`
	Direction Direction `json:"direction,omitempty"`
	// Sequence is the flash order of the scan targets; Targets holds the
	// same cells as a set.
	Sequence []int   `json:"sequence,omitempty"`
	Targets  CellSet `json:"targets,omitempty"`
	Scenario int     `json:"scenario"`
	Action   Action  `json:"action,omitempty"`
}

// Difficulty parameterizes the next draw.
type Difficulty struct {
	Targets     int
	RecallDelay time.Duration
}

// Generator produces the spec of the next trial.
type Generator interface {
	Next(prev *TrialSpec, d Difficulty) (TrialSpec, error)
}

// DirectionGenerator draws every symbol independently; repeats are allowed.
type DirectionGenerator struct {
	rng Rand
}

func NewDirectionGenerator(rng Rand) *DirectionGenerator {
	return &DirectionGenerator{rng: rng}
}

func (g *DirectionGenerator) Next(_ *TrialSpec, _ Difficulty) (TrialSpec, error) {
	return TrialSpec{Kind: KindArrow, Direction: Directions[g.rng.IntN(len(Directions))]}, nil
}

// TargetGenerator draws distinct cells by rejection sampling.
type TargetGenerator struct {
	rng      Rand
	universe int
}

func NewTargetGenerator(rng Rand, universe int) *TargetGenerator {
	if universe <= 0 {
		universe = GridCells
	}
	return &TargetGenerator{rng: rng, universe: universe}
}

func (g *TargetGenerator) Next(_ *TrialSpec, d Difficulty) (TrialSpec, error) {
	if d.Targets <= 0 || d.Targets > g.universe {
		return TrialSpec{}, goerr.Wrap(ErrInvalidConfig, "target count outside universe",
			goerr.V("targets", d.Targets), goerr.V("universe", g.universe))
	}

	seq := make([]int, 0, d.Targets)
	var set CellSet
	for len(seq) < d.Targets {
		cell := g.rng.IntN(g.universe)
		if set.Has(cell) {
			continue
		}
		set = set.Add(cell)
		seq = append(seq, cell)
	}

	return TrialSpec{Kind: KindScan, Sequence: seq, Targets: set}, nil
}

// ScenarioDeck shuffles the catalog once and deals it in that order, so
// every scenario is seen exactly once per session.
type ScenarioDeck struct {
	scenarios []Scenario
	order     []int
	pos       int
}

func NewScenarioDeck(rng Rand, scenarios []Scenario) (*ScenarioDeck, error) {
	if len(scenarios) == 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "scenario catalog is empty")
	}

	order := make([]int, len(scenarios))
	for i := range order {
		order[i] = i
	}
	for i := len(order) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	return &ScenarioDeck{scenarios: scenarios, order: order}, nil
}

func (d *ScenarioDeck) Next(_ *TrialSpec, _ Difficulty) (TrialSpec, error) {
	if d.pos >= len(d.order) {
		return TrialSpec{}, goerr.Wrap(ErrDeckExhausted, "no scenario left", goerr.V("dealt", d.pos))
	}
	idx := d.order[d.pos]
	d.pos++
	return TrialSpec{Kind: KindStriker, Scenario: idx, Action: d.scenarios[idx].Action}, nil
}

// Order returns the shuffled catalog indices.
func (d *ScenarioDeck) Order() []int {
	out := make([]int, len(d.order))
	copy(out, d.order)
	return out
}

// Remaining reports how many scenarios are left to deal.
func (d *ScenarioDeck) Remaining() int {
	return len(d.order) - d.pos
}

// Position is a point on the pitch in percent of its width and height.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Scenario is one pre-authored entry of the striker catalog.
type Scenario struct {
	ID        string     `json:"id" yaml:"id"`
	Player    Position   `json:"player" yaml:"player"`
	Defenders []Position `json:"defenders" yaml:"defenders"`
	Teammates []Position `json:"teammates" yaml:"teammates"`
	Action    Action     `json:"action,omitempty" yaml:"action"`
	Reasoning string     `json:"reasoning,omitempty" yaml:"reasoning"`
}

// Public returns the scenario without its answer.
func (s Scenario) Public() Scenario {
	s.Action = ""
	s.Reasoning = ""
	return s
}
