package catalog

import (
	"context"
	_ "embed"
	"errors"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"reflex_drills/internal/game"
)

var (
	ErrEmptyCatalog    = errors.New("scenario catalog is empty")
	ErrInvalidScenario = errors.New("invalid scenario")
)

//go:embed scenarios.yaml
var embedded []byte

// Source loads the striker scenarios.
type Source interface {
	Load(ctx context.Context) ([]game.Scenario, error)
}

type file struct {
	Scenarios []game.Scenario `yaml:"scenarios"`
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) ([]game.Scenario, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse scenario catalog")
	}
	if err := Validate(f.Scenarios); err != nil {
		return nil, err
	}
	return f.Scenarios, nil
}

// Validate rejects empty catalogs, duplicate ids, unknown actions and
// positions off the pitch.
func Validate(scenarios []game.Scenario) error {
	if len(scenarios) == 0 {
		return goerr.Wrap(ErrEmptyCatalog, "no scenarios")
	}

	seen := make(map[string]bool, len(scenarios))
	for i, sc := range scenarios {
		bad := func(msg string) error {
			return goerr.Wrap(ErrInvalidScenario, msg, goerr.V("index", i), goerr.V("id", sc.ID))
		}
		if sc.ID == "" {
			return bad("scenario without id")
		}
		if seen[sc.ID] {
			return bad("duplicate scenario id")
		}
		seen[sc.ID] = true

		if _, ok := game.ParseAction(string(sc.Action)); !ok {
			return bad("unknown action")
		}
		if !onPitch(sc.Player) {
			return bad("player off the pitch")
		}
		for _, p := range append(append([]game.Position(nil), sc.Defenders...), sc.Teammates...) {
			if !onPitch(p) {
				return bad("position off the pitch")
			}
		}
	}
	return nil
}

func onPitch(p game.Position) bool {
	return p.X >= 0 && p.X <= 100 && p.Y >= 0 && p.Y <= 100
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(context.Context) ([]game.Scenario, error) {
	return Parse(embedded)
}

// FileSource reads a YAML catalog from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) ([]game.Scenario, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read scenario catalog", goerr.V("path", s.Path))
	}
	return Parse(data)
}

// Default returns the embedded catalog. It panics if the embedded file is
// broken, which the package tests rule out.
func Default() []game.Scenario {
	scenarios, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return scenarios
}
