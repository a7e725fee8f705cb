package config

import (
	_ "embed"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"reflex_drills/internal/game"
)

//go:embed games.yaml
var defaultGames []byte

// Games is the tuning of every drill, keyed by kind.
type Games map[game.Kind]game.Config

type gamesFile struct {
	Arrow   *game.Config `yaml:"arrow"`
	Scan    *game.Config `yaml:"scan"`
	Striker *game.Config `yaml:"striker"`
}

// LoadGames returns the built-in tuning overlaid with the YAML file at path.
// An empty path yields the built-in tuning. Keys missing from the file keep
// their defaults.
func LoadGames(path string) (Games, error) {
	arrow := game.DefaultConfig(game.KindArrow)
	scan := game.DefaultConfig(game.KindScan)
	striker := game.DefaultConfig(game.KindStriker)
	f := gamesFile{Arrow: &arrow, Scan: &scan, Striker: &striker}

	if err := yaml.Unmarshal(defaultGames, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse built-in games config")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read games config", goerr.V("path", path))
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, goerr.Wrap(err, "failed to parse games config", goerr.V("path", path))
		}
	}

	arrow.Kind = game.KindArrow
	scan.Kind = game.KindScan
	striker.Kind = game.KindStriker

	return Games{
		game.KindArrow:   arrow,
		game.KindScan:    scan,
		game.KindStriker: striker,
	}, nil
}

// Validate checks every drill; catalogSize bounds the striker.
func (g Games) Validate(catalogSize int) error {
	for _, kind := range game.Kinds {
		cfg, ok := g[kind]
		if !ok {
			return goerr.Wrap(game.ErrInvalidConfig, "game missing from config", goerr.V("kind", kind))
		}
		if err := cfg.Validate(catalogSize); err != nil {
			return err
		}
	}
	return nil
}
