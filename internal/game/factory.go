package game

import (
	"github.com/m-mizutani/goerr/v2"
)

func newRules(kind Kind) (rules, error) {
	switch kind {
	case KindArrow:
		return arrowRules{}, nil
	case KindScan:
		return scanRules{}, nil
	case KindStriker:
		return strikerRules{}, nil
	default:
		return nil, goerr.Wrap(ErrUnknownGame, "no rules for game", goerr.V("kind", kind))
	}
}

// newGenerator builds the stimulus generator a session draws its trials from.
func newGenerator(cfg Config, rng Rand, catalog []Scenario) (Generator, error) {
	switch cfg.Kind {
	case KindArrow:
		return NewDirectionGenerator(rng), nil
	case KindScan:
		return NewTargetGenerator(rng, cfg.Universe), nil
	case KindStriker:
		return NewScenarioDeck(rng, catalog)
	default:
		return nil, goerr.Wrap(ErrUnknownGame, "no generator for game", goerr.V("kind", cfg.Kind))
	}
}
