package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"reflex_drills/internal/catalog"
	"reflex_drills/internal/config"
	"reflex_drills/internal/game"
	"reflex_drills/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "simulate",
		Usage: "play drills with a scripted bot on a virtual clock",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "game",
				Usage: "arrow, scan, striker or all",
				Value: "all",
			},
			&cli.IntFlag{
				Name:  "runs",
				Usage: "sessions per game",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "seed for stimuli and the bot",
				Value: 1,
			},
			&cli.FloatFlag{
				Name:  "accuracy",
				Usage: "probability the bot answers correctly",
				Value: 0.8,
			},
			&cli.DurationFlag{
				Name:  "reaction",
				Usage: "mean bot reaction time",
				Value: 350 * time.Millisecond,
			},
			&cli.DurationFlag{
				Name:  "spread",
				Usage: "reaction time spread around the mean",
				Value: 100 * time.Millisecond,
			},
			&cli.StringFlag{
				Name:    "games-config",
				Usage:   "YAML file overriding the game tuning",
				Sources: cli.EnvVars("GAMES_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "scenario catalog YAML (embedded catalog when empty)",
				Sources: cli.EnvVars("CATALOG_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type result struct {
	Game    game.Kind    `json:"game"`
	Run     int          `json:"run"`
	Seed    uint64       `json:"seed"`
	Summary game.Summary `json:"summary"`
}

func run(ctx context.Context, cmd *cli.Command) error {
	log := logger.New(os.Stderr, cmd.String("log-level"), false)

	var source catalog.Source = catalog.EmbeddedSource{}
	if path := cmd.String("catalog"); path != "" {
		source = catalog.FileSource{Path: path}
	}
	scenarios, err := source.Load(ctx)
	if err != nil {
		return err
	}

	games, err := config.LoadGames(cmd.String("games-config"))
	if err != nil {
		return err
	}
	if err := games.Validate(len(scenarios)); err != nil {
		return err
	}

	kinds := game.Kinds
	if name := cmd.String("game"); name != "all" {
		kind, ok := game.ParseKind(name)
		if !ok {
			return goerr.Wrap(game.ErrUnknownGame, "unknown game", goerr.V("game", name))
		}
		kinds = []game.Kind{kind}
	}

	enc := json.NewEncoder(os.Stdout)
	seed := uint64(cmd.Int("seed"))
	for _, kind := range kinds {
		for i := 0; i < int(cmd.Int("runs")); i++ {
			runSeed := seed + uint64(i)
			b := newBot(runSeed, cmd.Float("accuracy"), cmd.Duration("reaction"), cmd.Duration("spread"), scenarios)

			clock := game.NewManualClock(time.Now())
			s, err := game.NewSession(games[kind],
				game.WithClock(clock),
				game.WithRand(game.NewSeededRand(runSeed)),
				game.WithLogger(log.With("game", kind, "run", i+1)),
				game.WithCatalog(scenarios),
				game.WithObserver(b.observe),
			)
			if err != nil {
				return err
			}

			sum, err := b.play(s, clock)
			s.Close()
			if err != nil {
				return goerr.Wrap(err, "simulation failed", goerr.V("game", kind), goerr.V("run", i+1))
			}

			if err := enc.Encode(result{Game: kind, Run: i + 1, Seed: runSeed, Summary: sum}); err != nil {
				return err
			}
			log.Info("run finished", "game", kind, "run", i+1, "score", sum.Score, "tier", sum.Tier)
		}
	}
	return nil
}
