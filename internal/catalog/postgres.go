package catalog

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"

	"reflex_drills/internal/game"
)

// PostgresSource reads the catalog from the scenarios table.
type PostgresSource struct {
	db *pgxpool.Pool
}

func NewPostgresSource(db *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Load(ctx context.Context) ([]game.Scenario, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, player, defenders, teammates, action, reasoning
		 FROM scenarios
		 ORDER BY position, id`,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query scenarios")
	}
	defer rows.Close()

	var res []game.Scenario
	for rows.Next() {
		var (
			sc                  game.Scenario
			action              string
			player, defs, mates []byte
		)
		if err := rows.Scan(&sc.ID, &player, &defs, &mates, &action, &sc.Reasoning); err != nil {
			return nil, goerr.Wrap(err, "failed to scan scenario")
		}
		if err := json.Unmarshal(player, &sc.Player); err != nil {
			return nil, goerr.Wrap(err, "bad player position", goerr.V("id", sc.ID))
		}
		if err := json.Unmarshal(defs, &sc.Defenders); err != nil {
			return nil, goerr.Wrap(err, "bad defender positions", goerr.V("id", sc.ID))
		}
		if err := json.Unmarshal(mates, &sc.Teammates); err != nil {
			return nil, goerr.Wrap(err, "bad teammate positions", goerr.V("id", sc.ID))
		}
		sc.Action = game.Action(action)
		res = append(res, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read scenarios")
	}

	if err := Validate(res); err != nil {
		return nil, err
	}
	return res, nil
}
