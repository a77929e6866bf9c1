package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/nexus-arena/backend/models"
)

type MatchPlayerRepository interface {
	// ListByMatch reads through the given executor so callers holding a row
	// lock on the match see a consistent snapshot.
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchPlayer, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
	BulkInsert(ctx context.Context, exec SQLExecutor, rows []*models.MatchPlayer) error
}

type postgresMatchPlayerRepository struct {
	db *sql.DB
}

func NewPostgresMatchPlayerRepository(db *sql.DB) MatchPlayerRepository {
	return &postgresMatchPlayerRepository{db: db}
}

func (r *postgresMatchPlayerRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchPlayer, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT id, match_id, player_id, team, score
		FROM match_players
		WHERE match_id = $1
		ORDER BY id ASC`

	rows, err := exec.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match players for match %d: %w", matchID, err)
	}
	defer rows.Close()

	result := make([]*models.MatchPlayer, 0)
	for rows.Next() {
		var mp models.MatchPlayer
		if err := rows.Scan(&mp.ID, &mp.MatchID, &mp.PlayerID, &mp.Team, &mp.Score); err != nil {
			return nil, fmt.Errorf("failed to scan match player row: %w", err)
		}
		result = append(result, &mp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match player rows iteration: %w", err)
	}
	return result, nil
}

func (r *postgresMatchPlayerRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	if exec == nil {
		exec = r.db
	}
	// Zero affected rows is fine here: first submission has nothing to purge.
	if _, err := exec.ExecContext(ctx, `DELETE FROM match_players WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to delete match players for match %d: %w", matchID, err)
	}
	return nil
}

func (r *postgresMatchPlayerRepository) BulkInsert(ctx context.Context, exec SQLExecutor, rows []*models.MatchPlayer) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO match_players (match_id, player_id, team, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for _, mp := range rows {
		err := exec.QueryRowContext(ctx, query, mp.MatchID, mp.PlayerID, mp.Team, mp.Score).Scan(&mp.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return fmt.Errorf("match player references missing row (constraint %s): %w", pqErr.Constraint, err)
			}
			return fmt.Errorf("failed to insert match player (match %d, player %d): %w", mp.MatchID, mp.PlayerID, err)
		}
	}
	return nil
}
