package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/nexus-arena/backend/models"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerUserConflict = errors.New("player already exists for user")
	ErrPlayerUserInvalid  = errors.New("player user reference invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByUserID(ctx context.Context, userID int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	// FilterByIDs returns the subset of the given ids that resolve to players.
	FilterByIDs(ctx context.Context, ids []int) (map[int]*models.Player, error)
	// ListTopRanked orders by total_points desc, wins desc, id asc.
	ListTopRanked(ctx context.Context, limit int) ([]*models.Player, error)
	// GetRank returns the player's 1-based leaderboard position.
	GetRank(ctx context.Context, playerID int) (int, error)
	// RecalculateStats rebuilds wins/losses/total_points from the player's
	// completed-match rows. A tie credits neither a win nor a loss.
	RecalculateStats(ctx context.Context, exec SQLExecutor, playerID int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, user_id, player_name, wins, losses, total_points, created_at`

func scanPlayer(row interface{ Scan(...interface{}) error }, p *models.Player) error {
	return row.Scan(
		&p.ID,
		&p.UserID,
		&p.PlayerName,
		&p.Wins,
		&p.Losses,
		&p.TotalPoints,
		&p.CreatedAt,
	)
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (user_id, player_name, wins, losses, total_points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.UserID,
		player.PlayerName,
		player.Wins,
		player.Losses,
		player.TotalPoints,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "players_user_id_key" {
					return ErrPlayerUserConflict
				}
			case "23503":
				if pqErr.Constraint == "players_user_id_fkey" {
					return ErrPlayerUserInvalid
				}
			}
		}
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	player := &models.Player{}
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, id), player); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) GetByUserID(ctx context.Context, userID int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE user_id = $1`

	player := &models.Player{}
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, userID), player); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by user id %d: %w", userID, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func (r *postgresPlayerRepository) FilterByIDs(ctx context.Context, ids []int) (map[int]*models.Player, error) {
	if len(ids) == 0 {
		return map[int]*models.Player{}, nil
	}

	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query players by ids: %w", err)
	}
	defer rows.Close()

	players, err := collectPlayers(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID, nil
}

func (r *postgresPlayerRepository) ListTopRanked(ctx context.Context, limit int) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		ORDER BY total_points DESC, wins DESC, id ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranked players: %w", err)
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func (r *postgresPlayerRepository) GetRank(ctx context.Context, playerID int) (int, error) {
	query := `
		SELECT rank FROM (
			SELECT id, RANK() OVER (ORDER BY total_points DESC, wins DESC, id ASC) AS rank
			FROM players
		) ranked
		WHERE id = $1`

	var rank int
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&rank)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPlayerNotFound
		}
		return 0, fmt.Errorf("failed to compute rank for player %d: %w", playerID, err)
	}
	return rank, nil
}

func (r *postgresPlayerRepository) RecalculateStats(ctx context.Context, exec SQLExecutor, playerID int) error {
	query := `
		UPDATE players p
		SET wins = s.wins, losses = s.losses, total_points = s.points
		FROM (
			SELECT
				COUNT(*) FILTER (WHERE (mp.team = 'team1' AND m.score_team1 > m.score_team2)
				              OR (mp.team = 'team2' AND m.score_team2 > m.score_team1)) AS wins,
				COUNT(*) FILTER (WHERE (mp.team = 'team1' AND m.score_team1 < m.score_team2)
				              OR (mp.team = 'team2' AND m.score_team2 < m.score_team1)) AS losses,
				COALESCE(SUM(mp.score), 0) AS points
			FROM match_players mp
			JOIN matches m ON m.id = mp.match_id
			WHERE mp.player_id = $1 AND m.status = 'Completed'
		) s
		WHERE p.id = $1`

	result, err := exec.ExecContext(ctx, query, playerID)
	if err != nil {
		return fmt.Errorf("failed to recalculate stats for player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func collectPlayers(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}
