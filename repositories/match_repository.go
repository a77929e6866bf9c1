package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/nexus-arena/backend/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament reference invalid")
	// ErrRoomCodeTaken reports a unique-constraint violation on the room code.
	// The allocator treats it as a signal to regenerate and retry.
	ErrRoomCodeTaken = errors.New("room code already taken")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetByIDForUpdate locks the match row for the duration of the
	// surrounding transaction, serializing result submissions per match.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByRoomCode(ctx context.Context, code string) (*models.Match, error)
	List(ctx context.Context, tournamentID *int) ([]*models.Match, error)
	ListPendingWithRoomCode(ctx context.Context) ([]*models.Match, error)
	ListRecentCompleted(ctx context.Context, limit int) ([]*models.Match, error)
	ListCompletedByPlayer(ctx context.Context, playerID int, limit int) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	SetRoomCode(ctx context.Context, id int, code string) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreTeam1, scoreTeam2 int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, team1_name, team2_name, scheduled_at, status, room_code, score_team1, score_team2, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Team1Name,
		&m.Team2Name,
		&m.ScheduledAt,
		&m.Status,
		&m.RoomCode,
		&m.ScoreTeam1,
		&m.ScoreTeam2,
		&m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO matches (tournament_id, team1_name, team2_name, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.Team1Name,
		match.Team2Name,
		match.ScheduledAt,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "matches_tournament_id_fkey" {
				return ErrMatchTournamentInvalid
			}
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`

	match := &models.Match{}
	if err := scanMatch(exec.QueryRowContext(ctx, query, id), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to lock match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByRoomCode(ctx context.Context, code string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE room_code = $1`

	match := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, code), match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by room code: %w", err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, tournamentID *int) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches`)

	args := []interface{}{}
	if tournamentID != nil {
		queryBuilder.WriteString(" WHERE tournament_id = $" + strconv.Itoa(1))
		args = append(args, *tournamentID)
	}
	queryBuilder.WriteString(" ORDER BY id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListPendingWithRoomCode(ctx context.Context) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE status IN ($1, $2) AND room_code IS NOT NULL
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.MatchStatusScheduled, models.MatchStatusLive)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListRecentCompleted(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE status = $1
		ORDER BY scheduled_at DESC NULLS LAST, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, models.MatchStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListCompletedByPlayer(ctx context.Context, playerID int, limit int) ([]*models.Match, error) {
	query := `
		SELECT m.id, m.tournament_id, m.team1_name, m.team2_name, m.scheduled_at,
		       m.status, m.room_code, m.score_team1, m.score_team2, m.created_at
		FROM matches m
		JOIN match_players mp ON mp.match_id = m.id
		WHERE mp.player_id = $1 AND m.status = $2
		ORDER BY m.scheduled_at DESC NULLS LAST, m.id DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, playerID, models.MatchStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for player %d: %w", playerID, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET team1_name = $1, team2_name = $2, scheduled_at = $3, status = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		match.Team1Name,
		match.Team2Name,
		match.ScheduledAt,
		match.Status,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetRoomCode(ctx context.Context, id int, code string) error {
	query := `UPDATE matches SET room_code = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, code, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "matches_room_code_key" {
				return ErrRoomCodeTaken
			}
		}
		return fmt.Errorf("failed to set room code for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreTeam1, scoreTeam2 int) error {
	query := `
		UPDATE matches
		SET score_team1 = $1, score_team2 = $2, status = $3
		WHERE id = $4`

	result, err := exec.ExecContext(ctx, query, scoreTeam1, scoreTeam2, models.MatchStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to record result for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}
