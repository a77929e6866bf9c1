package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexus-arena/backend/brackets"
	"github.com/nexus-arena/backend/models"
	"github.com/nexus-arena/backend/repositories"
)

const (
	roomCodeLength      = 6
	roomCodeCharset     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeMaxAttempts = 5

	recentCompletedLimit = 10
)

type CreateMatchInput struct {
	TournamentID int        `json:"tournament_id"`
	Team1Name    string     `json:"team1_name"`
	Team2Name    string     `json:"team2_name"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
}

type UpdateMatchInput struct {
	Team1Name   *string             `json:"team1_name,omitempty"`
	Team2Name   *string             `json:"team2_name,omitempty"`
	ScheduledAt *time.Time          `json:"scheduled_at,omitempty"`
	Status      *models.MatchStatus `json:"status,omitempty"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID *int) ([]*models.Match, error)
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	ListPendingForReferee(ctx context.Context) ([]*models.Match, error)
	ListRecentCompleted(ctx context.Context) ([]*models.Match, error)
	// AssignRoomCode binds a fresh short code to the match, retrying on
	// uniqueness collisions; the database constraint is the final arbiter.
	AssignRoomCode(ctx context.Context, matchID int) (*models.Match, error)
	// ValidateRoomCode resolves a referee-entered code to its match.
	ValidateRoomCode(ctx context.Context, code string) (*models.Match, error)
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.Team1Name == "" || input.Team2Name == "" {
		return nil, ErrMatchTeamsRequired
	}

	if _, err := s.tournamentRepo.GetByID(ctx, input.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}

	match := &models.Match{
		TournamentID: input.TournamentID,
		Team1Name:    input.Team1Name,
		Team2Name:    input.Team2Name,
		ScheduledAt:  input.ScheduledAt,
		Status:       models.MatchStatusScheduled,
	}
	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		if errors.Is(err, repositories.ErrMatchTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID *int) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	match, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Team1Name != nil {
		if *input.Team1Name == "" {
			return nil, ErrMatchTeamsRequired
		}
		match.Team1Name = *input.Team1Name
	}
	if input.Team2Name != nil {
		if *input.Team2Name == "" {
			return nil, ErrMatchTeamsRequired
		}
		match.Team2Name = *input.Team2Name
	}
	if input.ScheduledAt != nil {
		match.ScheduledAt = input.ScheduledAt
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrMatchInvalidStatus
		}
		match.Status = *input.Status
	}

	if err := s.matchRepo.Update(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListPendingForReferee(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListPendingWithRoomCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) ListRecentCompleted(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListRecentCompleted(ctx, recentCompletedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) AssignRoomCode(ctx context.Context, matchID int) (*models.Match, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= roomCodeMaxAttempts; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		err = s.matchRepo.SetRoomCode(ctx, matchID, code)
		if err == nil {
			match, err := s.GetMatch(ctx, matchID)
			if err != nil {
				return nil, err
			}
			s.logger.Info("room code assigned", slog.Int("match_id", matchID), slog.Int("attempt", attempt))
			if s.hub != nil {
				s.hub.BroadcastToRoom(tournamentRoom(match.TournamentID), brackets.Message{
					Type:    brackets.EventRoomCode,
					Payload: match,
				})
			}
			return match, nil
		}
		if errors.Is(err, repositories.ErrRoomCodeTaken) {
			// Another allocation won the race for this code; draw again.
			continue
		}
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to assign room code to match %d: %w", matchID, err)
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrRoomCodeAllocation, roomCodeMaxAttempts)
}

func (s *matchService) ValidateRoomCode(ctx context.Context, code string) (*models.Match, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrMatchNotFound
	}

	match, err := s.matchRepo.GetByRoomCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to resolve room code: %w", err)
	}
	return match, nil
}

func generateRoomCode() (string, error) {
	// Reject bytes past the largest multiple of the charset size so every
	// character is drawn uniformly.
	const limit = 256 - 256%len(roomCodeCharset)

	code := make([]byte, 0, roomCodeLength)
	buf := make([]byte, roomCodeLength*2)
	for len(code) < roomCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, roomCodeCharset[int(b)%len(roomCodeCharset)])
			if len(code) == roomCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
