package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nexus-arena/backend/brackets"
	"github.com/nexus-arena/backend/models"
	"github.com/nexus-arena/backend/repositories"
)

// defaultTeamCount is used when a tournament does not declare one.
const defaultTeamCount = 16

// FixturePlan is the outcome of fixture generation: the persisted first-round
// matches plus the planning numbers for the rest of the bracket.
type FixturePlan struct {
	Matches []*models.Match `json:"matches"`
	Rounds  int             `json:"rounds"`
	ByeTeam *string         `json:"bye_team,omitempty"`
}

type FixtureService interface {
	GenerateFixtures(ctx context.Context, tournamentID int) (*FixturePlan, error)
}

type fixtureService struct {
	tx             repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	logger         *slog.Logger
}

func NewFixtureService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) FixtureService {
	return &fixtureService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		logger:         logger,
	}
}

// GenerateFixtures seeds the first round of a single-elimination bracket for
// the tournament and persists all generated matches in one transaction.
func (s *fixtureService) GenerateFixtures(ctx context.Context, tournamentID int) (*FixturePlan, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	if tournament.Format != nil && *tournament.Format != models.FormatSingleElimination {
		return nil, fmt.Errorf("%w: tournament format is %q", ErrUnsupportedFormat, *tournament.Format)
	}

	teamCount := defaultTeamCount
	if tournament.NumberOfTeams != nil && *tournament.NumberOfTeams > 0 {
		teamCount = *tournament.NumberOfTeams
	}

	generator := brackets.NewSingleElimination()
	plan, err := generator.Plan(teamCount)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrNotEnoughTeams
		}
		return nil, fmt.Errorf("failed to plan bracket for tournament %d: %w", tournamentID, err)
	}

	matches := make([]*models.Match, 0, len(plan.Pairings))
	for _, pairing := range plan.Pairings {
		matches = append(matches, &models.Match{
			TournamentID: tournament.ID,
			Team1Name:    pairing.Team1,
			Team2Name:    pairing.Team2,
			ScheduledAt:  tournament.StartDate,
			Status:       models.MatchStatusScheduled,
		})
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, match := range matches {
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &FixturePlan{
		Matches: matches,
		Rounds:  plan.Rounds,
	}
	if plan.ByeTeam != "" {
		bye := plan.ByeTeam
		result.ByeTeam = &bye
	}

	s.logger.Info("fixtures generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", teamCount),
		slog.Int("matches", len(matches)),
		slog.Int("rounds", plan.Rounds),
	)
	return result, nil
}
