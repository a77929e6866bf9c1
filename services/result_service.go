package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/nexus-arena/backend/brackets"
	"github.com/nexus-arena/backend/models"
	"github.com/nexus-arena/backend/repositories"
)

type PlayerScoreInput struct {
	PlayerID int `json:"player_id"`
	Score    int `json:"score"`
}

type MatchResultInput struct {
	ScoreTeam1   int                `json:"score_team1"`
	ScoreTeam2   int                `json:"score_team2"`
	Team1Players []PlayerScoreInput `json:"team1_players"`
	Team2Players []PlayerScoreInput `json:"team2_players"`
}

// ResultService validates referee-submitted results and reconciles them into
// persistent state: match outcome, per-player score rows, and cumulative
// player stats, all in one transaction.
type ResultService interface {
	SubmitResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error)
}

type resultService struct {
	tx              repositories.TxManager
	matchRepo       repositories.MatchRepository
	matchPlayerRepo repositories.MatchPlayerRepository
	playerRepo      repositories.PlayerRepository
	hub             *brackets.Hub
	logger          *slog.Logger
}

func NewResultService(
	tx repositories.TxManager,
	matchRepo repositories.MatchRepository,
	matchPlayerRepo repositories.MatchPlayerRepository,
	playerRepo repositories.PlayerRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		tx:              tx,
		matchRepo:       matchRepo,
		matchPlayerRepo: matchPlayerRepo,
		playerRepo:      playerRepo,
		hub:             hub,
		logger:          logger,
	}
}

func (s *resultService) SubmitResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error) {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	// All validation happens before any mutating step.
	if err := validateScoreSums(input); err != nil {
		return nil, err
	}
	if err := validateDistinctPlayers(input); err != nil {
		return nil, err
	}
	if err := s.checkPlayersExist(ctx, input); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// The row lock serializes concurrent submissions for this match.
		if _, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID); err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		// Capture who was on the previous submission, if any, so their stats
		// get rebuilt even when a correction drops them from the result.
		previous, err := s.matchPlayerRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		if err := s.matchRepo.UpdateResult(ctx, exec, matchID, input.ScoreTeam1, input.ScoreTeam2); err != nil {
			return err
		}

		if err := s.matchPlayerRepo.DeleteByMatch(ctx, exec, matchID); err != nil {
			return err
		}

		rows := make([]*models.MatchPlayer, 0, len(input.Team1Players)+len(input.Team2Players))
		for _, ps := range input.Team1Players {
			rows = append(rows, &models.MatchPlayer{
				MatchID:  matchID,
				PlayerID: ps.PlayerID,
				Team:     models.SideTeam1,
				Score:    ps.Score,
			})
		}
		for _, ps := range input.Team2Players {
			rows = append(rows, &models.MatchPlayer{
				MatchID:  matchID,
				PlayerID: ps.PlayerID,
				Team:     models.SideTeam2,
				Score:    ps.Score,
			})
		}
		if err := s.matchPlayerRepo.BulkInsert(ctx, exec, rows); err != nil {
			return err
		}

		// Rebuild aggregates from full history instead of applying deltas, so
		// a resubmitted correction can never double-count.
		for _, playerID := range affectedPlayerIDs(previous, input) {
			if err := s.playerRepo.RecalculateStats(ctx, exec, playerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match %d after result: %w", matchID, err)
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("score_team1", input.ScoreTeam1),
		slog.Int("score_team2", input.ScoreTeam2),
	)

	if s.hub != nil {
		s.hub.BroadcastToRoom(tournamentRoom(updated.TournamentID), brackets.Message{
			Type:    brackets.EventMatchResult,
			Payload: updated,
		})
	}

	return updated, nil
}

// validateScoreSums checks each side's per-player scores against the claimed
// team total and reports every failing side, not just the first.
func validateScoreSums(input MatchResultInput) error {
	var team1Err, team2Err error

	if sum := sumScores(input.Team1Players); sum != input.ScoreTeam1 {
		team1Err = &ScoreMismatchError{Side: models.SideTeam1, Claimed: input.ScoreTeam1, Sum: sum}
	}
	if sum := sumScores(input.Team2Players); sum != input.ScoreTeam2 {
		team2Err = &ScoreMismatchError{Side: models.SideTeam2, Claimed: input.ScoreTeam2, Sum: sum}
	}

	return errors.Join(team1Err, team2Err)
}

// validateDistinctPlayers rejects submissions that list a player more than
// once. A duplicate row would be counted twice by the stat recompute, letting
// a single match credit two wins.
func validateDistinctPlayers(input MatchResultInput) error {
	counts := make(map[int]int, len(input.Team1Players)+len(input.Team2Players))
	for _, ps := range input.Team1Players {
		counts[ps.PlayerID]++
	}
	for _, ps := range input.Team2Players {
		counts[ps.PlayerID]++
	}

	duplicates := make([]int, 0)
	for id, n := range counts {
		if n > 1 {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) > 0 {
		sort.Ints(duplicates)
		return &DuplicatePlayersError{IDs: duplicates}
	}
	return nil
}

func (s *resultService) checkPlayersExist(ctx context.Context, input MatchResultInput) error {
	ids := make([]int, 0, len(input.Team1Players)+len(input.Team2Players))
	for _, ps := range input.Team1Players {
		ids = append(ids, ps.PlayerID)
	}
	for _, ps := range input.Team2Players {
		ids = append(ids, ps.PlayerID)
	}

	found, err := s.playerRepo.FilterByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve player ids: %w", err)
	}

	missing := make([]int, 0)
	seen := make(map[int]bool)
	for _, id := range ids {
		if _, ok := found[id]; !ok && !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return &PlayersNotFoundError{IDs: missing}
	}
	return nil
}

func sumScores(players []PlayerScoreInput) int {
	sum := 0
	for _, ps := range players {
		sum += ps.Score
	}
	return sum
}

// affectedPlayerIDs is the union of the previous submission's participants
// and the new one's, deduplicated and ordered for deterministic lock order.
func affectedPlayerIDs(previous []*models.MatchPlayer, input MatchResultInput) []int {
	seen := make(map[int]bool)
	ids := make([]int, 0, len(previous)+len(input.Team1Players)+len(input.Team2Players))

	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, mp := range previous {
		add(mp.PlayerID)
	}
	for _, ps := range input.Team1Players {
		add(ps.PlayerID)
	}
	for _, ps := range input.Team2Players {
		add(ps.PlayerID)
	}

	sort.Ints(ids)
	return ids
}

func tournamentRoom(tournamentID int) string {
	return "tournament_" + strconv.Itoa(tournamentID)
}
