package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexus-arena/backend/models"
	"github.com/nexus-arena/backend/repositories"
	"golang.org/x/sync/errgroup"
)

const profileRecentMatches = 10

// PlayerProfile is the player dashboard view: the profile row, the player's
// leaderboard position, and their most recent completed matches.
type PlayerProfile struct {
	Player        *models.Player  `json:"player"`
	Rank          int             `json:"rank"`
	RecentMatches []*models.Match `json:"recent_matches"`
}

type PlayerService interface {
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	// GetProfile resolves the player profile owned by the given user.
	GetProfile(ctx context.Context, userID int) (*PlayerProfile, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository, matchRepo repositories.MatchRepository) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
	}
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) GetProfile(ctx context.Context, userID int) (*PlayerProfile, error) {
	player, err := s.playerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player for user %d: %w", userID, err)
	}

	profile := &PlayerProfile{Player: player}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rank, err := s.playerRepo.GetRank(gCtx, player.ID)
		if err != nil {
			return fmt.Errorf("failed to compute rank for player %d: %w", player.ID, err)
		}
		profile.Rank = rank
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListCompletedByPlayer(gCtx, player.ID, profileRecentMatches)
		if err != nil {
			return fmt.Errorf("failed to load recent matches for player %d: %w", player.ID, err)
		}
		profile.RecentMatches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return profile, nil
}
