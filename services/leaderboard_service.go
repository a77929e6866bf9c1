package services

import (
	"context"
	"fmt"

	"github.com/nexus-arena/backend/repositories"
)

// leaderboardLimit bounds the leaderboard to the top entries.
const leaderboardLimit = 50

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID int    `json:"player_id"`
	Player   string `json:"player"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Points   int    `json:"points"`
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}

type leaderboardService struct {
	playerRepo repositories.PlayerRepository
}

func NewLeaderboardService(playerRepo repositories.PlayerRepository) LeaderboardService {
	return &leaderboardService{playerRepo: playerRepo}
}

// GetLeaderboard orders players by total points, then wins, then player id so
// the ordering is reproducible when both sort keys tie.
func (s *leaderboardService) GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	players, err := s.playerRepo.ListTopRanked(ctx, leaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranked players: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(players))
	for i, p := range players {
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			PlayerID: p.ID,
			Player:   p.PlayerName,
			Wins:     p.Wins,
			Losses:   p.Losses,
			Points:   p.TotalPoints,
		})
	}
	return entries, nil
}
