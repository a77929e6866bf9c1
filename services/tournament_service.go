package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nexus-arena/backend/models"
	"github.com/nexus-arena/backend/repositories"
	"github.com/nexus-arena/backend/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name          string                   `json:"name"`
	StartDate     *time.Time               `json:"start_date,omitempty"`
	NumberOfTeams *int                     `json:"number_of_teams,omitempty"`
	Format        *models.TournamentFormat `json:"format,omitempty"`
}

type UpdateTournamentInput struct {
	Name          *string                  `json:"name,omitempty"`
	StartDate     *time.Time               `json:"start_date,omitempty"`
	NumberOfTeams *int                     `json:"number_of_teams,omitempty"`
	Format        *models.TournamentFormat `json:"format,omitempty"`
	Status        *models.TournamentStatus `json:"status,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	UploadBanner(ctx context.Context, id int, contentType string, data io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.NumberOfTeams != nil && *input.NumberOfTeams <= 0 {
		return nil, ErrTournamentInvalidTeams
	}
	if input.Format != nil && !input.Format.Valid() {
		return nil, ErrTournamentInvalidFormat
	}

	tournament := &models.Tournament{
		Name:          input.Name,
		StartDate:     input.StartDate,
		NumberOfTeams: input.NumberOfTeams,
		Format:        input.Format,
		Status:        models.TournamentStatusPlanning,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

// GetTournament loads the tournament and its matches in parallel.
func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	var (
		tournament *models.Tournament
		matches    []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to load tournament %d: %w", id, err)
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		tournamentID := id
		m, err := s.matchRepo.List(gCtx, &tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load matches for tournament %d: %w", id, err)
		}
		matches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Matches = make([]models.Match, len(matches))
	for i, m := range matches {
		tournament.Matches[i] = *m
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, t := range tournaments {
		s.populateBannerURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = *input.Name
	}
	if input.StartDate != nil {
		tournament.StartDate = input.StartDate
	}
	if input.NumberOfTeams != nil {
		if *input.NumberOfTeams <= 0 {
			return nil, ErrTournamentInvalidTeams
		}
		tournament.NumberOfTeams = input.NumberOfTeams
	}
	if input.Format != nil {
		if !input.Format.Valid() {
			return nil, ErrTournamentInvalidFormat
		}
		tournament.Format = input.Format
	}
	if input.Status != nil {
		if !input.Status.Valid() || !isValidStatusTransition(tournament.Status, *input.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, *input.Status)
		}
		tournament.Status = *input.Status
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) UploadBanner(ctx context.Context, id int, contentType string, data io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrBannerStorageUnavailable
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	key := fmt.Sprintf("tournaments/%d/banner", id)
	if _, err := s.uploader.Upload(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("failed to upload banner for tournament %d: %w", id, err)
	}

	if err := s.tournamentRepo.UpdateBannerKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("failed to store banner key for tournament %d: %w", id, err)
	}

	tournament.BannerKey = &key
	s.populateBannerURL(tournament)
	s.logger.Info("tournament banner uploaded", slog.Int("tournament_id", id), slog.String("key", key))
	return tournament, nil
}

func (s *tournamentService) populateBannerURL(t *models.Tournament) {
	if t == nil || t.BannerKey == nil || *t.BannerKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.BannerKey); url != "" {
		t.BannerURL = &url
	}
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentStatusPlanning:  {models.TournamentStatusActive},
		models.TournamentStatusActive:    {models.TournamentStatusCompleted},
		models.TournamentStatusCompleted: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}
