package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nexus-arena/backend/models"
	"github.com/nexus-arena/backend/storage"
)

type fakeUploader struct {
	uploads []string
	baseURL string
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, err
	}
	u.uploads = append(u.uploads, key)
	return &storage.UploadResult{Key: key}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (u *fakeUploader) GetPublicURL(key string) string { return u.baseURL + "/" + key }

func newTournamentFixture(uploader storage.FileUploader) (*fakeStore, TournamentService) {
	store := newFakeStore()
	svc := NewTournamentService(
		&fakeTournamentRepo{store: store},
		&fakeMatchRepo{store: store},
		uploader,
		discardLogger(),
	)
	return store, svc
}

func TestCreateTournament(t *testing.T) {
	t.Run("starts in planning", func(t *testing.T) {
		_, svc := newTournamentFixture(nil)
		got, err := svc.CreateTournament(context.Background(), CreateTournamentInput{Name: "Summer Cup"})
		if err != nil {
			t.Fatalf("CreateTournament returned error: %v", err)
		}
		if got.Status != models.TournamentStatusPlanning {
			t.Fatalf("expected Planning status, got %q", got.Status)
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		_, svc := newTournamentFixture(nil)
		if _, err := svc.CreateTournament(context.Background(), CreateTournamentInput{}); !errors.Is(err, ErrTournamentNameRequired) {
			t.Fatalf("expected ErrTournamentNameRequired, got %v", err)
		}
	})

	t.Run("rejects non-positive team counts", func(t *testing.T) {
		_, svc := newTournamentFixture(nil)
		_, err := svc.CreateTournament(context.Background(), CreateTournamentInput{Name: "Cup", NumberOfTeams: intPtr(0)})
		if !errors.Is(err, ErrTournamentInvalidTeams) {
			t.Fatalf("expected ErrTournamentInvalidTeams, got %v", err)
		}
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		_, svc := newTournamentFixture(nil)
		bogus := models.TournamentFormat("Ladder")
		_, err := svc.CreateTournament(context.Background(), CreateTournamentInput{Name: "Cup", Format: &bogus})
		if !errors.Is(err, ErrTournamentInvalidFormat) {
			t.Fatalf("expected ErrTournamentInvalidFormat, got %v", err)
		}
	})
}

func TestGetTournamentIncludesMatches(t *testing.T) {
	store, svc := newTournamentFixture(nil)
	store.addTournament(&models.Tournament{ID: 1, Name: "Summer Cup", Status: models.TournamentStatusActive})
	store.addMatch(&models.Match{TournamentID: 1, Team1Name: "A", Team2Name: "B"})
	store.addMatch(&models.Match{TournamentID: 1, Team1Name: "C", Team2Name: "D"})
	store.addMatch(&models.Match{TournamentID: 2, Team1Name: "E", Team2Name: "F"})

	got, err := svc.GetTournament(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetTournament returned error: %v", err)
	}
	if len(got.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got.Matches))
	}

	if _, err := svc.GetTournament(context.Background(), 42); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}

func TestUpdateTournamentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.TournamentStatus
		to      models.TournamentStatus
		allowed bool
	}{
		{"planning to active", models.TournamentStatusPlanning, models.TournamentStatusActive, true},
		{"active to completed", models.TournamentStatusActive, models.TournamentStatusCompleted, true},
		{"same status is a no-op", models.TournamentStatusActive, models.TournamentStatusActive, true},
		{"planning cannot skip to completed", models.TournamentStatusPlanning, models.TournamentStatusCompleted, false},
		{"completed cannot reopen", models.TournamentStatusCompleted, models.TournamentStatusActive, false},
		{"active cannot revert to planning", models.TournamentStatusActive, models.TournamentStatusPlanning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, svc := newTournamentFixture(nil)
			store.addTournament(&models.Tournament{ID: 1, Name: "Cup", Status: tt.from})

			got, err := svc.UpdateTournament(context.Background(), 1, UpdateTournamentInput{Status: &tt.to})
			if tt.allowed {
				if err != nil {
					t.Fatalf("expected transition to succeed, got %v", err)
				}
				if got.Status != tt.to {
					t.Fatalf("expected status %q, got %q", tt.to, got.Status)
				}
				return
			}
			if !errors.Is(err, ErrTournamentInvalidStatusTransition) {
				t.Fatalf("expected ErrTournamentInvalidStatusTransition, got %v", err)
			}
		})
	}
}

func TestUploadBanner(t *testing.T) {
	t.Run("stores banner and exposes public url", func(t *testing.T) {
		uploader := &fakeUploader{baseURL: "https://cdn.example.com"}
		store, svc := newTournamentFixture(uploader)
		store.addTournament(&models.Tournament{ID: 1, Name: "Cup"})

		got, err := svc.UploadBanner(context.Background(), 1, "image/png", strings.NewReader("png-bytes"))
		if err != nil {
			t.Fatalf("UploadBanner returned error: %v", err)
		}
		if len(uploader.uploads) != 1 || uploader.uploads[0] != "tournaments/1/banner" {
			t.Fatalf("unexpected uploads: %v", uploader.uploads)
		}
		if got.BannerURL == nil || *got.BannerURL != "https://cdn.example.com/tournaments/1/banner" {
			t.Fatalf("unexpected banner url: %v", got.BannerURL)
		}
	})

	t.Run("without storage configured", func(t *testing.T) {
		store, svc := newTournamentFixture(nil)
		store.addTournament(&models.Tournament{ID: 1, Name: "Cup"})

		_, err := svc.UploadBanner(context.Background(), 1, "image/png", strings.NewReader("png-bytes"))
		if !errors.Is(err, ErrBannerStorageUnavailable) {
			t.Fatalf("expected ErrBannerStorageUnavailable, got %v", err)
		}
	})
}
