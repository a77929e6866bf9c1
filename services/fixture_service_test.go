package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nexus-arena/backend/models"
)

func newFixtureService(store *fakeStore) FixtureService {
	return NewFixtureService(
		&fakeTxManager{store: store},
		&fakeTournamentRepo{store: store},
		&fakeMatchRepo{store: store},
		discardLogger(),
	)
}

func intPtr(v int) *int { return &v }

func TestGenerateFixturesEightTeams(t *testing.T) {
	store := newFakeStore()
	format := models.FormatSingleElimination
	store.addTournament(&models.Tournament{ID: 1, Name: "Summer Cup", NumberOfTeams: intPtr(8), Format: &format})

	plan, err := newFixtureService(store).GenerateFixtures(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateFixtures returned error: %v", err)
	}

	if len(plan.Matches) != 4 {
		t.Fatalf("expected 4 first-round matches, got %d", len(plan.Matches))
	}
	if plan.Rounds != 3 {
		t.Fatalf("expected 3 rounds, got %d", plan.Rounds)
	}
	if plan.ByeTeam != nil {
		t.Fatalf("expected no bye for even field, got %q", *plan.ByeTeam)
	}

	for i, m := range plan.Matches {
		if m.ID == 0 {
			t.Fatalf("match %d was not persisted", i)
		}
		if m.TournamentID != 1 {
			t.Fatalf("match %d bound to tournament %d", i, m.TournamentID)
		}
		if m.Status != models.MatchStatusScheduled {
			t.Fatalf("match %d status %q", i, m.Status)
		}
	}
	if plan.Matches[0].Team1Name != "Team 1" || plan.Matches[0].Team2Name != "Team 2" {
		t.Fatalf("unexpected first pairing: %q vs %q", plan.Matches[0].Team1Name, plan.Matches[0].Team2Name)
	}
	if plan.Matches[3].Team1Name != "Team 7" || plan.Matches[3].Team2Name != "Team 8" {
		t.Fatalf("unexpected last pairing: %q vs %q", plan.Matches[3].Team1Name, plan.Matches[3].Team2Name)
	}

	persisted, err := (&fakeMatchRepo{store: store}).List(context.Background(), intPtr(1))
	if err != nil {
		t.Fatalf("failed to list persisted matches: %v", err)
	}
	if len(persisted) != 4 {
		t.Fatalf("expected 4 persisted matches, got %d", len(persisted))
	}
}

func TestGenerateFixturesOddFieldGetsBye(t *testing.T) {
	store := newFakeStore()
	store.addTournament(&models.Tournament{ID: 1, Name: "Summer Cup", NumberOfTeams: intPtr(5)})

	plan, err := newFixtureService(store).GenerateFixtures(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateFixtures returned error: %v", err)
	}
	if len(plan.Matches) != 2 {
		t.Fatalf("expected 2 matches for 5 teams, got %d", len(plan.Matches))
	}
	if plan.ByeTeam == nil || *plan.ByeTeam != "Team 5" {
		t.Fatalf("expected Team 5 to receive the bye, got %v", plan.ByeTeam)
	}
}

func TestGenerateFixturesDefaultsToSixteenTeams(t *testing.T) {
	store := newFakeStore()
	store.addTournament(&models.Tournament{ID: 1, Name: "Summer Cup"})

	plan, err := newFixtureService(store).GenerateFixtures(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateFixtures returned error: %v", err)
	}
	if len(plan.Matches) != 8 {
		t.Fatalf("expected 8 matches for the default field, got %d", len(plan.Matches))
	}
	if plan.Rounds != 4 {
		t.Fatalf("expected 4 rounds, got %d", plan.Rounds)
	}
}

func TestGenerateFixturesErrors(t *testing.T) {
	t.Run("unknown tournament", func(t *testing.T) {
		store := newFakeStore()
		_, err := newFixtureService(store).GenerateFixtures(context.Background(), 42)
		if !errors.Is(err, ErrTournamentNotFound) {
			t.Fatalf("expected ErrTournamentNotFound, got %v", err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		store := newFakeStore()
		format := models.FormatRoundRobin
		store.addTournament(&models.Tournament{ID: 1, Name: "League", Format: &format})

		_, err := newFixtureService(store).GenerateFixtures(context.Background(), 1)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("too few teams", func(t *testing.T) {
		store := newFakeStore()
		store.addTournament(&models.Tournament{ID: 1, Name: "Duel", NumberOfTeams: intPtr(1)})

		_, err := newFixtureService(store).GenerateFixtures(context.Background(), 1)
		if !errors.Is(err, ErrNotEnoughTeams) {
			t.Fatalf("expected ErrNotEnoughTeams, got %v", err)
		}
	})
}
