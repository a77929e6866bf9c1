package brackets

import (
	"errors"
	"testing"
)

func TestSingleEliminationPlan(t *testing.T) {
	tests := []struct {
		name      string
		teamCount int
		pairings  int
		rounds    int
		byeTeam   string
	}{
		{name: "two teams", teamCount: 2, pairings: 1, rounds: 1},
		{name: "four teams", teamCount: 4, pairings: 2, rounds: 2},
		{name: "eight teams", teamCount: 8, pairings: 4, rounds: 3},
		{name: "sixteen teams", teamCount: 16, pairings: 8, rounds: 4},
		{name: "three teams gets a bye", teamCount: 3, pairings: 1, rounds: 2, byeTeam: "Team 3"},
		{name: "five teams gets a bye", teamCount: 5, pairings: 2, rounds: 3, byeTeam: "Team 5"},
		{name: "seven teams gets a bye", teamCount: 7, pairings: 3, rounds: 3, byeTeam: "Team 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewSingleElimination().Plan(tt.teamCount)
			if err != nil {
				t.Fatalf("Plan(%d) returned error: %v", tt.teamCount, err)
			}
			if len(plan.Pairings) != tt.pairings {
				t.Fatalf("expected %d pairings, got %d", tt.pairings, len(plan.Pairings))
			}
			if plan.Rounds != tt.rounds {
				t.Fatalf("expected %d rounds, got %d", tt.rounds, plan.Rounds)
			}
			if plan.ByeTeam != tt.byeTeam {
				t.Fatalf("expected bye team %q, got %q", tt.byeTeam, plan.ByeTeam)
			}
		})
	}
}

func TestSingleEliminationPairsEveryTeamOnce(t *testing.T) {
	plan, err := NewSingleElimination().Plan(8)
	if err != nil {
		t.Fatalf("Plan(8) returned error: %v", err)
	}

	seen := make(map[string]bool)
	for _, p := range plan.Pairings {
		for _, team := range []string{p.Team1, p.Team2} {
			if seen[team] {
				t.Fatalf("team %q appears in more than one pairing", team)
			}
			seen[team] = true
		}
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct teams across pairings, got %d", len(seen))
	}
}

func TestSingleEliminationSequentialPairing(t *testing.T) {
	plan, err := NewSingleElimination().Plan(4)
	if err != nil {
		t.Fatalf("Plan(4) returned error: %v", err)
	}

	want := []Pairing{
		{Team1: "Team 1", Team2: "Team 2"},
		{Team1: "Team 3", Team2: "Team 4"},
	}
	for i, p := range plan.Pairings {
		if p != want[i] {
			t.Fatalf("pairing %d: expected %+v, got %+v", i, want[i], p)
		}
	}
}

func TestSingleEliminationNotEnoughTeams(t *testing.T) {
	for _, teamCount := range []int{-1, 0, 1} {
		if _, err := NewSingleElimination().Plan(teamCount); !errors.Is(err, ErrNotEnoughTeams) {
			t.Fatalf("Plan(%d): expected ErrNotEnoughTeams, got %v", teamCount, err)
		}
	}
}
