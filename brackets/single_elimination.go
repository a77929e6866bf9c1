package brackets

import (
	"errors"
	"fmt"
)

var ErrNotEnoughTeams = errors.New("not enough teams to generate a single elimination bracket (minimum 2)")

type SingleElimination struct{}

func NewSingleElimination() Generator {
	return &SingleElimination{}
}

func (g *SingleElimination) Name() string {
	return "SingleElimination"
}

// Plan pairs teams sequentially (team 1 vs team 2, team 3 vs team 4, ...)
// into floor(n/2) first-round fixtures. With an odd team count the
// highest-numbered team receives a bye into round two instead of being
// dropped.
func (g *SingleElimination) Plan(teamCount int) (*Plan, error) {
	if teamCount < 2 {
		return nil, ErrNotEnoughTeams
	}

	pairings := make([]Pairing, 0, teamCount/2)
	for i := 0; i < teamCount/2; i++ {
		pairings = append(pairings, Pairing{
			Team1: teamName(i*2 + 1),
			Team2: teamName(i*2 + 2),
		})
	}

	plan := &Plan{
		Pairings: pairings,
		Rounds:   roundCount(teamCount),
	}
	if teamCount%2 != 0 {
		plan.ByeTeam = teamName(teamCount)
	}
	return plan, nil
}

// roundCount halves the field repeatedly until one team remains, carrying
// byes upward, which makes it ceil(log2(n)).
func roundCount(teamCount int) int {
	rounds := 0
	for remaining := teamCount; remaining > 1; remaining = (remaining + 1) / 2 {
		rounds++
	}
	return rounds
}

func teamName(n int) string {
	return fmt.Sprintf("Team %d", n)
}
