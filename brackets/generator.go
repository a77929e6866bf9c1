package brackets

// Pairing is one first-round fixture between two placeholder team names.
type Pairing struct {
	Team1 string
	Team2 string
}

// Plan describes the first round of a bracket plus the planning numbers for
// the rest of it. Later rounds are not materialized up front; their fixtures
// depend on results.
type Plan struct {
	Pairings []Pairing
	// Rounds is how many rounds the bracket will take, counting the first.
	Rounds int
	// ByeTeam is set when the team count is odd: that team skips the first
	// round and enters in round two.
	ByeTeam string
}

type Generator interface {
	Plan(teamCount int) (*Plan, error)
	Name() string
}
