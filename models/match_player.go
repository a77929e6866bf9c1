package models

// TeamSide tags which of the two competing teams a per-player score belongs to.
type TeamSide string

const (
	SideTeam1 TeamSide = "team1"
	SideTeam2 TeamSide = "team2"
)

// MatchPlayer is one player's score contribution to a match. The set of rows
// for a match, partitioned by side, sums exactly to the match's team scores.
type MatchPlayer struct {
	ID       int      `json:"id"`
	MatchID  int      `json:"match_id"`
	PlayerID int      `json:"player_id"`
	Team     TeamSide `json:"team"`
	Score    int      `json:"score"`
}
