package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "Scheduled"
	MatchStatusLive      MatchStatus = "Live"
	MatchStatusCompleted MatchStatus = "Completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusLive, MatchStatusCompleted:
		return true
	}
	return false
}

// Match is a fixture between two teams inside a tournament. RoomCode, when
// set, is unique across all matches; team scores are present only once the
// match is Completed.
type Match struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	Team1Name    string      `json:"team1_name"`
	Team2Name    string      `json:"team2_name"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty"`
	Status       MatchStatus `json:"status"`
	RoomCode     *string     `json:"room_code,omitempty"`
	ScoreTeam1   *int        `json:"score_team1,omitempty"`
	ScoreTeam2   *int        `json:"score_team2,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
