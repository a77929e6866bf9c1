package models

import "time"

// Player is the competitive profile owned by a user. The cumulative counters
// are maintained exclusively by the result reconciliation service.
type Player struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	PlayerName  string    `json:"player_name"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	TotalPoints int       `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
}
