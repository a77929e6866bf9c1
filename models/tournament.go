package models

import "time"

// TournamentStatus matches the ENUM values stored in the database.
type TournamentStatus string

const (
	TournamentStatusPlanning  TournamentStatus = "Planning"
	TournamentStatusActive    TournamentStatus = "Active"
	TournamentStatusCompleted TournamentStatus = "Completed"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusPlanning, TournamentStatusActive, TournamentStatusCompleted:
		return true
	}
	return false
}

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "Single Elimination"
	FormatDoubleElimination TournamentFormat = "Double Elimination"
	FormatRoundRobin        TournamentFormat = "Round Robin"
	FormatSwissSystem       TournamentFormat = "Swiss System"
)

func (f TournamentFormat) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin, FormatSwissSystem:
		return true
	}
	return false
}

type Tournament struct {
	ID            int               `json:"id"`
	Name          string            `json:"name"`
	StartDate     *time.Time        `json:"start_date,omitempty"`
	NumberOfTeams *int              `json:"number_of_teams,omitempty"`
	Format        *TournamentFormat `json:"format,omitempty"`
	Status        TournamentStatus  `json:"status"`
	BannerKey     *string           `json:"-"`
	BannerURL     *string           `json:"banner_url,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`

	// Populated on detail reads, not mapped directly.
	Matches []Match `json:"matches,omitempty"`
}
