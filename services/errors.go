package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nexus-arena/backend/models"
)

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed                  = errors.New("validation failed")
	ErrPasswordTooShort                  = errors.New("password is too short")
	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentInvalidTeams            = errors.New("tournament number of teams must be positive")
	ErrTournamentInvalidFormat           = errors.New("invalid tournament format")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrMatchTeamsRequired                = errors.New("both team names are required")
	ErrMatchInvalidStatus                = errors.New("invalid match status provided")
	ErrInvalidRole                       = errors.New("invalid user role")
	ErrNotEnoughTeams                    = errors.New("at least two teams are required to generate fixtures")
	ErrUnsupportedFormat                 = errors.New("fixture generation supports only single elimination")

	// Conflicts
	ErrEmailTaken         = errors.New("email address is already in use")
	ErrPlayerProfileTaken = errors.New("player profile already exists for this user")
	ErrRoomCodeAllocation = errors.New("failed to allocate a unique room code")

	// Authentication and authorization
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user account is inactive")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors
	ErrUserNotFound       = errors.New("user not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Infrastructure
	ErrBannerStorageUnavailable = errors.New("banner storage is not configured")
)

// ScoreMismatchError reports that one side's per-player scores do not sum to
// the claimed team total. Submissions failing on both sides produce two of
// these joined together.
type ScoreMismatchError struct {
	Side    models.TeamSide
	Claimed int
	Sum     int
}

func (e *ScoreMismatchError) Error() string {
	return fmt.Sprintf("%s player scores (%d) do not match team score (%d)", e.Side, e.Sum, e.Claimed)
}

// DuplicatePlayersError carries every player id listed more than once in a
// result submission, whether repeated on one side or across both. One match
// contributes at most one score row per player.
type DuplicatePlayersError struct {
	IDs []int
}

func (e *DuplicatePlayersError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = strconv.Itoa(id)
	}
	return "players listed more than once: " + strings.Join(ids, ", ")
}

// PlayersNotFoundError carries every unresolved player id from a result
// submission, not just the first.
type PlayersNotFoundError struct {
	IDs []int
}

func (e *PlayersNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = strconv.Itoa(id)
	}
	return "players not found: " + strings.Join(ids, ", ")
}

func (e *PlayersNotFoundError) Is(target error) bool {
	return target == ErrPlayerNotFound
}
