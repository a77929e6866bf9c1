package handlers

import (
	"errors"
	"net/http"

	"github.com/nexus-arena/backend/services"
)

// RefereeHandler covers the referee workflow: claim a match via room code,
// review pending and recent matches, and submit results.
type RefereeHandler struct {
	matchService  services.MatchService
	resultService services.ResultService
}

func NewRefereeHandler(matchService services.MatchService, resultService services.ResultService) *RefereeHandler {
	return &RefereeHandler{
		matchService:  matchService,
		resultService: resultService,
	}
}

type validateCodeInput struct {
	Code string `json:"code"`
}

func (h *RefereeHandler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	var input validateCodeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Code == "" {
		badRequestResponse(w, r, errors.New("code is required"))
		return
	}

	match, err := h.matchService.ValidateRoomCode(r.Context(), input.Code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := readIDParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Team1Players) == 0 && len(input.Team2Players) == 0 {
		badRequestResponse(w, r, errors.New("at least one player score is required"))
		return
	}

	match, err := h.resultService.SubmitResult(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) PendingMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListPendingForReferee(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) CompletedMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListRecentCompleted(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
