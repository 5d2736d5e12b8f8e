package handlers

import (
	"net/http"

	"github.com/changycj/tourneytrack/middleware"
	"github.com/changycj/tourneytrack/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatchByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	bracketID, err := intQueryParam(r, "bracket")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := intQueryParam(r, "team")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), services.MatchListFilter{
		BracketID: bracketID,
		TeamID:    teamID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetOutcome records a match result. With ?preliminary=true the result is
// filed as a captain's report for the admin to approve; otherwise it is the
// final outcome and the winner and loser advance.
func (h *MatchHandler) SetOutcome(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.OutcomeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var match interface{}
	if r.URL.Query().Get("preliminary") == "true" {
		match, err = h.matchService.ReportPreliminaryOutcome(r.Context(), userID, id, input)
	} else {
		match, err = h.matchService.SetOutcome(r.Context(), userID, id, input)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
