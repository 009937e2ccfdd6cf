package handlers

import (
	"net/http"

	"github.com/matchpoint-app/matchpoint/brackets"
	"github.com/matchpoint-app/matchpoint/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bracketService services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bracketService}
}

func (h *BracketHandler) GetEventBracketHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getStringParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GetEventBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) ValidateEventBracketHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getStringParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.ValidateEventBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"validation": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) ListNextMatchCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getStringParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	lane := brackets.Lane(r.URL.Query().Get("lane"))

	candidates, err := h.bracketService.ListNextMatchCandidates(r.Context(), matchID, lane)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"candidates": candidates}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateLinksRequest struct {
	WinnerNextID *string `json:"winner_next_id"`
	LoserNextID  *string `json:"loser_next_id"`
}

func (h *BracketHandler) UpdateMatchLinksHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getStringParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateLinksRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bracketService.UpdateMatchLinks(r.Context(), matchID, input.WinnerNextID, input.LoserNextID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"updated": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
