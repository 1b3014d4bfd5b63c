package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luminospark/asambal-system/middleware"
	"github.com/luminospark/asambal-system/services"
)

// CoachHandler serves the coach's own surface: profile completion,
// join requests and the players under their charge.
type CoachHandler struct {
	coachService     services.CoachService
	playerService    services.PlayerService
	insuranceService services.InsuranceService
}

func NewCoachHandler(
	coachService services.CoachService,
	playerService services.PlayerService,
	insuranceService services.InsuranceService,
) *CoachHandler {
	return &CoachHandler{
		coachService:     coachService,
		playerService:    playerService,
		insuranceService: insuranceService,
	}
}

func (h *CoachHandler) Prefill(w http.ResponseWriter, r *http.Request) {
	coach, err := h.coachService.PrefillByToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"coach": coach}, nil)
}

func (h *CoachHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token   string                             `json:"token"`
		Profile services.CompleteCoachProfileInput `json:"profile"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	coach, err := h.coachService.CompleteCoachProfile(r.Context(), input.Token, input.Profile)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"coach": coach}, nil)
}

func (h *CoachHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	// Coach documents share their user's id.
	coach, err := h.coachService.GetByID(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"coach": coach}, nil)
}

func (h *CoachHandler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	requests, err := h.coachService.ListJoinRequests(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"requests": requests}, nil)
}

func (h *CoachHandler) RespondJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Action string `json:"action"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	accept, err := parseDecision(input.Action)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	request, err := h.coachService.RespondJoinRequest(r.Context(), userID, chi.URLParam(r, "requestID"), accept)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"request": request}, nil)
}

func (h *CoachHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.playerService.ListByCoach(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil)
}

func (h *CoachHandler) ValidatePlayer(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Action string `json:"action"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	approve, err := parseDecision(input.Action)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	player, err := h.playerService.ValidatePlayer(r.Context(), clubID, chi.URLParam(r, "playerID"), approve)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil)
}

func (h *CoachHandler) ListInsurance(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			mapServiceErrorToHTTP(w, r, services.ErrValidationFailed)
			return
		}
	}
	// Coach documents share their user's id.
	tickets, err := h.insuranceService.ListCoachInsurance(r.Context(), userID, year)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tickets": tickets}, nil)
}

func (h *CoachHandler) PayInsurance(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	ticket, err := h.insuranceService.PayInsurance(r.Context(), chi.URLParam(r, "ticketID"), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"ticket": ticket}, nil)
}
