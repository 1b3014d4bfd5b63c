package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luminospark/asambal-system/middleware"
	"github.com/luminospark/asambal-system/services"
)

// PlayerHandler serves the player's own surface.
type PlayerHandler struct {
	playerService   services.PlayerService
	transferService services.TransferService
	ticketService   services.TicketService
}

func NewPlayerHandler(
	playerService services.PlayerService,
	transferService services.TransferService,
	ticketService services.TicketService,
) *PlayerHandler {
	return &PlayerHandler{
		playerService:   playerService,
		transferService: transferService,
		ticketService:   ticketService,
	}
}

func (h *PlayerHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token   string                              `json:"token"`
		Profile services.CompletePlayerProfileInput `json:"profile"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.playerService.CompletePlayerProfile(r.Context(), input.Token, input.Profile)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil)
}

func (h *PlayerHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.playerService.GetByUserID(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil)
}

func (h *PlayerHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	// Player documents share their user's id.
	transfers, err := h.transferService.ListPendingPlayer(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"transfers": transfers}, nil)
}

func (h *PlayerHandler) RespondTransfer(w http.ResponseWriter, r *http.Request) {
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

	transfer, err := h.transferService.PlayerDecide(r.Context(), chi.URLParam(r, "transferID"), userID, accept)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"transfer": transfer}, nil)
}

func (h *PlayerHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tickets, err := h.ticketService.ListPlayerTickets(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tickets": tickets}, nil)
}

func (h *PlayerHandler) PayTicket(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	ticket, err := h.ticketService.PayTicket(r.Context(), chi.URLParam(r, "ticketID"), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"ticket": ticket}, nil)
}
