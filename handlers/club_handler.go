package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/luminospark/asambal-system/middleware"
	"github.com/luminospark/asambal-system/services"
)

// ClubHandler serves the club admin surface. The acting club comes
// from the resolved X-Club-Id header, never from the body.
type ClubHandler struct {
	clubService   services.ClubService
	coachService  services.CoachService
	playerService services.PlayerService
	ticketService services.TicketService
}

func NewClubHandler(
	clubService services.ClubService,
	coachService services.CoachService,
	playerService services.PlayerService,
	ticketService services.TicketService,
) *ClubHandler {
	return &ClubHandler{
		clubService:   clubService,
		coachService:  coachService,
		playerService: playerService,
		ticketService: ticketService,
	}
}

func (h *ClubHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	club, err := h.clubService.GetClubByID(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil)
}

func (h *ClubHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token   string                            `json:"token"`
		Profile services.CompleteClubProfileInput `json:"profile"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	club, err := h.clubService.CompleteClubProfile(r.Context(), input.Token, input.Profile)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil)
}

func (h *ClubHandler) Update(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	club, err := h.clubService.UpdateClub(r.Context(), clubID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil)
}

func (h *ClubHandler) UploadHero(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, _, err := r.FormFile("hero")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	club, err := h.clubService.UploadHero(r.Context(), clubID, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil)
}

func (h *ClubHandler) RemoveHero(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	club, err := h.clubService.RemoveHero(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil)
}

func (h *ClubHandler) CreateCoach(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateCoachInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.ClubID = clubID
	createdBy, _ := middleware.GetUserIDFromContext(r.Context())

	result, err := h.coachService.CreateCoach(r.Context(), input, createdBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.Outcome != services.OutcomeCreated {
		status = http.StatusOK
	}
	writeJSON(w, status, result, nil)
}

func (h *ClubHandler) ConfirmCategoryMerge(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Email      string   `json:"email"`
		Categories []string `json:"categorias"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	coach, err := h.coachService.ConfirmCategoryMerge(r.Context(), input.Email, clubID, input.Categories)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"coach": coach}, nil)
}

func (h *ClubHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	coaches, err := h.coachService.ListByClub(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"coaches": coaches}, nil)
}

func (h *ClubHandler) ValidateCoach(w http.ResponseWriter, r *http.Request) {
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

	coach, err := h.coachService.ValidateCoach(r.Context(), clubID, chi.URLParam(r, "coachID"), approve)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"coach": coach}, nil)
}

func (h *ClubHandler) ToggleCoach(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	coach, err := h.coachService.ToggleCoachStatus(r.Context(), clubID, chi.URLParam(r, "coachID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"coach": coach}, nil)
}

func (h *ClubHandler) SendCoachJoinRequest(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Email      string   `json:"email"`
		Categories []string `json:"categorias"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	request, err := h.coachService.SendJoinRequest(r.Context(), clubID, input.Email, input.Categories)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"request": request}, nil)
}

func (h *ClubHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.ClubID = clubID
	createdBy, _ := middleware.GetUserIDFromContext(r.Context())

	result, err := h.playerService.CreateOrTransferPlayer(r.Context(), input, createdBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.Outcome != services.OutcomeCreated {
		status = http.StatusOK
	}
	writeJSON(w, status, result, nil)
}

func (h *ClubHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.playerService.ListByClub(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil)
}

func (h *ClubHandler) ValidatePlayer(w http.ResponseWriter, r *http.Request) {
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

func (h *ClubHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tickets, err := h.ticketService.ListClubTickets(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tickets": tickets}, nil)
}

func (h *ClubHandler) PayTicket(w http.ResponseWriter, r *http.Request) {
	clubID, err := middleware.GetActiveClubFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	ticket, err := h.ticketService.PayMembershipTicket(r.Context(), chi.URLParam(r, "ticketID"), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"ticket": ticket}, nil)
}
