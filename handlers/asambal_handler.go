package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luminospark/asambal-system/middleware"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/services"
)

// AsambalHandler serves the federation admin surface.
type AsambalHandler struct {
	asambalService     services.AsambalService
	clubService        services.ClubService
	playerService      services.PlayerService
	scholarshipService services.ScholarshipService
	transferService    services.TransferService
	campaignService    services.CampaignService
	insuranceService   services.InsuranceService
	ticketService      services.TicketService
	categoryService    services.CategoryService
}

func NewAsambalHandler(
	asambalService services.AsambalService,
	clubService services.ClubService,
	playerService services.PlayerService,
	scholarshipService services.ScholarshipService,
	transferService services.TransferService,
	campaignService services.CampaignService,
	insuranceService services.InsuranceService,
	ticketService services.TicketService,
	categoryService services.CategoryService,
) *AsambalHandler {
	return &AsambalHandler{
		asambalService:     asambalService,
		clubService:        clubService,
		playerService:      playerService,
		scholarshipService: scholarshipService,
		transferService:    transferService,
		campaignService:    campaignService,
		insuranceService:   insuranceService,
		ticketService:      ticketService,
		categoryService:    categoryService,
	}
}

func (h *AsambalHandler) ListPendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.asambalService.ListPendingUsers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"users": users}, nil)
}

func (h *AsambalHandler) ValidateUser(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.asambalService.ValidateUser(r.Context(), chi.URLParam(r, "userID"), approve)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil)
}

func (h *AsambalHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	createdBy, _ := middleware.GetUserIDFromContext(r.Context())

	result, err := h.clubService.CreateClubWithAdmin(r.Context(), input, createdBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result, nil)
}

func (h *AsambalHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.GetClubs(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"clubs": clubs}, nil)
}

func (h *AsambalHandler) ToggleClub(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubService.ToggleClubStatus(r.Context(), chi.URLParam(r, "clubID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil)
}

func (h *AsambalHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil)
}

func (h *AsambalHandler) GrantScholarship(w http.ResponseWriter, r *http.Request) {
	grantedBy, _ := middleware.GetUserIDFromContext(r.Context())

	scholarship, err := h.scholarshipService.Grant(r.Context(), chi.URLParam(r, "playerID"), grantedBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"scholarship": scholarship}, nil)
}

func (h *AsambalHandler) RevokeScholarship(w http.ResponseWriter, r *http.Request) {
	scholarship, err := h.scholarshipService.Revoke(r.Context(), chi.URLParam(r, "scholarshipID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"scholarship": scholarship}, nil)
}

func (h *AsambalHandler) ScholarshipHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.scholarshipService.History(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"scholarships": history}, nil)
}

func (h *AsambalHandler) ListScholarshipHolders(w http.ResponseWriter, r *http.Request) {
	players, err := h.scholarshipService.ListHolders(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil)
}

func (h *AsambalHandler) ListPendingTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.transferService.ListPendingAdmin(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"transfers": transfers}, nil)
}

func (h *AsambalHandler) DecideTransfer(w http.ResponseWriter, r *http.Request) {
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

	transfer, err := h.transferService.AdminDecide(r.Context(), chi.URLParam(r, "transferID"), approve)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"transfer": transfer}, nil)
}

func (h *AsambalHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCampaignInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	createdBy, _ := middleware.GetUserIDFromContext(r.Context())

	kind := models.CampaignKind(chi.URLParam(r, "kind"))
	var result *services.CampaignResult
	var err error
	switch kind {
	case models.CampaignEnrollment:
		result, err = h.campaignService.CreateEnrollmentCampaign(r.Context(), input, createdBy)
	case models.CampaignMembership:
		result, err = h.campaignService.CreateMembershipCampaign(r.Context(), input, createdBy)
	default:
		mapServiceErrorToHTTP(w, r, services.ErrValidationFailed)
		return
	}
	if err != nil {
		if result != nil {
			// Partial fan-out still reports what was committed.
			writeJSON(w, http.StatusAccepted, jsonResponse{"result": result, "error": err.Error()}, nil)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil)
}

func (h *AsambalHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	kind := models.CampaignKind(chi.URLParam(r, "kind"))
	campaigns, err := h.campaignService.ListCampaigns(r.Context(), kind)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"campaigns": campaigns}, nil)
}

func (h *AsambalHandler) CreateInsurance(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCampaignInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	createdBy, _ := middleware.GetUserIDFromContext(r.Context())

	result, err := h.insuranceService.CreateInsurance(r.Context(), input, createdBy)
	if err != nil {
		if result != nil {
			// Partial fan-out still reports what was committed.
			writeJSON(w, http.StatusAccepted, jsonResponse{"result": result, "error": err.Error()}, nil)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil)
}

func (h *AsambalHandler) ListInsuranceYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.insuranceService.ListYears(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"years": years}, nil)
}

func (h *AsambalHandler) ListInsurance(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, services.ErrValidationFailed)
		return
	}
	tickets, err := h.insuranceService.ListByYear(r.Context(), year)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tickets": tickets}, nil)
}

func (h *AsambalHandler) PayEnrollmentBulk(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TicketIDs []string `json:"ticketIds"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := h.ticketService.PayEnrollmentBulk(r.Context(), input.TicketIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil)
}

func (h *AsambalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.asambalService.DashboardStats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil)
}

func (h *AsambalHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	category, err := h.categoryService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"category": category}, nil)
}

func (h *AsambalHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context(), r.URL.Query().Get("genero"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil)
}

func parseDecision(action string) (bool, error) {
	switch action {
	case "APPROVE":
		return true, nil
	case "REJECT":
		return false, nil
	default:
		return false, services.ErrInvalidAction
	}
}
