package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/luminospark/asambal-system/auth"
	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

type stubEmail struct {
	sent []string
	fail bool
}

func (s *stubEmail) SendActivationEmail(email, token string) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, email)
	return nil
}

type testEnv struct {
	store docstore.Store
	email *stubEmail

	userRepo         repositories.UserRepository
	clubRepo         repositories.ClubRepository
	coachRepo        repositories.CoachRepository
	requestRepo      repositories.CoachRequestRepository
	playerRepo       repositories.PlayerRepository
	scholarshipRepo  repositories.ScholarshipRepository
	transferRepo     repositories.TransferRepository
	campaignRepo     repositories.CampaignRepository
	playerTickets    repositories.TicketRepository
	clubTickets      repositories.TicketRepository
	insuranceTickets repositories.TicketRepository

	credentials auth.CredentialStore

	authSvc        AuthService
	clubSvc        ClubService
	coachSvc       CoachService
	playerSvc      PlayerService
	scholarshipSvc ScholarshipService
	transferSvc    TransferService
	campaignSvc    CampaignService
	ticketSvc      TicketService
	insuranceSvc   InsuranceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := docstore.NewMemoryStore()
	email := &stubEmail{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		store:            store,
		email:            email,
		userRepo:         repositories.NewUserRepository(store),
		clubRepo:         repositories.NewClubRepository(store),
		coachRepo:        repositories.NewCoachRepository(store),
		requestRepo:      repositories.NewCoachRequestRepository(store),
		playerRepo:       repositories.NewPlayerRepository(store),
		scholarshipRepo:  repositories.NewScholarshipRepository(store),
		transferRepo:     repositories.NewTransferRepository(store),
		campaignRepo:     repositories.NewCampaignRepository(store),
		playerTickets:    repositories.NewEnrollmentTicketRepository(store),
		clubTickets:      repositories.NewMembershipTicketRepository(store),
		insuranceTickets: repositories.NewInsuranceTicketRepository(store),
		credentials:      auth.NewCredentialStore(store),
	}

	tokens := auth.NewTokenManager("test-access-secret", "test-refresh-secret")
	env.authSvc = NewAuthService(store, env.userRepo, env.credentials, tokens)
	env.clubSvc = NewClubService(store, env.clubRepo, env.userRepo, env.coachRepo, env.playerRepo, email, nil, nil, logger)
	env.coachSvc = NewCoachService(store, env.coachRepo, env.requestRepo, env.userRepo, env.clubRepo, env.credentials, email, logger)
	env.playerSvc = NewPlayerService(store, env.playerRepo, env.userRepo, env.clubRepo, env.transferRepo, env.credentials, email, logger)
	env.scholarshipSvc = NewScholarshipService(store, env.scholarshipRepo, env.playerRepo)
	env.transferSvc = NewTransferService(store, env.transferRepo, env.playerRepo, env.userRepo)
	env.campaignSvc = NewCampaignService(store, env.campaignRepo, env.playerRepo, env.clubRepo, env.playerTickets, env.clubTickets, logger)
	env.ticketSvc = NewTicketService(store, env.playerTickets, env.clubTickets, env.playerRepo, env.clubRepo)
	env.insuranceSvc = NewInsuranceService(store, env.campaignRepo, env.coachRepo, env.insuranceTickets, logger)

	return env
}

func (e *testEnv) seedClub(t *testing.T, name string, status models.Status) *models.Club {
	t.Helper()
	club := &models.Club{Name: name, City: "Mendoza", Email: name + "@clubs.test", Status: status}
	if err := e.clubRepo.Create(context.Background(), nil, club); err != nil {
		t.Fatalf("seed club %s: %v", name, err)
	}
	return club
}

func (e *testEnv) seedPlayer(t *testing.T, email string, clubs []models.ClubMembership, scholarship bool) *models.Player {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		Email:  email,
		Roles:  []models.Role{models.RolePlayer},
		Status: models.StatusActive,
		Clubs:  clubs,
	}
	if err := e.userRepo.Create(ctx, nil, user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}

	player := &models.Player{
		UserID:         user.ID,
		FirstName:      "Test",
		LastName:       "Player",
		Email:          email,
		Status:         models.StatusActive,
		Scholarship:    scholarship,
		EligibleToPlay: scholarship,
		Clubs:          clubs,
	}
	if !scholarship {
		player.IneligibilityReason = models.IneligibilityEnrollmentPending
	}
	if err := e.playerRepo.Create(ctx, nil, player); err != nil {
		t.Fatalf("seed player %s: %v", email, err)
	}
	return player
}

func (e *testEnv) seedCoach(t *testing.T, email string, clubs []models.ClubMembership) *models.Coach {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		Email:  email,
		Roles:  []models.Role{models.RoleCoach},
		Status: models.StatusActive,
		Clubs:  clubs,
	}
	if err := e.userRepo.Create(ctx, nil, user); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}

	coach := &models.Coach{
		UserID:    user.ID,
		FirstName: "Test",
		LastName:  "Coach",
		Email:     email,
		Status:    models.StatusActive,
		Clubs:     clubs,
	}
	if err := e.coachRepo.Create(ctx, nil, coach); err != nil {
		t.Fatalf("seed coach %s: %v", email, err)
	}
	return coach
}

func membership(club *models.Club, status models.Status, categories ...string) models.ClubMembership {
	return models.ClubMembership{
		ClubID:     club.ID,
		ClubName:   club.Name,
		Categories: categories,
		Status:     status,
	}
}
