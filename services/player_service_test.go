package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/luminospark/asambal-system/models"
)

func TestCreatePlayer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)

	result, err := env.playerSvc.CreateOrTransferPlayer(ctx, CreatePlayerInput{
		Email:      "jugador@norte.test",
		FirstName:  "Lucia",
		LastName:   "Moreno",
		ClubID:     club.ID,
		Categories: []string{"sub16"},
	}, "club-admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Outcome != OutcomeCreated {
		t.Fatalf("outcome: want CREATED, got %s", result.Outcome)
	}
	if result.Player.EligibleToPlay {
		t.Fatal("new player must not be eligible before enrollment")
	}
	if result.Player.IneligibilityReason != models.IneligibilityEnrollmentPending {
		t.Fatalf("ineligibility reason: %q", result.Player.IneligibilityReason)
	}
	if result.Player.ID != result.User.ID {
		t.Fatalf("player document must share the user id: %s != %s", result.Player.ID, result.User.ID)
	}
}

func TestCreatePlayerAtSecondClubOpensTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clubA := env.seedClub(t, "norte", models.StatusActive)
	clubB := env.seedClub(t, "sur", models.StatusActive)
	player := env.seedPlayer(t, "jugador@norte.test", []models.ClubMembership{
		membership(clubA, models.StatusActive, "sub16"),
	}, false)

	result, err := env.playerSvc.CreateOrTransferPlayer(ctx, CreatePlayerInput{
		Email:      "jugador@norte.test",
		ClubID:     clubB.ID,
		Categories: []string{"sub18"},
	}, "club-admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Outcome != OutcomeTransferStarted {
		t.Fatalf("outcome: want TRANSFER_STARTED, got %s", result.Outcome)
	}
	tr := result.Transfer
	if tr.Status != models.TransferPending {
		t.Fatalf("transfer status: want PENDIENTE, got %s", tr.Status)
	}
	if tr.Origin.ClubID != clubA.ID || tr.Destination.ClubID != clubB.ID {
		t.Fatalf("transfer clubs: origin=%s destination=%s", tr.Origin.ClubID, tr.Destination.ClubID)
	}
	if tr.PlayerID != player.ID {
		t.Fatalf("transfer player: %s", tr.PlayerID)
	}

	// The player's memberships are untouched until the transfer confirms.
	got, err := env.playerRepo.GetByID(ctx, nil, player.ID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if len(got.Clubs) != 1 || got.Clubs[0].ClubID != clubA.ID {
		t.Fatalf("memberships changed prematurely: %+v", got.Clubs)
	}

	// A second attempt while the request is open is refused.
	clubC := env.seedClub(t, "este", models.StatusActive)
	_, err = env.playerSvc.CreateOrTransferPlayer(ctx, CreatePlayerInput{
		Email:  "jugador@norte.test",
		ClubID: clubC.ID,
	}, "club-admin")
	if !errors.Is(err, ErrTransferPending) {
		t.Fatalf("want ErrTransferPending, got %v", err)
	}
}

func TestCreatePlayerAlreadyMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	env.seedPlayer(t, "jugador@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	}, false)

	_, err := env.playerSvc.CreateOrTransferPlayer(ctx, CreatePlayerInput{
		Email:  "jugador@norte.test",
		ClubID: club.ID,
	}, "club-admin")
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("want ErrAlreadyMember, got %v", err)
	}
}

func TestCompletePlayerProfileTutorRequired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)

	result, err := env.playerSvc.CreateOrTransferPlayer(ctx, CreatePlayerInput{
		Email:  "menor@norte.test",
		ClubID: club.ID,
	}, "club-admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	token := *result.User.ActivationToken
	minorBirth := time.Now().UTC().AddDate(-15, 0, 0).Format("2006-01-02")

	input := CompletePlayerProfileInput{
		FirstName: "Lucia",
		LastName:  "Moreno",
		BirthDate: minorBirth,
		DNI:       "45000111",
	}
	if _, err := env.playerSvc.CompletePlayerProfile(ctx, token, input); !errors.Is(err, ErrTutorRequired) {
		t.Fatalf("minor without tutor: want ErrTutorRequired, got %v", err)
	}

	input.Tutor = &models.Tutor{FirstName: "Marta", LastName: "Moreno", DNI: "20000111"}
	completed, err := env.playerSvc.CompletePlayerProfile(ctx, token, input)
	if err != nil {
		t.Fatalf("complete with tutor: %v", err)
	}
	if completed.Status != models.StatusPending {
		t.Fatalf("status: want PENDIENTE, got %s", completed.Status)
	}

	user, err := env.userRepo.GetByID(ctx, nil, completed.UserID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.ActivationToken != nil {
		t.Fatal("completion must null the activation token")
	}
}

func TestCompletePlayerProfileBadBirthDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)

	result, err := env.playerSvc.CreateOrTransferPlayer(ctx, CreatePlayerInput{
		Email:  "jugador@norte.test",
		ClubID: club.ID,
	}, "club-admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = env.playerSvc.CompletePlayerProfile(ctx, *result.User.ActivationToken, CompletePlayerProfileInput{
		FirstName: "Lucia",
		BirthDate: "15/06/2010",
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("want ErrValidationFailed, got %v", err)
	}
}

func TestValidatePlayerFirstApprovalProvisionsCredential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)

	result, err := env.playerSvc.CreateOrTransferPlayer(ctx, CreatePlayerInput{
		Email:  "jugador@norte.test",
		ClubID: club.ID,
	}, "club-admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	adultBirth := time.Now().UTC().AddDate(-20, 0, 0).Format("2006-01-02")
	if _, err := env.playerSvc.CompletePlayerProfile(ctx, *result.User.ActivationToken, CompletePlayerProfileInput{
		FirstName: "Lucia",
		LastName:  "Moreno",
		BirthDate: adultBirth,
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	validated, err := env.playerSvc.ValidatePlayer(ctx, club.ID, result.Player.ID, true)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if validated.Status != models.StatusActive {
		t.Fatalf("player status: want ACTIVO, got %s", validated.Status)
	}
	user, err := env.userRepo.GetByID(ctx, nil, validated.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Status != models.StatusActive {
		t.Fatalf("user status: want ACTIVO, got %s", user.Status)
	}

	// The first approval provisioned a credential, so a second create
	// reports it already there.
	created, err := env.credentials.CreateIfNotExists(ctx, "jugador@norte.test", "")
	if err != nil {
		t.Fatalf("credential check: %v", err)
	}
	if created {
		t.Fatal("credential was not provisioned at first approval")
	}
}

func TestValidatePlayerWrongClub(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clubA := env.seedClub(t, "norte", models.StatusActive)
	clubB := env.seedClub(t, "sur", models.StatusActive)
	player := env.seedPlayer(t, "jugador@norte.test", []models.ClubMembership{
		membership(clubA, models.StatusPending, "sub16"),
	}, false)

	if _, err := env.playerSvc.ValidatePlayer(ctx, clubB.ID, player.ID, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestListByCoach(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	coach := env.seedCoach(t, "coach@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	})

	for i := 0; i < 3; i++ {
		p := env.seedPlayer(t, fmt.Sprintf("p%d@norte.test", i), []models.ClubMembership{
			membership(club, models.StatusActive, "sub16"),
		}, false)
		if i < 2 {
			p.CoachID = coach.ID
			if err := env.playerRepo.Save(ctx, nil, p); err != nil {
				t.Fatalf("assign coach: %v", err)
			}
		}
	}

	players, err := env.playerSvc.ListByCoach(ctx, coach.ID)
	if err != nil {
		t.Fatalf("list by coach: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("want 2 coached players, got %d", len(players))
	}
}
