package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/luminospark/asambal-system/models"
)

func TestGrantScholarship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	player := env.seedPlayer(t, "jugador@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	}, false)

	scholarship, err := env.scholarshipSvc.Grant(ctx, player.ID, "asambal-admin")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if scholarship.Status != models.ScholarshipActive {
		t.Fatalf("status: want ACTIVA, got %s", scholarship.Status)
	}
	if scholarship.Club.ClubID != club.ID {
		t.Fatalf("club snapshot: %+v", scholarship.Club)
	}
	if !scholarship.ExpiresAt.Equal(models.ScholarshipExpiry(scholarship.GrantedAt)) {
		t.Fatalf("expiry mismatch: granted %v expires %v", scholarship.GrantedAt, scholarship.ExpiresAt)
	}

	got, err := env.playerRepo.GetByID(ctx, nil, player.ID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if !got.Scholarship || !got.EligibleToPlay || got.IneligibilityReason != "" {
		t.Fatalf("player flags after grant: becado=%v habilitado=%v motivo=%q",
			got.Scholarship, got.EligibleToPlay, got.IneligibilityReason)
	}

	if _, err := env.scholarshipSvc.Grant(ctx, player.ID, "asambal-admin"); !errors.Is(err, ErrDuplicateActiveScholarship) {
		t.Fatalf("second grant: want ErrDuplicateActiveScholarship, got %v", err)
	}
}

func TestGrantScholarshipConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	player := env.seedPlayer(t, "jugador@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	}, false)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.scholarshipSvc.Grant(ctx, player.ID, "asambal-admin")
		}(i)
	}
	wg.Wait()

	granted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			granted++
		case errors.Is(err, ErrDuplicateActiveScholarship):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if granted != 1 {
		t.Fatalf("want exactly one successful grant, got %d", granted)
	}
	active, err := env.scholarshipRepo.ListActive(ctx, nil)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("want one ACTIVA scholarship, got %d", len(active))
	}
}

func TestRevokeScholarship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	player := env.seedPlayer(t, "jugador@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	}, false)

	scholarship, err := env.scholarshipSvc.Grant(ctx, player.ID, "asambal-admin")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	revoked, err := env.scholarshipSvc.Revoke(ctx, scholarship.ID)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.Status != models.ScholarshipRevoked || revoked.RevokedAt == nil {
		t.Fatalf("revoked scholarship: %+v", revoked)
	}

	got, err := env.playerRepo.GetByID(ctx, nil, player.ID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Scholarship || got.EligibleToPlay {
		t.Fatalf("player flags after revoke: becado=%v habilitado=%v", got.Scholarship, got.EligibleToPlay)
	}
	if got.IneligibilityReason != models.IneligibilityEnrollmentPending {
		t.Fatalf("ineligibility reason: %q", got.IneligibilityReason)
	}

	if _, err := env.scholarshipSvc.Revoke(ctx, scholarship.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double revoke: want ErrInvalidState, got %v", err)
	}

	// A new grant is allowed once the previous one is revoked, and the
	// full history keeps both.
	if _, err := env.scholarshipSvc.Grant(ctx, player.ID, "asambal-admin"); err != nil {
		t.Fatalf("regrant: %v", err)
	}
	history, err := env.scholarshipSvc.History(ctx, player.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("want 2 history entries, got %d", len(history))
	}
}

func TestListScholarshipHolders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	env.seedPlayer(t, "becado@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	}, true)
	env.seedPlayer(t, "comun@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	}, false)

	holders, err := env.scholarshipSvc.ListHolders(ctx)
	if err != nil {
		t.Fatalf("list holders: %v", err)
	}
	if len(holders) != 1 || holders[0].Email != "becado@norte.test" {
		t.Fatalf("holders: %v", holders)
	}
}
