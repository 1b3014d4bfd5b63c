package services

import (
	"context"
	"testing"

	"github.com/luminospark/asambal-system/models"
)

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAsambalService(env.clubSvc, env.userRepo, env.clubRepo, env.coachRepo,
		env.playerRepo, env.transferRepo, env.scholarshipRepo)

	clubA := env.seedClub(t, "norte", models.StatusActive)
	clubB := env.seedClub(t, "sur", models.StatusInactive)
	memberships := []models.ClubMembership{membership(clubA, models.StatusActive, "sub16")}

	env.seedCoach(t, "coach@norte.test", memberships)
	eligible := env.seedPlayer(t, "becado@norte.test", memberships, true)
	env.seedPlayer(t, "comun@norte.test", memberships, false)
	if _, err := env.scholarshipSvc.Grant(ctx, eligible.ID, "asambal-admin"); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if _, err := env.playerSvc.CreateOrTransferPlayer(ctx, CreatePlayerInput{
		Email:  "comun@norte.test",
		ClubID: clubB.ID,
	}, "club-admin"); err != nil {
		t.Fatalf("open transfer: %v", err)
	}

	stats, err := svc.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ClubsTotal != 2 || stats.ClubsActive != 1 {
		t.Fatalf("clubs: total=%d active=%d", stats.ClubsTotal, stats.ClubsActive)
	}
	if stats.PlayersTotal != 2 || stats.PlayersEligible != 1 {
		t.Fatalf("players: total=%d eligible=%d", stats.PlayersTotal, stats.PlayersEligible)
	}
	if stats.CoachesTotal != 1 {
		t.Fatalf("coaches: %d", stats.CoachesTotal)
	}
	if stats.OpenTransfers != 1 {
		t.Fatalf("transfers: %d", stats.OpenTransfers)
	}
	if stats.ScholarshipsLive != 1 {
		t.Fatalf("scholarships: %d", stats.ScholarshipsLive)
	}
}

func TestListPendingUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAsambalService(env.clubSvc, env.userRepo, env.clubRepo, env.coachRepo,
		env.playerRepo, env.transferRepo, env.scholarshipRepo)

	_, admin := createdClubAdmin(t, env)
	completedClubProfile(t, env, *admin.ActivationToken)

	pending, err := svc.ListPendingUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != admin.ID {
		t.Fatalf("pending users: %v", pending)
	}

	if _, err := svc.ValidateUser(ctx, admin.ID, true); err != nil {
		t.Fatalf("validate: %v", err)
	}
	pending, err = svc.ListPendingUsers(ctx)
	if err != nil {
		t.Fatalf("list again: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("validated user still pending: %d", len(pending))
	}
}
