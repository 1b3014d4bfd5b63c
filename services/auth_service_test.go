package services

import (
	"context"
	"errors"
	"testing"

	"github.com/luminospark/asambal-system/models"
)

func createdClubAdmin(t *testing.T, env *testEnv) (*models.Club, *models.User) {
	t.Helper()
	result, err := env.clubSvc.CreateClubWithAdmin(context.Background(), CreateClubInput{
		Name:       "Club Norte",
		City:       "Mendoza",
		AdminEmail: "admin@norte.test",
		Manager:    "Ana Pereyra",
	}, "asambal-admin")
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	return result.Club, result.Admin
}

func completedClubProfile(t *testing.T, env *testEnv, token string) {
	t.Helper()
	_, err := env.clubSvc.CompleteClubProfile(context.Background(), token, CompleteClubProfileInput{
		Manager: "Ana Pereyra",
		Venue:   "Av. San Martin 100",
		Phone:   "261-555-0100",
	})
	if err != nil {
		t.Fatalf("complete club profile: %v", err)
	}
}

func TestActivateAccountDoesNotConsumeToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, admin := createdClubAdmin(t, env)
	if admin.ActivationToken == nil {
		t.Fatal("new admin carries no activation token")
	}
	token := *admin.ActivationToken

	// Setting the password validates the token but leaves it in place:
	// completing the profile is what consumes it.
	activated, err := env.authSvc.ActivateAccount(ctx, token, "s3cret-password")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.Status != models.StatusIncomplete {
		t.Fatalf("account status after password set: want INCOMPLETO, got %s", activated.Status)
	}
	if activated.ActivationToken == nil {
		t.Fatal("token must survive password setting")
	}

	completedClubProfile(t, env, token)

	user, err := env.userRepo.GetByID(ctx, nil, admin.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.Status != models.StatusPending {
		t.Fatalf("completed account status: want PENDIENTE, got %s", user.Status)
	}
	if user.ActivationToken != nil {
		t.Fatal("completing the profile must null the activation token")
	}

	// Consumed tokens are dead for both flows.
	if _, err := env.authSvc.ActivateAccount(ctx, token, "another-password"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("activation after completion: want ErrInvalidToken, got %v", err)
	}
	if _, err := env.clubSvc.CompleteClubProfile(ctx, token, CompleteClubProfileInput{}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("second completion: want ErrInvalidToken, got %v", err)
	}
}

func TestClubAdminOnboardingEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, admin := createdClubAdmin(t, env)
	token := *admin.ActivationToken

	if _, err := env.authSvc.ActivateAccount(ctx, token, "s3cret-password"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	completedClubProfile(t, env, token)
	if _, err := env.clubSvc.ValidateClubAdmin(ctx, admin.ID, true); err != nil {
		t.Fatalf("validate admin: %v", err)
	}

	user, pair, err := env.authSvc.Login(ctx, LoginInput{Email: admin.Email, Password: "s3cret-password"})
	if err != nil {
		t.Fatalf("login after onboarding: %v", err)
	}
	if user.ID != admin.ID {
		t.Fatalf("login returned wrong user: %s", user.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("login returned empty token pair")
	}
}

func TestLoginRequiresActiveAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, admin := createdClubAdmin(t, env)
	token := *admin.ActivationToken
	if _, err := env.authSvc.ActivateAccount(ctx, token, "s3cret-password"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	completedClubProfile(t, env, token)

	// PENDIENTE accounts authenticate but are not let in.
	_, _, err := env.authSvc.Login(ctx, LoginInput{Email: admin.Email, Password: "s3cret-password"})
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("pending login: want ErrAccountInactive, got %v", err)
	}

	if _, err := env.clubSvc.ValidateClubAdmin(ctx, admin.ID, true); err != nil {
		t.Fatalf("validate admin: %v", err)
	}

	user, pair, err := env.authSvc.Login(ctx, LoginInput{Email: admin.Email, Password: "s3cret-password"})
	if err != nil {
		t.Fatalf("active login: %v", err)
	}
	if user.ID != admin.ID {
		t.Fatalf("login returned wrong user: %s", user.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("login returned empty token pair")
	}

	if _, err := env.authSvc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, admin := createdClubAdmin(t, env)
	token := *admin.ActivationToken
	if _, err := env.authSvc.ActivateAccount(ctx, token, "s3cret-password"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	completedClubProfile(t, env, token)
	if _, err := env.clubSvc.ValidateClubAdmin(ctx, admin.ID, true); err != nil {
		t.Fatalf("validate admin: %v", err)
	}

	_, _, err := env.authSvc.Login(ctx, LoginInput{Email: admin.Email, Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("wrong password: want ErrInvalidCredential, got %v", err)
	}
	_, _, err = env.authSvc.Login(ctx, LoginInput{Email: "nobody@test", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("unknown email: want ErrInvalidCredential, got %v", err)
	}
}
