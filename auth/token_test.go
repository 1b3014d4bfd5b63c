package auth

import (
	"errors"
	"testing"

	"github.com/luminospark/asambal-system/models"
)

func testUser() *models.User {
	return &models.User{
		ID:     "u1",
		Email:  "admin@club.test",
		Roles:  []models.Role{models.RoleClubAdmin},
		Status: models.StatusActive,
		Clubs: []models.ClubMembership{
			{ClubID: "c1", ClubName: "Club Norte", Status: models.StatusActive},
		},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret")

	token, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "admin@club.test" {
		t.Fatalf("identity claims lost: %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != models.RoleClubAdmin {
		t.Fatalf("roles lost: %v", claims.Roles)
	}
	if len(claims.Clubs) != 1 || claims.Clubs[0].ClubID != "c1" || claims.Clubs[0].ClubName != "Club Norte" {
		t.Fatalf("club refs lost: %+v", claims.Clubs)
	}
}

func TestAccessTokenCarriesOnlyActiveMemberships(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret")

	user := testUser()
	user.Clubs = append(user.Clubs,
		models.ClubMembership{ClubID: "c2", ClubName: "Club Sur", Status: models.StatusInactive},
		models.ClubMembership{ClubID: "c3", ClubName: "Club Este", Status: models.StatusPending},
	)

	token, err := m.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(claims.Clubs) != 1 || claims.Clubs[0].ClubID != "c1" {
		t.Fatalf("claims must carry the ACTIVO membership only, got %+v", claims.Clubs)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret")

	refresh, err := m.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}
	if _, err := m.VerifyAccessToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := m.VerifyRefreshToken(refresh); err != nil {
		t.Fatalf("refresh token must verify as refresh: %v", err)
	}
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret")

	access, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}
	if _, err := m.VerifyRefreshToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret")
	other := NewTokenManager("different-secret", "refresh-secret")

	token, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with a different secret accepted: %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret")
	if _, err := m.VerifyAccessToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage accepted: %v", err)
	}
}
