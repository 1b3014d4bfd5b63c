package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luminospark/asambal-system/auth"
	"github.com/luminospark/asambal-system/models"
)

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-access-secret", "test-refresh-secret")
}

func clubAdminUser(clubs ...models.ClubMembership) *models.User {
	return &models.User{
		ID:     "u1",
		Email:  "admin@club.test",
		Roles:  []models.Role{models.RoleClubAdmin},
		Status: models.StatusActive,
		Clubs:  clubs,
	}
}

func bearerRequest(t *testing.T, tokens *auth.TokenManager, user *models.User) *http.Request {
	t.Helper()
	token, err := tokens.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestAuthenticate(t *testing.T) {
	tokens := newTokens()
	var gotClaims *auth.Claims
	handler := Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bearerRequest(t, tokens, clubAdminUser()))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: want 200, got %d", rec.Code)
	}
	if gotClaims == nil || gotClaims.UserID != "u1" {
		t.Fatalf("claims not stored in context: %+v", gotClaims)
	}

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: want 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: want 401, got %d", rec.Code)
	}

	// Refresh tokens are not a substitute for access tokens.
	refresh, err := tokens.GenerateRefreshToken(clubAdminUser())
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+refresh)
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token on a protected route: want 401, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tokens := newTokens()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	asAdmin := Authenticate(tokens)(RequireRole(models.RoleAsambalAdmin)(ok))
	rec := httptest.NewRecorder()
	asAdmin.ServeHTTP(rec, bearerRequest(t, tokens, clubAdminUser()))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("club admin on federation route: want 403, got %d", rec.Code)
	}

	either := Authenticate(tokens)(RequireRole(models.RoleAsambalAdmin, models.RoleClubAdmin)(ok))
	rec = httptest.NewRecorder()
	either.ServeHTTP(rec, bearerRequest(t, tokens, clubAdminUser()))
	if rec.Code != http.StatusOK {
		t.Fatalf("role in wanted set: want 200, got %d", rec.Code)
	}
}

func TestResolveActiveClub(t *testing.T) {
	tokens := newTokens()
	var resolved string
	chain := Authenticate(tokens)(ResolveActiveClub(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, _ = GetActiveClubFromContext(r.Context())
	})))

	oneClub := clubAdminUser(models.ClubMembership{ClubID: "c1", ClubName: "Norte", Status: models.StatusActive})
	twoClubs := clubAdminUser(
		models.ClubMembership{ClubID: "c1", ClubName: "Norte", Status: models.StatusActive},
		models.ClubMembership{ClubID: "c2", ClubName: "Sur", Status: models.StatusActive},
	)

	// A sole membership is the implicit default.
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, bearerRequest(t, tokens, oneClub))
	if rec.Code != http.StatusOK || resolved != "c1" {
		t.Fatalf("sole membership: code=%d resolved=%q", rec.Code, resolved)
	}

	// With several memberships the header is mandatory.
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, bearerRequest(t, tokens, twoClubs))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("ambiguous membership without header: want 403, got %d", rec.Code)
	}

	resolved = ""
	rec = httptest.NewRecorder()
	r := bearerRequest(t, tokens, twoClubs)
	r.Header.Set(ActiveClubHeader, "c2")
	chain.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK || resolved != "c2" {
		t.Fatalf("explicit header: code=%d resolved=%q", rec.Code, resolved)
	}

	// A club outside the token's memberships is refused.
	rec = httptest.NewRecorder()
	r = bearerRequest(t, tokens, twoClubs)
	r.Header.Set(ActiveClubHeader, "c9")
	chain.ServeHTTP(rec, r)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign club header: want 403, got %d", rec.Code)
	}
}
