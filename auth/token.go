package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/luminospark/asambal-system/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"

	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// ClubRef is the club membership summary embedded in token claims.
type ClubRef struct {
	ClubID   string `json:"clubId"`
	ClubName string `json:"nombreClub"`
}

type Claims struct {
	UserID string        `json:"sub"`
	Email  string        `json:"email"`
	Roles  []models.Role `json:"roles"`
	Clubs  []ClubRef     `json:"clubs,omitempty"`
	Kind   string        `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the access/refresh token pair.
// Access and refresh tokens use separate secrets so a leaked access
// secret cannot mint long-lived refresh tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenManager(accessSecret, refreshSecret string) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

func (m *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	return m.generate(user, tokenKindAccess, accessTokenTTL, m.accessSecret)
}

func (m *TokenManager) GenerateRefreshToken(user *models.User) (string, error) {
	return m.generate(user, tokenKindRefresh, refreshTokenTTL, m.refreshSecret)
}

func (m *TokenManager) generate(user *models.User, kind string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	// Claims authorize club-scoped requests without a store round trip,
	// so only ACTIVO memberships may be embedded.
	active := user.ActiveMemberships()
	clubs := make([]ClubRef, 0, len(active))
	for _, membership := range active {
		clubs = append(clubs, ClubRef{ClubID: membership.ClubID, ClubName: membership.ClubName})
	}
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
		Clubs:  clubs,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (m *TokenManager) VerifyAccessToken(tokenString string) (*Claims, error) {
	return m.verify(tokenString, tokenKindAccess, m.accessSecret)
}

func (m *TokenManager) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return m.verify(tokenString, tokenKindRefresh, m.refreshSecret)
}

func (m *TokenManager) verify(tokenString, kind string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
