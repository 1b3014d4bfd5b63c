package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/auth"
	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ActivateAccount(ctx context.Context, token, password string) (*models.User, error)
}

type authService struct {
	store       docstore.Store
	userRepo    repositories.UserRepository
	credentials auth.CredentialStore
	tokens      *auth.TokenManager
}

func NewAuthService(
	store docstore.Store,
	userRepo repositories.UserRepository,
	credentials auth.CredentialStore,
	tokens *auth.TokenManager,
) AuthService {
	return &authService{
		store:       store,
		userRepo:    userRepo,
		credentials: credentials,
		tokens:      tokens,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, *TokenPair, error) {
	if input.Email == "" || input.Password == "" {
		return nil, nil, ErrValidationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, nil, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredential
		}
		return nil, nil, err
	}

	if err := s.credentials.Verify(ctx, input.Email, input.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, nil, ErrInvalidCredential
		}
		return nil, nil, err
	}

	if user.Status != models.StatusActive {
		return nil, nil, ErrAccountInactive
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, nil, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.Status != models.StatusActive {
		return nil, ErrAccountInactive
	}

	return s.issueTokens(user)
}

// ActivateAccount sets the password behind an activation token. The
// token is validated but not consumed here: completing the profile is
// what nulls it and moves the account to PENDIENTE, so the password can
// be set and re-set until the profile is completed.
func (s *authService) ActivateAccount(ctx context.Context, token, password string) (*models.User, error) {
	if token == "" || password == "" {
		return nil, ErrValidationFailed
	}

	user, err := s.userRepo.GetByActivationToken(ctx, nil, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.credentials.SetPassword(ctx, user.Email, password); err != nil {
		return nil, fmt.Errorf("store credentials: %w", err)
	}
	return user, nil
}

func (s *authService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
