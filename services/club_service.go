package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
	"github.com/luminospark/asambal-system/storage"
)

type CreateClubInput struct {
	Name       string `json:"nombre"`
	City       string `json:"ciudad"`
	AdminEmail string `json:"email"`
	Manager    string `json:"responsable"`
}

type CompleteClubProfileInput struct {
	Manager           string   `json:"responsable"`
	Venue             string   `json:"sede"`
	Phone             string   `json:"telefono"`
	Courts            []string `json:"canchas"`
	AlternativeCourts []string `json:"canchasAlternativas"`
}

type UpdateClubInput struct {
	Name              *string  `json:"nombre"`
	City              *string  `json:"ciudad"`
	Manager           *string  `json:"responsable"`
	Venue             *string  `json:"sede"`
	Phone             *string  `json:"telefono"`
	Courts            []string `json:"canchas"`
	AlternativeCourts []string `json:"canchasAlternativas"`
}

// ClubCreationResult reports the created documents plus whether the
// activation email actually went out; delivery failure is degraded,
// not rolled back.
type ClubCreationResult struct {
	Club           *models.Club `json:"club"`
	Admin          *models.User `json:"admin"`
	EmailDelivered bool         `json:"emailDelivered"`
}

type ClubService interface {
	CreateClubWithAdmin(ctx context.Context, input CreateClubInput, createdBy string) (*ClubCreationResult, error)
	CompleteClubProfile(ctx context.Context, token string, input CompleteClubProfileInput) (*models.Club, error)
	ValidateClubAdmin(ctx context.Context, userID string, approve bool) (*models.User, error)
	ToggleClubStatus(ctx context.Context, clubID string) (*models.Club, error)
	UpdateClub(ctx context.Context, clubID string, input UpdateClubInput) (*models.Club, error)
	GetClubByID(ctx context.Context, clubID string) (*models.Club, error)
	GetClubs(ctx context.Context) ([]*models.Club, error)
	UploadHero(ctx context.Context, clubID string, file io.Reader) (*models.Club, error)
	RemoveHero(ctx context.Context, clubID string) (*models.Club, error)
}

type clubService struct {
	store      docstore.Store
	clubRepo   repositories.ClubRepository
	userRepo   repositories.UserRepository
	coachRepo  repositories.CoachRepository
	playerRepo repositories.PlayerRepository
	email      EmailSender
	uploader   storage.FileUploader
	converter  storage.ImageConverter
	logger     *slog.Logger
}

func NewClubService(
	store docstore.Store,
	clubRepo repositories.ClubRepository,
	userRepo repositories.UserRepository,
	coachRepo repositories.CoachRepository,
	playerRepo repositories.PlayerRepository,
	email EmailSender,
	uploader storage.FileUploader,
	converter storage.ImageConverter,
	logger *slog.Logger,
) ClubService {
	return &clubService{
		store:      store,
		clubRepo:   clubRepo,
		userRepo:   userRepo,
		coachRepo:  coachRepo,
		playerRepo: playerRepo,
		email:      email,
		uploader:   uploader,
		converter:  converter,
		logger:     logger,
	}
}

func (s *clubService) CreateClubWithAdmin(ctx context.Context, input CreateClubInput, createdBy string) (*ClubCreationResult, error) {
	if input.Name == "" || input.AdminEmail == "" {
		return nil, ErrValidationFailed
	}

	token := generateRandomToken(48)
	club := &models.Club{
		Name:    input.Name,
		City:    input.City,
		Email:   input.AdminEmail,
		Manager: input.Manager,
		Status:  models.StatusIncomplete,
	}
	club.CreatedBy = createdBy
	admin := &models.User{
		Email:           input.AdminEmail,
		Roles:           []models.Role{models.RoleClubAdmin},
		Status:          models.StatusIncomplete,
		ActivationToken: &token,
		CreatedBy:       createdBy,
	}

	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		_, err := s.userRepo.GetByEmail(ctx, tx, input.AdminEmail)
		if err == nil {
			return ErrAdminEmailConflict
		}
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return err
		}

		if err := s.clubRepo.Create(ctx, tx, club); err != nil {
			return err
		}
		admin.Clubs = []models.ClubMembership{{
			ClubID:   club.ID,
			ClubName: club.Name,
			Status:   models.StatusIncomplete,
		}}
		return s.userRepo.Create(ctx, tx, admin)
	})
	if err != nil {
		return nil, err
	}

	delivered := true
	if err := s.email.SendActivationEmail(admin.Email, token); err != nil {
		delivered = false
		s.logger.Warn("activation email failed", "email", admin.Email, "error", err)
	}

	return &ClubCreationResult{Club: club, Admin: admin, EmailDelivered: delivered}, nil
}

func (s *clubService) CompleteClubProfile(ctx context.Context, token string, input CompleteClubProfileInput) (*models.Club, error) {
	var completed *models.Club
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		user, err := s.userRepo.GetByActivationToken(ctx, tx, token)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if user.Status != models.StatusIncomplete {
			return ErrInvalidState
		}
		if len(user.Clubs) == 0 {
			return ErrClubNotFound
		}

		club, err := s.clubRepo.GetByID(ctx, tx, user.Clubs[0].ClubID)
		if err != nil {
			if errors.Is(err, repositories.ErrClubNotFound) {
				return ErrClubNotFound
			}
			return err
		}

		club.Manager = input.Manager
		club.Venue = input.Venue
		club.Phone = input.Phone
		club.Courts = input.Courts
		club.AlternativeCourts = input.AlternativeCourts
		club.Status = models.StatusPending
		if err := s.clubRepo.Save(ctx, tx, club); err != nil {
			return err
		}

		user.Status = models.StatusPending
		user.ActivationToken = nil
		user.Clubs = models.UpsertMembership(user.Clubs, club.ID, models.MembershipPatch{
			Status: statusPtr(models.StatusPending),
		})
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		completed = club
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (s *clubService) ValidateClubAdmin(ctx context.Context, userID string, approve bool) (*models.User, error) {
	var validated *models.User
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		user, err := s.userRepo.GetByID(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.Status != models.StatusPending {
			return ErrInvalidState
		}

		decided := models.DecisionStatus(approve)
		user.Status = decided
		for i := range user.Clubs {
			user.Clubs[i].Status = decided
		}
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}

		if len(user.Clubs) > 0 {
			club, err := s.clubRepo.GetByID(ctx, tx, user.Clubs[0].ClubID)
			if err != nil {
				return err
			}
			club.Status = decided
			if err := s.clubRepo.Save(ctx, tx, club); err != nil {
				return err
			}
		}
		validated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return validated, nil
}

// ToggleClubStatus flips ACTIVO/INACTIVO and cascades the new status
// to every membership entry referencing the club on user, coach and
// player documents, all inside one transaction.
func (s *clubService) ToggleClubStatus(ctx context.Context, clubID string) (*models.Club, error) {
	var toggled *models.Club
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		club, err := s.clubRepo.GetByID(ctx, tx, clubID)
		if err != nil {
			if errors.Is(err, repositories.ErrClubNotFound) {
				return ErrClubNotFound
			}
			return err
		}
		next, err := club.Status.Toggled()
		if err != nil {
			return ErrInvalidState
		}
		club.Status = next
		if err := s.clubRepo.Save(ctx, tx, club); err != nil {
			return err
		}

		patch := models.MembershipPatch{Status: &next}

		users, err := s.userRepo.ListByClub(ctx, tx, clubID)
		if err != nil {
			return err
		}
		for _, user := range users {
			user.Clubs = models.UpsertMembership(user.Clubs, clubID, patch)
			if err := s.userRepo.Save(ctx, tx, user); err != nil {
				return err
			}
		}

		coaches, err := s.coachRepo.ListByClub(ctx, tx, clubID)
		if err != nil {
			return err
		}
		for _, coach := range coaches {
			coach.Clubs = models.UpsertMembership(coach.Clubs, clubID, patch)
			if err := s.coachRepo.Save(ctx, tx, coach); err != nil {
				return err
			}
		}

		players, err := s.playerRepo.ListByClub(ctx, tx, clubID)
		if err != nil {
			return err
		}
		for _, player := range players {
			player.Clubs = models.UpsertMembership(player.Clubs, clubID, patch)
			if err := s.playerRepo.Save(ctx, tx, player); err != nil {
				return err
			}
		}

		toggled = club
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

func (s *clubService) UpdateClub(ctx context.Context, clubID string, input UpdateClubInput) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, nil, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		club.Name = *input.Name
	}
	if input.City != nil {
		club.City = *input.City
	}
	if input.Manager != nil {
		club.Manager = *input.Manager
	}
	if input.Venue != nil {
		club.Venue = *input.Venue
	}
	if input.Phone != nil {
		club.Phone = *input.Phone
	}
	if input.Courts != nil {
		club.Courts = input.Courts
	}
	if input.AlternativeCourts != nil {
		club.AlternativeCourts = input.AlternativeCourts
	}

	if err := s.clubRepo.Save(ctx, nil, club); err != nil {
		return nil, err
	}
	return club, nil
}

func (s *clubService) GetClubByID(ctx context.Context, clubID string) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, nil, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return club, nil
}

func (s *clubService) GetClubs(ctx context.Context) ([]*models.Club, error) {
	return s.clubRepo.List(ctx, nil)
}

func (s *clubService) UploadHero(ctx context.Context, clubID string, file io.Reader) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, nil, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	converted, err := s.converter.ToWebP(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	result, err := s.uploader.Upload(ctx, heroKey(club.ID), "image/webp", converted)
	if err != nil {
		return nil, fmt.Errorf("upload hero image: %w", err)
	}

	now := time.Now().UTC()
	club.HeroURL = result.Location
	club.HeroUpdatedAt = &now
	if err := s.clubRepo.Save(ctx, nil, club); err != nil {
		return nil, err
	}
	return club, nil
}

// RemoveHero deletes the stored hero object and clears the club's
// hero fields. Clubs without a hero are left untouched.
func (s *clubService) RemoveHero(ctx context.Context, clubID string) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, nil, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	if club.HeroURL == "" {
		return club, nil
	}

	if err := s.uploader.Delete(ctx, heroKey(club.ID)); err != nil {
		return nil, fmt.Errorf("delete hero image: %w", err)
	}

	club.HeroURL = ""
	club.HeroUpdatedAt = nil
	if err := s.clubRepo.Save(ctx, nil, club); err != nil {
		return nil, err
	}
	return club, nil
}

// The hero lives at a fixed key per club, so a re-upload overwrites it.
func heroKey(clubID string) string {
	return fmt.Sprintf("clubs/%s/hero.webp", clubID)
}

func statusPtr(s models.Status) *models.Status { return &s }
