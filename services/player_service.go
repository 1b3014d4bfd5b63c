package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/luminospark/asambal-system/auth"
	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

type CreatePlayerInput struct {
	Email      string   `json:"email"`
	FirstName  string   `json:"nombre"`
	LastName   string   `json:"apellido"`
	ClubID     string   `json:"clubId"`
	CoachID    string   `json:"coachId"`
	Categories []string `json:"categorias"`
}

type CompletePlayerProfileInput struct {
	FirstName string        `json:"nombre"`
	LastName  string        `json:"apellido"`
	Gender    string        `json:"sexo"`
	BirthDate string        `json:"fechaNacimiento"`
	DNI       string        `json:"dni"`
	Phone     string        `json:"telefono"`
	Address   string        `json:"domicilio"`
	School    string        `json:"escuela"`
	Height    float64       `json:"estatura"`
	Weight    float64       `json:"peso"`
	Tutor     *models.Tutor `json:"tutor"`
}

// PlayerCreationResult reports whether registration created documents
// or redirected into a transfer request.
type PlayerCreationResult struct {
	Outcome        CreationOutcome         `json:"outcome"`
	Player         *models.Player          `json:"player,omitempty"`
	User           *models.User            `json:"user,omitempty"`
	Transfer       *models.TransferRequest `json:"transfer,omitempty"`
	EmailDelivered bool                    `json:"emailDelivered"`
}

type PlayerService interface {
	CreateOrTransferPlayer(ctx context.Context, input CreatePlayerInput, createdBy string) (*PlayerCreationResult, error)
	CompletePlayerProfile(ctx context.Context, token string, input CompletePlayerProfileInput) (*models.Player, error)
	ValidatePlayer(ctx context.Context, clubID, playerID string, approve bool) (*models.Player, error)
	GetByID(ctx context.Context, playerID string) (*models.Player, error)
	GetByUserID(ctx context.Context, userID string) (*models.Player, error)
	ListByClub(ctx context.Context, clubID string) ([]*models.Player, error)
	ListByCoach(ctx context.Context, coachID string) ([]*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
}

type playerService struct {
	store        docstore.Store
	playerRepo   repositories.PlayerRepository
	userRepo     repositories.UserRepository
	clubRepo     repositories.ClubRepository
	transferRepo repositories.TransferRepository
	credentials  auth.CredentialStore
	email        EmailSender
	logger       *slog.Logger
}

func NewPlayerService(
	store docstore.Store,
	playerRepo repositories.PlayerRepository,
	userRepo repositories.UserRepository,
	clubRepo repositories.ClubRepository,
	transferRepo repositories.TransferRepository,
	credentials auth.CredentialStore,
	email EmailSender,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		store:        store,
		playerRepo:   playerRepo,
		userRepo:     userRepo,
		clubRepo:     clubRepo,
		transferRepo: transferRepo,
		credentials:  credentials,
		email:        email,
		logger:       logger,
	}
}

// CreateOrTransferPlayer registers a new player, or, when the email
// already belongs to a player at another club, opens a transfer request
// instead of creating anything.
func (s *playerService) CreateOrTransferPlayer(ctx context.Context, input CreatePlayerInput, createdBy string) (*PlayerCreationResult, error) {
	if input.Email == "" || input.ClubID == "" {
		return nil, ErrValidationFailed
	}

	club, err := s.clubRepo.GetByID(ctx, nil, input.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	var result *PlayerCreationResult
	var token string

	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		result = nil
		token = ""

		existingUser, err := s.userRepo.GetByEmail(ctx, tx, input.Email)
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return err
		}
		if existingUser != nil && models.IsAdminRole(existingUser.Roles) {
			return ErrAdminEmailConflict
		}

		existing, err := s.playerRepo.GetByEmail(ctx, tx, input.Email)
		if err != nil && !errors.Is(err, repositories.ErrPlayerNotFound) {
			return err
		}

		if existing != nil {
			if _, member := models.FindMembership(existing.Clubs, input.ClubID); member {
				return ErrAlreadyMember
			}
			if _, err := s.transferRepo.FindOpenByPlayer(ctx, tx, existing.ID); err == nil {
				return ErrTransferPending
			} else if !errors.Is(err, repositories.ErrTransferNotFound) {
				return err
			}

			origin, _ := existing.PrimaryClub()
			transfer := &models.TransferRequest{
				PlayerID:   existing.ID,
				PlayerName: existing.FirstName + " " + existing.LastName,
				Origin: models.ClubSnapshot{
					ClubID:     origin.ClubID,
					Name:       origin.ClubName,
					Categories: origin.Categories,
				},
				Destination: models.ClubSnapshot{
					ClubID:     club.ID,
					Name:       club.Name,
					Categories: input.Categories,
				},
				Categories: input.Categories,
				Status:     models.TransferPending,
			}
			if err := s.transferRepo.Create(ctx, tx, transfer); err != nil {
				return err
			}
			result = &PlayerCreationResult{Outcome: OutcomeTransferStarted, Player: existing, Transfer: transfer}
			return nil
		}

		token = generateRandomToken(48)
		activation := token
		user := &models.User{
			Email:           input.Email,
			Roles:           []models.Role{models.RolePlayer},
			Status:          models.StatusIncomplete,
			ActivationToken: &activation,
			Clubs: []models.ClubMembership{{
				ClubID:     club.ID,
				ClubName:   club.Name,
				Categories: input.Categories,
				Status:     models.StatusIncomplete,
			}},
			CreatedBy: createdBy,
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}

		player := &models.Player{
			UserID:              user.ID,
			CoachID:             input.CoachID,
			FirstName:           input.FirstName,
			LastName:            input.LastName,
			Email:               input.Email,
			Status:              models.StatusIncomplete,
			EligibleToPlay:      false,
			IneligibilityReason: models.IneligibilityEnrollmentPending,
			Clubs:               user.Clubs,
		}
		if err := s.playerRepo.Create(ctx, tx, player); err != nil {
			return err
		}

		result = &PlayerCreationResult{Outcome: OutcomeCreated, Player: player, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == OutcomeCreated {
		result.EmailDelivered = true
		if err := s.email.SendActivationEmail(input.Email, token); err != nil {
			result.EmailDelivered = false
			s.logger.Warn("activation email failed", "email", input.Email, "error", err)
		}
	}
	return result, nil
}

// CompletePlayerProfile fills in the profile behind an activation
// token. A minor at completion time must come with tutor data.
func (s *playerService) CompletePlayerProfile(ctx context.Context, token string, input CompletePlayerProfileInput) (*models.Player, error) {
	var completed *models.Player
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

		player, err := s.playerRepo.GetByUserID(ctx, tx, user.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		player.FirstName = input.FirstName
		player.LastName = input.LastName
		player.Gender = input.Gender
		player.BirthDate = input.BirthDate
		player.DNI = input.DNI
		player.Phone = input.Phone
		player.Address = input.Address
		player.School = input.School
		player.Height = input.Height
		player.Weight = input.Weight
		player.Tutor = input.Tutor

		age, ok := player.Age(time.Now().UTC())
		if !ok {
			return ErrValidationFailed
		}
		if age < models.LegalAge && player.Tutor == nil {
			return ErrTutorRequired
		}

		player.Status = models.StatusPending
		for i := range player.Clubs {
			if player.Clubs[i].Status == models.StatusIncomplete {
				player.Clubs[i].Status = models.StatusPending
			}
		}
		if err := s.playerRepo.Save(ctx, tx, player); err != nil {
			return err
		}

		user.Status = models.StatusPending
		user.ActivationToken = nil
		user.Clubs = player.Clubs
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		completed = player
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// ValidatePlayer decides a pending player for one club. Approval at
// the first club activates the account and provisions a credential
// after commit; provisioning failure is logged, not rolled back.
func (s *playerService) ValidatePlayer(ctx context.Context, clubID, playerID string, approve bool) (*models.Player, error) {
	var validated *models.Player
	var firstApproval bool

	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		firstApproval = false

		player, err := s.playerRepo.GetByID(ctx, tx, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}
		membership, ok := models.FindMembership(player.Clubs, clubID)
		if !ok {
			return ErrForbidden
		}
		if membership.Status != models.StatusPending {
			return ErrInvalidState
		}

		decided := models.DecisionStatus(approve)
		player.Clubs = models.UpsertMembership(player.Clubs, clubID, models.MembershipPatch{Status: &decided})
		if err := s.playerRepo.Save(ctx, tx, player); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, tx, player.UserID)
		if err != nil {
			return err
		}
		user.Clubs = player.Clubs
		if approve && user.Status == models.StatusPending {
			user.Status = models.StatusActive
			player.Status = models.StatusActive
			firstApproval = true
			if err := s.playerRepo.Save(ctx, tx, player); err != nil {
				return err
			}
		}
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		validated = player
		return nil
	})
	if err != nil {
		return nil, err
	}

	if firstApproval {
		if _, err := s.credentials.CreateIfNotExists(ctx, validated.Email, ""); err != nil {
			s.logger.Warn("credential provisioning failed", "email", validated.Email, "error", err)
		}
	}
	return validated, nil
}

func (s *playerService) GetByID(ctx context.Context, playerID string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) GetByUserID(ctx context.Context, userID string) (*models.Player, error) {
	player, err := s.playerRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) ListByClub(ctx context.Context, clubID string) ([]*models.Player, error) {
	return s.playerRepo.ListByClub(ctx, nil, clubID)
}

func (s *playerService) ListByCoach(ctx context.Context, coachID string) ([]*models.Player, error) {
	return s.playerRepo.ListByCoach(ctx, nil, coachID)
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx, nil)
}
