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

// CreationOutcome distinguishes the non-error results of a coach or
// player registration attempt.
type CreationOutcome string

const (
	OutcomeCreated          CreationOutcome = "CREATED"
	OutcomeExistsElsewhere  CreationOutcome = "EXISTS_ELSEWHERE"
	OutcomeCategoriesDiffer CreationOutcome = "CATEGORIES_DIFFER"
	OutcomeTransferStarted  CreationOutcome = "TRANSFER_STARTED"
)

type CreateCoachInput struct {
	Email      string   `json:"email"`
	FirstName  string   `json:"nombre"`
	LastName   string   `json:"apellido"`
	ClubID     string   `json:"clubId"`
	Categories []string `json:"categorias"`
}

type CompleteCoachProfileInput struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"telefono"`
	Address   string `json:"domicilio"`
	ENEA      string `json:"enea"`
	DNI       string `json:"dni"`
}

// CoachCreationResult carries the decision-tree outcome. Only
// OutcomeCreated implies documents were written.
type CoachCreationResult struct {
	Outcome           CreationOutcome `json:"outcome"`
	Coach             *models.Coach   `json:"coach,omitempty"`
	User              *models.User    `json:"user,omitempty"`
	MissingCategories []string        `json:"missingCategories,omitempty"`
	EmailDelivered    bool            `json:"emailDelivered"`
}

type CoachService interface {
	CreateCoach(ctx context.Context, input CreateCoachInput, createdBy string) (*CoachCreationResult, error)
	ConfirmCategoryMerge(ctx context.Context, email, clubID string, categories []string) (*models.Coach, error)
	CompleteCoachProfile(ctx context.Context, token string, input CompleteCoachProfileInput) (*models.Coach, error)
	PrefillByToken(ctx context.Context, token string) (*models.Coach, error)
	SendJoinRequest(ctx context.Context, clubID, coachEmail string, categories []string) (*models.CoachJoinRequest, error)
	ListJoinRequests(ctx context.Context, coachID string) ([]*models.CoachJoinRequest, error)
	RespondJoinRequest(ctx context.Context, coachID, requestID string, accept bool) (*models.CoachJoinRequest, error)
	ValidateCoach(ctx context.Context, clubID, coachID string, approve bool) (*models.Coach, error)
	ToggleCoachStatus(ctx context.Context, clubID, coachID string) (*models.Coach, error)
	ListByClub(ctx context.Context, clubID string) ([]*models.Coach, error)
	GetByID(ctx context.Context, coachID string) (*models.Coach, error)
}

type coachService struct {
	store       docstore.Store
	coachRepo   repositories.CoachRepository
	requestRepo repositories.CoachRequestRepository
	userRepo    repositories.UserRepository
	clubRepo    repositories.ClubRepository
	credentials auth.CredentialStore
	email       EmailSender
	logger      *slog.Logger
}

func NewCoachService(
	store docstore.Store,
	coachRepo repositories.CoachRepository,
	requestRepo repositories.CoachRequestRepository,
	userRepo repositories.UserRepository,
	clubRepo repositories.ClubRepository,
	credentials auth.CredentialStore,
	email EmailSender,
	logger *slog.Logger,
) CoachService {
	return &coachService{
		store:       store,
		coachRepo:   coachRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		clubRepo:    clubRepo,
		credentials: credentials,
		email:       email,
		logger:      logger,
	}
}

// CreateCoach walks the registration decision tree. Every branch that
// does not end in OutcomeCreated leaves the store untouched.
func (s *coachService) CreateCoach(ctx context.Context, input CreateCoachInput, createdBy string) (*CoachCreationResult, error) {
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

	var result *CoachCreationResult
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

		existingCoach, err := s.coachRepo.GetByEmail(ctx, tx, input.Email)
		if err != nil && !errors.Is(err, repositories.ErrCoachNotFound) {
			return err
		}

		if existingCoach != nil {
			membership, member := models.FindMembership(existingCoach.Clubs, input.ClubID)
			switch {
			case member && len(models.CategoryDiff(membership.Categories, input.Categories)) == 0:
				return ErrAlreadyMember
			case member:
				result = &CoachCreationResult{
					Outcome:           OutcomeCategoriesDiffer,
					Coach:             existingCoach,
					MissingCategories: models.CategoryDiff(membership.Categories, input.Categories),
				}
				return nil
			default:
				result = &CoachCreationResult{
					Outcome: OutcomeExistsElsewhere,
					Coach:   existingCoach,
				}
				return nil
			}
		}

		token = generateRandomToken(48)
		activation := token
		user := &models.User{
			Email:           input.Email,
			Roles:           []models.Role{models.RoleCoach},
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

		coach := &models.Coach{
			UserID:    user.ID,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			Status:    models.StatusIncomplete,
			Clubs:     user.Clubs,
		}
		if err := s.coachRepo.Create(ctx, tx, coach); err != nil {
			return err
		}

		result = &CoachCreationResult{Outcome: OutcomeCreated, Coach: coach, User: user}
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

// ConfirmCategoryMerge applies the missing categories to an existing
// membership after the caller explicitly confirmed the diff.
func (s *coachService) ConfirmCategoryMerge(ctx context.Context, email, clubID string, categories []string) (*models.Coach, error) {
	var merged *models.Coach
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		coach, err := s.coachRepo.GetByEmail(ctx, tx, email)
		if err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return ErrCoachNotFound
			}
			return err
		}
		membership, ok := models.FindMembership(coach.Clubs, clubID)
		if !ok {
			return ErrInvalidState
		}

		coach.Clubs = models.UpsertMembership(coach.Clubs, clubID, models.MembershipPatch{
			Categories: models.MergeCategories(membership.Categories, categories),
		})
		if err := s.coachRepo.Save(ctx, tx, coach); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, tx, coach.UserID)
		if err != nil {
			return err
		}
		user.Clubs = coach.Clubs
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		merged = coach
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *coachService) CompleteCoachProfile(ctx context.Context, token string, input CompleteCoachProfileInput) (*models.Coach, error) {
	var completed *models.Coach
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

		coach, err := s.coachRepo.GetByUserID(ctx, tx, user.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return ErrCoachNotFound
			}
			return err
		}

		coach.FirstName = input.FirstName
		coach.LastName = input.LastName
		coach.Phone = input.Phone
		coach.Address = input.Address
		coach.ENEA = input.ENEA
		coach.DNI = input.DNI
		coach.Status = models.StatusPending
		for i := range coach.Clubs {
			if coach.Clubs[i].Status == models.StatusIncomplete {
				coach.Clubs[i].Status = models.StatusPending
			}
		}
		if err := s.coachRepo.Save(ctx, tx, coach); err != nil {
			return err
		}

		user.Status = models.StatusPending
		user.ActivationToken = nil
		user.Clubs = coach.Clubs
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		completed = coach
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// PrefillByToken returns the coach profile behind an activation token
// so the completion form can be pre-populated.
func (s *coachService) PrefillByToken(ctx context.Context, token string) (*models.Coach, error) {
	user, err := s.userRepo.GetByActivationToken(ctx, nil, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	coach, err := s.coachRepo.GetByUserID(ctx, nil, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoachNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return coach, nil
}

func (s *coachService) SendJoinRequest(ctx context.Context, clubID, coachEmail string, categories []string) (*models.CoachJoinRequest, error) {
	club, err := s.clubRepo.GetByID(ctx, nil, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	var request *models.CoachJoinRequest
	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		coach, err := s.coachRepo.GetByEmail(ctx, tx, coachEmail)
		if err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return ErrCoachNotFound
			}
			return err
		}
		if _, member := models.FindMembership(coach.Clubs, clubID); member {
			return ErrAlreadyMember
		}
		if _, err := s.requestRepo.FindPending(ctx, tx, coach.ID, clubID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return err
		}

		request = &models.CoachJoinRequest{
			CoachID:    coach.ID,
			CoachEmail: coach.Email,
			ClubID:     club.ID,
			ClubName:   club.Name,
			Categories: categories,
			Status:     models.JoinRequestPending,
		}
		return s.requestRepo.Create(ctx, tx, request)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *coachService) ListJoinRequests(ctx context.Context, coachID string) ([]*models.CoachJoinRequest, error) {
	return s.requestRepo.ListPendingByCoach(ctx, nil, coachID)
}

// RespondJoinRequest records the coach's own decision. Acceptance
// appends an ACTIVO membership to both coach and user documents in the
// same transaction.
func (s *coachService) RespondJoinRequest(ctx context.Context, coachID, requestID string, accept bool) (*models.CoachJoinRequest, error) {
	var responded *models.CoachJoinRequest
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		request, err := s.requestRepo.GetByID(ctx, tx, requestID)
		if err != nil {
			if errors.Is(err, repositories.ErrJoinRequestNotFound) {
				return ErrJoinRequestNotFound
			}
			return err
		}
		if request.CoachID != coachID {
			return ErrForbidden
		}
		if request.Status != models.JoinRequestPending {
			return ErrInvalidState
		}

		now := time.Now().UTC()
		request.RespondedAt = &now
		if !accept {
			request.Status = models.JoinRequestRejected
			responded = request
			return s.requestRepo.Save(ctx, tx, request)
		}

		coach, err := s.coachRepo.GetByID(ctx, tx, request.CoachID)
		if err != nil {
			return err
		}
		active := models.StatusActive
		coach.Clubs = models.UpsertMembership(coach.Clubs, request.ClubID, models.MembershipPatch{
			ClubName:   &request.ClubName,
			Categories: request.Categories,
			Status:     &active,
		})
		if err := s.coachRepo.Save(ctx, tx, coach); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, tx, coach.UserID)
		if err != nil {
			return err
		}
		user.Clubs = coach.Clubs
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}

		request.Status = models.JoinRequestAccepted
		responded = request
		return s.requestRepo.Save(ctx, tx, request)
	})
	if err != nil {
		return nil, err
	}
	return responded, nil
}

// ValidateCoach decides a pending coach for one club. Only the
// membership entry matching clubID changes; entries at other clubs are
// never touched. Approval at the first club activates the account and
// provisions a credential after commit; provisioning failure is
// logged, not rolled back.
func (s *coachService) ValidateCoach(ctx context.Context, clubID, coachID string, approve bool) (*models.Coach, error) {
	var validated *models.Coach
	var firstApproval bool

	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		firstApproval = false
		coach, err := s.coachRepo.GetByID(ctx, tx, coachID)
		if err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return ErrCoachNotFound
			}
			return err
		}
		membership, ok := models.FindMembership(coach.Clubs, clubID)
		if !ok {
			return ErrForbidden
		}
		if membership.Status != models.StatusPending {
			return ErrInvalidState
		}

		decided := models.DecisionStatus(approve)
		coach.Clubs = models.UpsertMembership(coach.Clubs, clubID, models.MembershipPatch{Status: &decided})
		if err := s.coachRepo.Save(ctx, tx, coach); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, tx, coach.UserID)
		if err != nil {
			return err
		}
		user.Clubs = coach.Clubs
		if approve && user.Status == models.StatusPending {
			user.Status = models.StatusActive
			coach.Status = models.StatusActive
			firstApproval = true
			if err := s.coachRepo.Save(ctx, tx, coach); err != nil {
				return err
			}
		}
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		validated = coach
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

// ToggleCoachStatus flips one club membership between ACTIVO and
// INACTIVO.
func (s *coachService) ToggleCoachStatus(ctx context.Context, clubID, coachID string) (*models.Coach, error) {
	var toggled *models.Coach
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		coach, err := s.coachRepo.GetByID(ctx, tx, coachID)
		if err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return ErrCoachNotFound
			}
			return err
		}
		membership, ok := models.FindMembership(coach.Clubs, clubID)
		if !ok {
			return ErrForbidden
		}
		next, err := membership.Status.Toggled()
		if err != nil {
			return ErrInvalidState
		}

		coach.Clubs = models.UpsertMembership(coach.Clubs, clubID, models.MembershipPatch{Status: &next})
		if err := s.coachRepo.Save(ctx, tx, coach); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, tx, coach.UserID)
		if err != nil {
			return err
		}
		user.Clubs = coach.Clubs
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}
		toggled = coach
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

func (s *coachService) ListByClub(ctx context.Context, clubID string) ([]*models.Coach, error) {
	return s.coachRepo.ListByClub(ctx, nil, clubID)
}

func (s *coachService) GetByID(ctx context.Context, coachID string) (*models.Coach, error) {
	coach, err := s.coachRepo.GetByID(ctx, nil, coachID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoachNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return coach, nil
}
