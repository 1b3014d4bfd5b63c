package services

import (
	"context"
	"errors"
	"time"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

type ScholarshipService interface {
	Grant(ctx context.Context, playerID, grantedBy string) (*models.Scholarship, error)
	Revoke(ctx context.Context, scholarshipID string) (*models.Scholarship, error)
	History(ctx context.Context, playerID string) ([]*models.Scholarship, error)
	ListActive(ctx context.Context) ([]*models.Scholarship, error)
	ListHolders(ctx context.Context) ([]*models.Player, error)
}

type scholarshipService struct {
	store           docstore.Store
	scholarshipRepo repositories.ScholarshipRepository
	playerRepo      repositories.PlayerRepository
}

func NewScholarshipService(
	store docstore.Store,
	scholarshipRepo repositories.ScholarshipRepository,
	playerRepo repositories.PlayerRepository,
) ScholarshipService {
	return &scholarshipService{
		store:           store,
		scholarshipRepo: scholarshipRepo,
		playerRepo:      playerRepo,
	}
}

// Grant awards a scholarship. The active-scholarship check runs inside
// the transaction, so concurrent grants for one player collapse to a
// single ACTIVA document.
func (s *scholarshipService) Grant(ctx context.Context, playerID, grantedBy string) (*models.Scholarship, error) {
	var granted *models.Scholarship
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		player, err := s.playerRepo.GetByID(ctx, tx, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		_, err = s.scholarshipRepo.GetActiveByPlayer(ctx, tx, playerID)
		if err == nil {
			return ErrDuplicateActiveScholarship
		}
		if !errors.Is(err, repositories.ErrScholarshipNotFound) {
			return err
		}

		primary, _ := player.PrimaryClub()
		now := time.Now().UTC()
		scholarship := &models.Scholarship{
			PlayerID: player.ID,
			Club: models.ClubSnapshot{
				ClubID:     primary.ClubID,
				Name:       primary.ClubName,
				Categories: primary.Categories,
			},
			GrantedBy: grantedBy,
			GrantedAt: now,
			ExpiresAt: models.ScholarshipExpiry(now),
			Status:    models.ScholarshipActive,
		}
		if err := s.scholarshipRepo.Create(ctx, tx, scholarship); err != nil {
			return err
		}

		player.Scholarship = true
		player.EligibleToPlay = true
		player.IneligibilityReason = ""
		if err := s.playerRepo.Save(ctx, tx, player); err != nil {
			return err
		}
		granted = scholarship
		return nil
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}

// Revoke ends an ACTIVA scholarship. The player drops back to waiting
// for the yearly enrollment campaign.
func (s *scholarshipService) Revoke(ctx context.Context, scholarshipID string) (*models.Scholarship, error) {
	var revoked *models.Scholarship
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		scholarship, err := s.scholarshipRepo.GetByID(ctx, tx, scholarshipID)
		if err != nil {
			if errors.Is(err, repositories.ErrScholarshipNotFound) {
				return ErrScholarshipNotFound
			}
			return err
		}
		if scholarship.Status != models.ScholarshipActive {
			return ErrInvalidState
		}

		now := time.Now().UTC()
		scholarship.Status = models.ScholarshipRevoked
		scholarship.RevokedAt = &now
		if err := s.scholarshipRepo.Save(ctx, tx, scholarship); err != nil {
			return err
		}

		player, err := s.playerRepo.GetByID(ctx, tx, scholarship.PlayerID)
		if err != nil {
			return err
		}
		player.Scholarship = false
		player.EligibleToPlay = false
		player.IneligibilityReason = models.IneligibilityEnrollmentPending
		if err := s.playerRepo.Save(ctx, tx, player); err != nil {
			return err
		}
		revoked = scholarship
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}

func (s *scholarshipService) History(ctx context.Context, playerID string) ([]*models.Scholarship, error) {
	return s.scholarshipRepo.ListByPlayer(ctx, nil, playerID)
}

func (s *scholarshipService) ListActive(ctx context.Context) ([]*models.Scholarship, error) {
	return s.scholarshipRepo.ListActive(ctx, nil)
}

func (s *scholarshipService) ListHolders(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.ListScholarshipHolders(ctx, nil)
}
