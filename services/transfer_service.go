package services

import (
	"context"
	"errors"
	"time"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

type TransferService interface {
	AdminDecide(ctx context.Context, transferID string, approve bool) (*models.TransferRequest, error)
	PlayerDecide(ctx context.Context, transferID, playerID string, accept bool) (*models.TransferRequest, error)
	ListPendingAdmin(ctx context.Context) ([]*models.TransferRequest, error)
	ListPendingPlayer(ctx context.Context, playerID string) ([]*models.TransferRequest, error)
}

type transferService struct {
	store        docstore.Store
	transferRepo repositories.TransferRepository
	playerRepo   repositories.PlayerRepository
	userRepo     repositories.UserRepository
}

func NewTransferService(
	store docstore.Store,
	transferRepo repositories.TransferRepository,
	playerRepo repositories.PlayerRepository,
	userRepo repositories.UserRepository,
) TransferService {
	return &transferService{
		store:        store,
		transferRepo: transferRepo,
		playerRepo:   playerRepo,
		userRepo:     userRepo,
	}
}

// AdminDecide is the federation admin's arbitration step. Approval
// forwards the request to the player; nothing on the player document
// changes yet.
func (s *transferService) AdminDecide(ctx context.Context, transferID string, approve bool) (*models.TransferRequest, error) {
	var decided *models.TransferRequest
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		transfer, err := s.transferRepo.GetByID(ctx, tx, transferID)
		if err != nil {
			if errors.Is(err, repositories.ErrTransferNotFound) {
				return ErrTransferNotFound
			}
			return err
		}
		if transfer.Status != models.TransferPending {
			return ErrInvalidState
		}

		now := time.Now().UTC()
		transfer.AdminDecidedAt = &now
		if approve {
			transfer.Status = models.TransferPendingPlayer
		} else {
			transfer.Status = models.TransferRejectedAdmin
		}
		if err := s.transferRepo.Save(ctx, tx, transfer); err != nil {
			return err
		}
		decided = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// PlayerDecide is the player's own confirmation. Acceptance swaps the
// origin membership for the destination one atomically; rejection
// touches nothing but the request.
func (s *transferService) PlayerDecide(ctx context.Context, transferID, playerID string, accept bool) (*models.TransferRequest, error) {
	var decided *models.TransferRequest
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		transfer, err := s.transferRepo.GetByID(ctx, tx, transferID)
		if err != nil {
			if errors.Is(err, repositories.ErrTransferNotFound) {
				return ErrTransferNotFound
			}
			return err
		}
		if transfer.PlayerID != playerID {
			return ErrForbidden
		}
		if transfer.Status != models.TransferPendingPlayer {
			return ErrInvalidState
		}

		now := time.Now().UTC()
		transfer.PlayerDecidedAt = &now
		if !accept {
			transfer.Status = models.TransferRejectedPlayer
			decided = transfer
			return s.transferRepo.Save(ctx, tx, transfer)
		}

		player, err := s.playerRepo.GetByID(ctx, tx, transfer.PlayerID)
		if err != nil {
			return err
		}
		active := models.StatusActive
		player.Clubs = models.RemoveMembership(player.Clubs, transfer.Origin.ClubID)
		player.Clubs = models.UpsertMembership(player.Clubs, transfer.Destination.ClubID, models.MembershipPatch{
			ClubName:   &transfer.Destination.Name,
			Categories: transfer.Categories,
			Status:     &active,
		})
		if err := s.playerRepo.Save(ctx, tx, player); err != nil {
			return err
		}

		user, err := s.userRepo.GetByID(ctx, tx, player.UserID)
		if err != nil {
			return err
		}
		user.Clubs = player.Clubs
		if err := s.userRepo.Save(ctx, tx, user); err != nil {
			return err
		}

		transfer.Status = models.TransferConfirmed
		if err := s.transferRepo.Save(ctx, tx, transfer); err != nil {
			return err
		}
		decided = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

func (s *transferService) ListPendingAdmin(ctx context.Context) ([]*models.TransferRequest, error) {
	return s.transferRepo.ListByStatus(ctx, nil, models.TransferPending)
}

func (s *transferService) ListPendingPlayer(ctx context.Context, playerID string) ([]*models.TransferRequest, error) {
	transfers, err := s.transferRepo.ListByPlayer(ctx, nil, playerID)
	if err != nil {
		return nil, err
	}
	pending := make([]*models.TransferRequest, 0, len(transfers))
	for _, t := range transfers {
		if t.Status == models.TransferPendingPlayer {
			pending = append(pending, t)
		}
	}
	return pending, nil
}
