package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

// BulkSettlementResult reports one mass settlement run.
type BulkSettlementResult struct {
	Paid        int `json:"paid"`
	AlreadyPaid int `json:"alreadyPaid"`
}

type TicketService interface {
	PayTicket(ctx context.Context, ticketID, playerID string) (*models.Ticket, error)
	PayEnrollmentBulk(ctx context.Context, ticketIDs []string) (*BulkSettlementResult, error)
	PayMembershipTicket(ctx context.Context, ticketID, clubID string) (*models.Ticket, error)
	ListPlayerTickets(ctx context.Context, playerID string) ([]*models.Ticket, error)
	ListClubTickets(ctx context.Context, clubID string) ([]*models.Ticket, error)
}

type ticketService struct {
	store         docstore.Store
	playerTickets repositories.TicketRepository
	clubTickets   repositories.TicketRepository
	playerRepo    repositories.PlayerRepository
	clubRepo      repositories.ClubRepository
}

func NewTicketService(
	store docstore.Store,
	playerTickets repositories.TicketRepository,
	clubTickets repositories.TicketRepository,
	playerRepo repositories.PlayerRepository,
	clubRepo repositories.ClubRepository,
) TicketService {
	return &ticketService{
		store:         store,
		playerTickets: playerTickets,
		clubTickets:   clubTickets,
		playerRepo:    playerRepo,
		clubRepo:      clubRepo,
	}
}

// PayTicket settles an enrollment ticket. Paying an already-paid
// ticket succeeds without touching paidAt.
func (s *ticketService) PayTicket(ctx context.Context, ticketID, playerID string) (*models.Ticket, error) {
	var paid *models.Ticket
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		ticket, err := s.playerTickets.GetByID(ctx, tx, ticketID)
		if err != nil {
			if errors.Is(err, repositories.ErrTicketNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if ticket.OwnerID != playerID {
			return ErrForbidden
		}
		if ticket.Status == models.TicketPaid {
			paid = ticket
			return nil
		}

		now := time.Now().UTC()
		ticket.Status = models.TicketPaid
		ticket.PaidAt = &now
		if err := s.playerTickets.Save(ctx, tx, ticket); err != nil {
			return err
		}

		player, err := s.playerRepo.GetByID(ctx, tx, ticket.OwnerID)
		if err != nil {
			return err
		}
		player.EligibleToPlay = true
		player.IneligibilityReason = ""
		if err := s.playerRepo.Save(ctx, tx, player); err != nil {
			return err
		}
		paid = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// PayEnrollmentBulk settles a batch of enrollment tickets on behalf of
// the federation, enabling each billed player. The batch is one
// transaction: an unknown ticket id aborts it without paying anything.
func (s *ticketService) PayEnrollmentBulk(ctx context.Context, ticketIDs []string) (*BulkSettlementResult, error) {
	if len(ticketIDs) == 0 {
		return nil, ErrValidationFailed
	}

	var result *BulkSettlementResult
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		result = &BulkSettlementResult{}
		now := time.Now().UTC()

		for _, ticketID := range ticketIDs {
			ticket, err := s.playerTickets.GetByID(ctx, tx, ticketID)
			if err != nil {
				if errors.Is(err, repositories.ErrTicketNotFound) {
					return fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
				}
				return err
			}
			if ticket.Status == models.TicketPaid {
				result.AlreadyPaid++
				continue
			}

			ticket.Status = models.TicketPaid
			ticket.PaidAt = &now
			if err := s.playerTickets.Save(ctx, tx, ticket); err != nil {
				return err
			}

			player, err := s.playerRepo.GetByID(ctx, tx, ticket.OwnerID)
			if err != nil {
				return err
			}
			player.EligibleToPlay = true
			player.IneligibilityReason = ""
			if err := s.playerRepo.Save(ctx, tx, player); err != nil {
				return err
			}
			result.Paid++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PayMembershipTicket settles a club membership ticket, with the same
// idempotent semantics.
func (s *ticketService) PayMembershipTicket(ctx context.Context, ticketID, clubID string) (*models.Ticket, error) {
	var paid *models.Ticket
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		ticket, err := s.clubTickets.GetByID(ctx, tx, ticketID)
		if err != nil {
			if errors.Is(err, repositories.ErrTicketNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if ticket.OwnerID != clubID {
			return ErrForbidden
		}
		if ticket.Status == models.TicketPaid {
			paid = ticket
			return nil
		}

		now := time.Now().UTC()
		ticket.Status = models.TicketPaid
		ticket.PaidAt = &now
		if err := s.clubTickets.Save(ctx, tx, ticket); err != nil {
			return err
		}

		club, err := s.clubRepo.GetByID(ctx, tx, ticket.OwnerID)
		if err != nil {
			return err
		}
		club.FederationEnabled = true
		if err := s.clubRepo.Save(ctx, tx, club); err != nil {
			return err
		}
		paid = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func (s *ticketService) ListPlayerTickets(ctx context.Context, playerID string) ([]*models.Ticket, error) {
	return s.playerTickets.ListByOwner(ctx, nil, playerID)
}

func (s *ticketService) ListClubTickets(ctx context.Context, clubID string) ([]*models.Ticket, error) {
	return s.clubTickets.ListByOwner(ctx, nil, clubID)
}
