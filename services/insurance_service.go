package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

// InsuranceResult reports how far the per-coach fan-out got.
type InsuranceResult struct {
	Campaign      *models.Campaign `json:"campaign"`
	TicketsIssued int              `json:"ticketsIssued"`
	Skipped       int              `json:"skipped"`
}

type InsuranceService interface {
	CreateInsurance(ctx context.Context, input CreateCampaignInput, createdBy string) (*InsuranceResult, error)
	ListYears(ctx context.Context) ([]int, error)
	ListByYear(ctx context.Context, year int) ([]*models.Ticket, error)
	ListCoachInsurance(ctx context.Context, coachID string, year int) ([]*models.Ticket, error)
	PayInsurance(ctx context.Context, ticketID, coachID string) (*models.Ticket, error)
}

type insuranceService struct {
	store        docstore.Store
	campaignRepo repositories.CampaignRepository
	coachRepo    repositories.CoachRepository
	tickets      repositories.TicketRepository
	logger       *slog.Logger
}

func NewInsuranceService(
	store docstore.Store,
	campaignRepo repositories.CampaignRepository,
	coachRepo repositories.CoachRepository,
	tickets repositories.TicketRepository,
	logger *slog.Logger,
) InsuranceService {
	return &insuranceService{
		store:        store,
		campaignRepo: campaignRepo,
		coachRepo:    coachRepo,
		tickets:      tickets,
		logger:       logger,
	}
}

// CreateInsurance opens the yearly coach-insurance round and fans a
// ticket out to every coach. Unlike enrollment and membership rounds
// there is no exemption and no enablement flag: a coach simply owes
// the premium. A failed chunk marks the round PARCIAL; re-running
// resumes it without duplicating tickets.
func (s *insuranceService) CreateInsurance(ctx context.Context, input CreateCampaignInput, createdBy string) (*InsuranceResult, error) {
	if input.Year <= 0 || input.Amount <= 0 {
		return nil, ErrValidationFailed
	}

	campaign, err := s.campaignRepo.FindByYear(ctx, nil, models.CampaignInsurance, input.Year)
	if err == nil && campaign.Status == models.CampaignActive {
		return nil, ErrDuplicateCampaign
	}
	if err != nil && !errors.Is(err, repositories.ErrCampaignNotFound) {
		return nil, err
	}
	if campaign == nil {
		campaign = &models.Campaign{
			Kind:      models.CampaignInsurance,
			Year:      input.Year,
			Amount:    input.Amount,
			Status:    models.CampaignActive,
			CreatedBy: createdBy,
		}
		if err := s.campaignRepo.Create(ctx, nil, campaign); err != nil {
			return nil, err
		}
	}

	coaches, err := s.coachRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	result := &InsuranceResult{Campaign: campaign}

	for start := 0; start < len(coaches); start += docstore.MaxBatchOps {
		end := start + docstore.MaxBatchOps
		if end > len(coaches) {
			end = len(coaches)
		}
		if err := s.emitChunk(ctx, campaign, coaches[start:end], result); err != nil {
			campaign.Status = models.CampaignPartial
			if saveErr := s.campaignRepo.Save(ctx, nil, campaign); saveErr != nil {
				s.logger.Error("failed to mark insurance round partial", "campaign", campaign.ID, "error", saveErr)
			}
			s.logger.Error("insurance fan-out aborted",
				"campaign", campaign.ID, "year", campaign.Year,
				"issued", result.TicketsIssued, "error", err)
			return result, fmt.Errorf("%w: %v", ErrCampaignPartial, err)
		}
	}

	if campaign.Status != models.CampaignActive {
		campaign.Status = models.CampaignActive
		if err := s.campaignRepo.Save(ctx, nil, campaign); err != nil {
			return nil, err
		}
	}

	s.logger.Info("insurance fan-out complete",
		"campaign", campaign.ID, "year", campaign.Year,
		"issued", result.TicketsIssued, "skipped", result.Skipped)
	return result, nil
}

func (s *insuranceService) emitChunk(
	ctx context.Context,
	campaign *models.Campaign,
	coaches []*models.Coach,
	result *InsuranceResult,
) error {
	batch := s.store.Batch()

	for _, coach := range coaches {
		// A coach insured for this year is never billed twice.
		_, err := s.tickets.GetByOwnerAndYear(ctx, nil, coach.ID, campaign.Year)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, repositories.ErrTicketNotFound) {
			return err
		}

		ticket := &models.Ticket{
			ID:         s.store.NewID(),
			CampaignID: campaign.ID,
			OwnerID:    coach.ID,
			OwnerName:  coach.FirstName + " " + coach.LastName,
			Year:       campaign.Year,
			Amount:     campaign.Amount,
			Status:     models.TicketPending,
		}
		data, err := docstore.DataFrom(ticket)
		if err != nil {
			return err
		}
		batch.Set(repositories.CollectionInsuranceTickets, ticket.ID, data)
		result.TicketsIssued++
	}

	if batch.Len() == 0 {
		return nil
	}
	return batch.Commit(ctx)
}

func (s *insuranceService) ListYears(ctx context.Context) ([]int, error) {
	return s.tickets.ListYears(ctx, nil)
}

func (s *insuranceService) ListByYear(ctx context.Context, year int) ([]*models.Ticket, error) {
	if year <= 0 {
		return nil, ErrValidationFailed
	}
	return s.tickets.ListByYear(ctx, nil, year)
}

// ListCoachInsurance returns a coach's own tickets, newest year first,
// optionally narrowed to one year.
func (s *insuranceService) ListCoachInsurance(ctx context.Context, coachID string, year int) ([]*models.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, nil, coachID)
	if err != nil {
		return nil, err
	}
	if year <= 0 {
		return tickets, nil
	}
	filtered := make([]*models.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.Year == year {
			filtered = append(filtered, ticket)
		}
	}
	return filtered, nil
}

// PayInsurance settles a coach's own ticket. Paying an already-paid
// ticket succeeds without touching paidAt.
func (s *insuranceService) PayInsurance(ctx context.Context, ticketID, coachID string) (*models.Ticket, error) {
	var paid *models.Ticket
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Operator) error {
		ticket, err := s.tickets.GetByID(ctx, tx, ticketID)
		if err != nil {
			if errors.Is(err, repositories.ErrTicketNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if ticket.OwnerID != coachID {
			return ErrForbidden
		}
		if ticket.Status == models.TicketPaid {
			paid = ticket
			return nil
		}

		now := time.Now().UTC()
		ticket.Status = models.TicketPaid
		ticket.PaidAt = &now
		if err := s.tickets.Save(ctx, tx, ticket); err != nil {
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
