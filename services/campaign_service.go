package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

type CreateCampaignInput struct {
	Year   int   `json:"year"`
	Amount int64 `json:"monto"`
}

// CampaignResult reports how far the fan-out got.
type CampaignResult struct {
	Campaign      *models.Campaign `json:"campaign"`
	TicketsIssued int              `json:"ticketsIssued"`
	Exempted      int              `json:"exempted"`
	Skipped       int              `json:"skipped"`
}

type CampaignService interface {
	CreateEnrollmentCampaign(ctx context.Context, input CreateCampaignInput, createdBy string) (*CampaignResult, error)
	CreateMembershipCampaign(ctx context.Context, input CreateCampaignInput, createdBy string) (*CampaignResult, error)
	ListCampaigns(ctx context.Context, kind models.CampaignKind) ([]*models.Campaign, error)
}

type campaignService struct {
	store         docstore.Store
	campaignRepo  repositories.CampaignRepository
	playerRepo    repositories.PlayerRepository
	clubRepo      repositories.ClubRepository
	playerTickets repositories.TicketRepository
	clubTickets   repositories.TicketRepository
	logger        *slog.Logger
}

func NewCampaignService(
	store docstore.Store,
	campaignRepo repositories.CampaignRepository,
	playerRepo repositories.PlayerRepository,
	clubRepo repositories.ClubRepository,
	playerTickets repositories.TicketRepository,
	clubTickets repositories.TicketRepository,
	logger *slog.Logger,
) CampaignService {
	return &campaignService{
		store:         store,
		campaignRepo:  campaignRepo,
		playerRepo:    playerRepo,
		clubRepo:      clubRepo,
		playerTickets: playerTickets,
		clubTickets:   clubTickets,
		logger:        logger,
	}
}

// batchChunkSize leaves headroom under the store's operation cap: each
// billed entity costs two operations (ticket set + flag update).
const batchChunkSize = docstore.MaxBatchOps / 2

// billingTarget is one entity a campaign fans out over.
type billingTarget struct {
	id         string
	name       string
	collection string
	exempt     bool
}

func (s *campaignService) CreateEnrollmentCampaign(ctx context.Context, input CreateCampaignInput, createdBy string) (*CampaignResult, error) {
	players, err := s.playerRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	targets := make([]billingTarget, 0, len(players))
	for _, p := range players {
		targets = append(targets, billingTarget{
			id:         p.ID,
			name:       p.FirstName + " " + p.LastName,
			collection: repositories.CollectionPlayers,
			exempt:     p.Scholarship,
		})
	}
	return s.runCampaign(ctx, models.CampaignEnrollment, input, createdBy, targets, s.playerTickets)
}

func (s *campaignService) CreateMembershipCampaign(ctx context.Context, input CreateCampaignInput, createdBy string) (*CampaignResult, error) {
	clubs, err := s.clubRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	targets := make([]billingTarget, 0, len(clubs))
	for _, c := range clubs {
		targets = append(targets, billingTarget{
			id:         c.ID,
			name:       c.Name,
			collection: repositories.CollectionClubs,
			exempt:     c.FederationEnabled,
		})
	}
	return s.runCampaign(ctx, models.CampaignMembership, input, createdBy, targets, s.clubTickets)
}

// runCampaign creates the campaign document and fans tickets out in
// chunked batches. Exempt entities get the enablement flag directly
// and no ticket. A failing chunk aborts the remainder: the campaign is
// marked PARCIAL and the error surfaces as ErrCampaignPartial, but the
// chunks already committed stand — a re-run skips their tickets.
func (s *campaignService) runCampaign(
	ctx context.Context,
	kind models.CampaignKind,
	input CreateCampaignInput,
	createdBy string,
	targets []billingTarget,
	tickets repositories.TicketRepository,
) (*CampaignResult, error) {
	if input.Year <= 0 || input.Amount <= 0 {
		return nil, ErrValidationFailed
	}

	campaign, err := s.campaignRepo.FindByYear(ctx, nil, kind, input.Year)
	if err == nil && campaign.Status == models.CampaignActive {
		return nil, ErrDuplicateCampaign
	}
	if err != nil && !errors.Is(err, repositories.ErrCampaignNotFound) {
		return nil, err
	}
	// A PARCIAL campaign from an aborted run is resumed, not duplicated.
	if campaign == nil {
		campaign = &models.Campaign{
			Kind:      kind,
			Year:      input.Year,
			Amount:    input.Amount,
			Status:    models.CampaignActive,
			CreatedBy: createdBy,
		}
		if err := s.campaignRepo.Create(ctx, nil, campaign); err != nil {
			return nil, err
		}
	}

	result := &CampaignResult{Campaign: campaign}

	for start := 0; start < len(targets); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(targets) {
			end = len(targets)
		}
		if err := s.emitChunk(ctx, campaign, targets[start:end], tickets, result); err != nil {
			campaign.Status = models.CampaignPartial
			if saveErr := s.campaignRepo.Save(ctx, nil, campaign); saveErr != nil {
				s.logger.Error("failed to mark campaign partial", "campaign", campaign.ID, "error", saveErr)
			}
			s.logger.Error("campaign fan-out aborted",
				"campaign", campaign.ID, "kind", kind, "year", campaign.Year,
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

	s.logger.Info("campaign fan-out complete",
		"campaign", campaign.ID, "kind", kind, "year", campaign.Year,
		"issued", result.TicketsIssued, "exempted", result.Exempted, "skipped", result.Skipped)
	return result, nil
}

func (s *campaignService) emitChunk(
	ctx context.Context,
	campaign *models.Campaign,
	targets []billingTarget,
	tickets repositories.TicketRepository,
	result *CampaignResult,
) error {
	batch := s.store.Batch()

	for _, target := range targets {
		if target.exempt {
			batch.Update(target.collection, target.id, enablementPatch(campaign.Kind, true, ""))
			result.Exempted++
			continue
		}

		// Idempotency: a re-run never issues a second ticket.
		_, err := tickets.GetByOwnerAndCampaign(ctx, nil, target.id, campaign.ID)
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
			OwnerID:    target.id,
			OwnerName:  target.name,
			Year:       campaign.Year,
			Amount:     campaign.Amount,
			Status:     models.TicketPending,
		}
		data, err := docstore.DataFrom(ticket)
		if err != nil {
			return err
		}
		batch.Set(ticketCollection(campaign.Kind), ticket.ID, data)
		batch.Update(target.collection, target.id, enablementPatch(campaign.Kind, false, models.IneligibilityEnrollmentPending))
		result.TicketsIssued++
	}

	if batch.Len() == 0 {
		return nil
	}
	return batch.Commit(ctx)
}

func ticketCollection(kind models.CampaignKind) string {
	if kind == models.CampaignMembership {
		return repositories.CollectionMembershipTickets
	}
	return repositories.CollectionEnrollmentTickets
}

// enablementPatch flips the billed entity's enablement flag: players
// carry habilitadoParaJugar plus a reason code, clubs habilitadoAsambal.
func enablementPatch(kind models.CampaignKind, enabled bool, reason string) map[string]interface{} {
	if kind == models.CampaignMembership {
		return map[string]interface{}{"habilitadoAsambal": enabled}
	}
	patch := map[string]interface{}{"habilitadoParaJugar": enabled}
	if enabled {
		patch["motivoInhabilitacion"] = ""
	} else {
		patch["motivoInhabilitacion"] = reason
	}
	return patch
}

func (s *campaignService) ListCampaigns(ctx context.Context, kind models.CampaignKind) ([]*models.Campaign, error) {
	return s.campaignRepo.List(ctx, nil, kind)
}
