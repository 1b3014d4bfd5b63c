package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

// AsambalService is the federation admin surface: account arbitration
// and the dashboard.
type AsambalService interface {
	ListPendingUsers(ctx context.Context) ([]*models.User, error)
	ValidateUser(ctx context.Context, userID string, approve bool) (*models.User, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type asambalService struct {
	clubService     ClubService
	userRepo        repositories.UserRepository
	clubRepo        repositories.ClubRepository
	coachRepo       repositories.CoachRepository
	playerRepo      repositories.PlayerRepository
	transferRepo    repositories.TransferRepository
	scholarshipRepo repositories.ScholarshipRepository
}

func NewAsambalService(
	clubService ClubService,
	userRepo repositories.UserRepository,
	clubRepo repositories.ClubRepository,
	coachRepo repositories.CoachRepository,
	playerRepo repositories.PlayerRepository,
	transferRepo repositories.TransferRepository,
	scholarshipRepo repositories.ScholarshipRepository,
) AsambalService {
	return &asambalService{
		clubService:     clubService,
		userRepo:        userRepo,
		clubRepo:        clubRepo,
		coachRepo:       coachRepo,
		playerRepo:      playerRepo,
		transferRepo:    transferRepo,
		scholarshipRepo: scholarshipRepo,
	}
}

func (s *asambalService) ListPendingUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListByStatus(ctx, nil, models.StatusPending)
}

// ValidateUser decides a pending club admin account; the club document
// follows the same decision.
func (s *asambalService) ValidateUser(ctx context.Context, userID string, approve bool) (*models.User, error) {
	return s.clubService.ValidateClubAdmin(ctx, userID, approve)
}

// DashboardStats fans the independent counts out concurrently.
func (s *asambalService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		clubs, err := s.clubRepo.List(ctx, nil)
		if err != nil {
			return err
		}
		stats.ClubsTotal = len(clubs)
		for _, c := range clubs {
			if c.Status == models.StatusActive {
				stats.ClubsActive++
			}
		}
		return nil
	})
	g.Go(func() error {
		players, err := s.playerRepo.List(ctx, nil)
		if err != nil {
			return err
		}
		stats.PlayersTotal = len(players)
		for _, p := range players {
			if p.EligibleToPlay {
				stats.PlayersEligible++
			}
		}
		return nil
	})
	g.Go(func() error {
		coaches, err := s.coachRepo.List(ctx, nil)
		if err != nil {
			return err
		}
		stats.CoachesTotal = len(coaches)
		return nil
	})
	g.Go(func() error {
		count, err := s.userRepo.CountByStatus(ctx, models.StatusPending)
		if err != nil {
			return err
		}
		stats.PendingUsers = count
		return nil
	})
	g.Go(func() error {
		pending, err := s.transferRepo.ListByStatus(ctx, nil, models.TransferPending)
		if err != nil {
			return err
		}
		pendingPlayer, err := s.transferRepo.ListByStatus(ctx, nil, models.TransferPendingPlayer)
		if err != nil {
			return err
		}
		stats.OpenTransfers = len(pending) + len(pendingPlayer)
		return nil
	})
	g.Go(func() error {
		active, err := s.scholarshipRepo.ListActive(ctx, nil)
		if err != nil {
			return err
		}
		stats.ScholarshipsLive = len(active)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
