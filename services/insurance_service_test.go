package services

import (
	"context"
	"errors"
	"testing"

	"github.com/luminospark/asambal-system/models"
)

func TestInsuranceFanOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	memberships := []models.ClubMembership{membership(club, models.StatusActive, "sub16")}

	c1 := env.seedCoach(t, "dt1@norte.test", memberships)
	c2 := env.seedCoach(t, "dt2@norte.test", memberships)

	result, err := env.insuranceSvc.CreateInsurance(ctx, CreateCampaignInput{
		Year:   2026,
		Amount: 9000,
	}, "asambal-admin")
	if err != nil {
		t.Fatalf("insurance round: %v", err)
	}
	if result.TicketsIssued != 2 || result.Skipped != 0 {
		t.Fatalf("counters: issued=%d skipped=%d", result.TicketsIssued, result.Skipped)
	}
	if result.Campaign.Status != models.CampaignActive {
		t.Fatalf("campaign status: want ACTIVA, got %s", result.Campaign.Status)
	}

	for _, coach := range []*models.Coach{c1, c2} {
		ticket, err := env.insuranceTickets.GetByOwnerAndYear(ctx, nil, coach.ID, 2026)
		if err != nil {
			t.Fatalf("ticket for %s: %v", coach.Email, err)
		}
		if ticket.Status != models.TicketPending || ticket.Amount != 9000 || ticket.Year != 2026 {
			t.Fatalf("ticket fields: %+v", ticket)
		}
		if ticket.OwnerName != coach.FirstName+" "+coach.LastName {
			t.Fatalf("owner name: %q", ticket.OwnerName)
		}
	}
}

func TestInsuranceDuplicateYear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	env.seedCoach(t, "dt@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	})

	input := CreateCampaignInput{Year: 2026, Amount: 9000}
	if _, err := env.insuranceSvc.CreateInsurance(ctx, input, "asambal-admin"); err != nil {
		t.Fatalf("first round: %v", err)
	}
	if _, err := env.insuranceSvc.CreateInsurance(ctx, input, "asambal-admin"); !errors.Is(err, ErrDuplicateCampaign) {
		t.Fatalf("want ErrDuplicateCampaign, got %v", err)
	}

	// The same year for enrollment is a separate campaign.
	if _, err := env.campaignSvc.CreateEnrollmentCampaign(ctx, CreateCampaignInput{Year: 2026, Amount: 15000}, "asambal-admin"); err != nil {
		t.Fatalf("enrollment campaign same year: %v", err)
	}
}

func TestInsuranceResumesPartialRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	memberships := []models.ClubMembership{membership(club, models.StatusActive, "sub16")}
	coach := env.seedCoach(t, "dt1@norte.test", memberships)
	env.seedCoach(t, "dt2@norte.test", memberships)

	input := CreateCampaignInput{Year: 2026, Amount: 9000}
	first, err := env.insuranceSvc.CreateInsurance(ctx, input, "asambal-admin")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	first.Campaign.Status = models.CampaignPartial
	if err := env.campaignRepo.Save(ctx, nil, first.Campaign); err != nil {
		t.Fatalf("mark partial: %v", err)
	}

	second, err := env.insuranceSvc.CreateInsurance(ctx, input, "asambal-admin")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if second.Campaign.ID != first.Campaign.ID {
		t.Fatalf("resume created a new campaign: %s != %s", second.Campaign.ID, first.Campaign.ID)
	}
	if second.TicketsIssued != 0 || second.Skipped != 2 {
		t.Fatalf("resume counters: issued=%d skipped=%d", second.TicketsIssued, second.Skipped)
	}
	if second.Campaign.Status != models.CampaignActive {
		t.Fatalf("resumed campaign status: want ACTIVA, got %s", second.Campaign.Status)
	}

	tickets, err := env.insuranceTickets.ListByOwner(ctx, nil, coach.ID)
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("resume duplicated tickets: %d", len(tickets))
	}
}

func TestPayInsurance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	coach := env.seedCoach(t, "dt@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	})

	if _, err := env.insuranceSvc.CreateInsurance(ctx, CreateCampaignInput{Year: 2026, Amount: 9000}, "asambal-admin"); err != nil {
		t.Fatalf("insurance round: %v", err)
	}
	ticket, err := env.insuranceTickets.GetByOwnerAndYear(ctx, nil, coach.ID, 2026)
	if err != nil {
		t.Fatalf("issued ticket: %v", err)
	}

	paid, err := env.insuranceSvc.PayInsurance(ctx, ticket.ID, coach.ID)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != models.TicketPaid || paid.PaidAt == nil {
		t.Fatalf("paid ticket: %+v", paid)
	}

	again, err := env.insuranceSvc.PayInsurance(ctx, ticket.ID, coach.ID)
	if err != nil {
		t.Fatalf("second pay: %v", err)
	}
	if !again.PaidAt.Equal(*paid.PaidAt) {
		t.Fatalf("paidAt moved on re-payment: %v != %v", again.PaidAt, paid.PaidAt)
	}

	if _, err := env.insuranceSvc.PayInsurance(ctx, ticket.ID, "someone-else"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := env.insuranceSvc.PayInsurance(ctx, "missing-ticket", coach.ID); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("want ErrTicketNotFound, got %v", err)
	}
}

func TestInsuranceListings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	club := env.seedClub(t, "norte", models.StatusActive)
	coach := env.seedCoach(t, "dt@norte.test", []models.ClubMembership{
		membership(club, models.StatusActive, "sub16"),
	})

	for _, year := range []int{2025, 2026} {
		if _, err := env.insuranceSvc.CreateInsurance(ctx, CreateCampaignInput{Year: year, Amount: 9000}, "asambal-admin"); err != nil {
			t.Fatalf("round %d: %v", year, err)
		}
	}

	years, err := env.insuranceSvc.ListYears(ctx)
	if err != nil {
		t.Fatalf("list years: %v", err)
	}
	if len(years) != 2 || years[0] != 2026 || years[1] != 2025 {
		t.Fatalf("years: %v", years)
	}

	byYear, err := env.insuranceSvc.ListByYear(ctx, 2025)
	if err != nil {
		t.Fatalf("list by year: %v", err)
	}
	if len(byYear) != 1 || byYear[0].Year != 2025 {
		t.Fatalf("tickets for 2025: %+v", byYear)
	}
	if _, err := env.insuranceSvc.ListByYear(ctx, 0); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("zero year: want ErrValidationFailed, got %v", err)
	}

	all, err := env.insuranceSvc.ListCoachInsurance(ctx, coach.ID, 0)
	if err != nil {
		t.Fatalf("coach tickets: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 coach tickets, got %d", len(all))
	}
	one, err := env.insuranceSvc.ListCoachInsurance(ctx, coach.ID, 2026)
	if err != nil {
		t.Fatalf("coach tickets filtered: %v", err)
	}
	if len(one) != 1 || one[0].Year != 2026 {
		t.Fatalf("filtered tickets: %+v", one)
	}
}
