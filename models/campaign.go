package models

import "time"

type CampaignKind string

const (
	// CampaignEnrollment bills every non-exempt player for the year.
	CampaignEnrollment CampaignKind = "empadronamiento"
	// CampaignMembership bills every non-exempt club for the year.
	CampaignMembership CampaignKind = "membresia"
	// CampaignInsurance bills every coach for the year's insurance.
	CampaignInsurance CampaignKind = "seguro"
)

type CampaignStatus string

const (
	CampaignActive  CampaignStatus = "ACTIVA"
	CampaignPartial CampaignStatus = "PARCIAL"
)

// Campaign is one yearly bulk-billing round that fans out tickets.
type Campaign struct {
	ID        string         `json:"-"`
	Kind      CampaignKind   `json:"tipo"`
	Year      int            `json:"year"`
	Amount    int64          `json:"monto"`
	Status    CampaignStatus `json:"status"`
	CreatedBy string         `json:"createdBy,omitempty"`
	CreatedAt time.Time      `json:"createdAt,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt,omitempty"`
}

type TicketStatus string

const (
	TicketPending TicketStatus = "pendiente"
	TicketPaid    TicketStatus = "pagado"
)

// Ticket is a single billing obligation fanned out by a campaign. OwnerID
// points at the billed entity: a player for enrollment tickets, a club for
// membership tickets.
type Ticket struct {
	ID         string       `json:"-"`
	CampaignID string       `json:"campaignId"`
	OwnerID    string       `json:"ownerId"`
	OwnerName  string       `json:"ownerName,omitempty"`
	Year       int          `json:"year"`
	Amount     int64        `json:"monto"`
	Status     TicketStatus `json:"status"`
	PaidAt     *time.Time   `json:"paidAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt,omitempty"`
}
