package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

var ErrTicketNotFound = errors.New("ticket not found")

type TicketRepository interface {
	Create(ctx context.Context, op docstore.Operator, ticket *models.Ticket) error
	Save(ctx context.Context, op docstore.Operator, ticket *models.Ticket) error
	GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Ticket, error)
	GetByOwnerAndCampaign(ctx context.Context, op docstore.Operator, ownerID, campaignID string) (*models.Ticket, error)
	GetByOwnerAndYear(ctx context.Context, op docstore.Operator, ownerID string, year int) (*models.Ticket, error)
	ListByOwner(ctx context.Context, op docstore.Operator, ownerID string) ([]*models.Ticket, error)
	ListByCampaign(ctx context.Context, op docstore.Operator, campaignID string) ([]*models.Ticket, error)
	ListByYear(ctx context.Context, op docstore.Operator, year int) ([]*models.Ticket, error)
	ListYears(ctx context.Context, op docstore.Operator) ([]int, error)
}

type docTicketRepository struct {
	store      docstore.Store
	collection string
}

// NewEnrollmentTicketRepository stores tickets issued by enrollment campaigns.
func NewEnrollmentTicketRepository(store docstore.Store) TicketRepository {
	return &docTicketRepository{store: store, collection: CollectionEnrollmentTickets}
}

// NewMembershipTicketRepository stores tickets issued by membership campaigns.
func NewMembershipTicketRepository(store docstore.Store) TicketRepository {
	return &docTicketRepository{store: store, collection: CollectionMembershipTickets}
}

// NewInsuranceTicketRepository stores the per-coach insurance tickets.
func NewInsuranceTicketRepository(store docstore.Store) TicketRepository {
	return &docTicketRepository{store: store, collection: CollectionInsuranceTickets}
}

func (r *docTicketRepository) Create(ctx context.Context, op docstore.Operator, ticket *models.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = r.store.NewID()
	}
	return r.Save(ctx, op, ticket)
}

func (r *docTicketRepository) Save(ctx context.Context, op docstore.Operator, ticket *models.Ticket) error {
	data, err := docstore.DataFrom(ticket)
	if err != nil {
		return fmt.Errorf("encode ticket %s: %w", ticket.ID, err)
	}
	return resolve(r.store, op).Set(ctx, r.collection, ticket.ID, data)
}

func (r *docTicketRepository) GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Ticket, error) {
	doc, err := resolve(r.store, op).Get(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return decodeTicket(doc)
}

func (r *docTicketRepository) GetByOwnerAndCampaign(ctx context.Context, op docstore.Operator, ownerID, campaignID string) (*models.Ticket, error) {
	docs, err := resolve(r.store, op).Query(ctx, r.collection,
		docstore.Where("ownerId", docstore.OpEqual, ownerID).
			And("campaignId", docstore.OpEqual, campaignID).
			WithLimit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrTicketNotFound
	}
	return decodeTicket(docs[0])
}

func (r *docTicketRepository) GetByOwnerAndYear(ctx context.Context, op docstore.Operator, ownerID string, year int) (*models.Ticket, error) {
	docs, err := resolve(r.store, op).Query(ctx, r.collection,
		docstore.Where("ownerId", docstore.OpEqual, ownerID).
			And("year", docstore.OpEqual, year).
			WithLimit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrTicketNotFound
	}
	return decodeTicket(docs[0])
}

func (r *docTicketRepository) ListByOwner(ctx context.Context, op docstore.Operator, ownerID string) ([]*models.Ticket, error) {
	docs, err := resolve(r.store, op).Query(ctx, r.collection,
		docstore.Where("ownerId", docstore.OpEqual, ownerID).Order("year", true))
	if err != nil {
		return nil, err
	}
	return decodeTickets(docs)
}

func (r *docTicketRepository) ListByCampaign(ctx context.Context, op docstore.Operator, campaignID string) ([]*models.Ticket, error) {
	docs, err := resolve(r.store, op).Query(ctx, r.collection,
		docstore.Where("campaignId", docstore.OpEqual, campaignID))
	if err != nil {
		return nil, err
	}
	return decodeTickets(docs)
}

func (r *docTicketRepository) ListByYear(ctx context.Context, op docstore.Operator, year int) ([]*models.Ticket, error) {
	docs, err := resolve(r.store, op).Query(ctx, r.collection,
		docstore.Where("year", docstore.OpEqual, year))
	if err != nil {
		return nil, err
	}
	return decodeTickets(docs)
}

// ListYears returns the distinct billing years in the collection,
// newest first.
func (r *docTicketRepository) ListYears(ctx context.Context, op docstore.Operator) ([]int, error) {
	docs, err := resolve(r.store, op).Query(ctx, r.collection,
		docstore.Query{OrderBy: "year", Desc: true})
	if err != nil {
		return nil, err
	}
	tickets, err := decodeTickets(docs)
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, len(tickets))
	for _, ticket := range tickets {
		if n := len(years); n > 0 && years[n-1] == ticket.Year {
			continue
		}
		years = append(years, ticket.Year)
	}
	return years, nil
}

func decodeTicket(doc docstore.Document) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := doc.DataTo(&ticket); err != nil {
		return nil, fmt.Errorf("decode ticket: %w", err)
	}
	ticket.ID = doc.ID
	return &ticket, nil
}

func decodeTickets(docs []docstore.Document) ([]*models.Ticket, error) {
	tickets := make([]*models.Ticket, 0, len(docs))
	for _, doc := range docs {
		ticket, err := decodeTicket(doc)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}
