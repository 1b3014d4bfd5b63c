package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type CampaignRepository interface {
	Create(ctx context.Context, op docstore.Operator, campaign *models.Campaign) error
	Save(ctx context.Context, op docstore.Operator, campaign *models.Campaign) error
	GetByID(ctx context.Context, op docstore.Operator, kind models.CampaignKind, id string) (*models.Campaign, error)
	FindByYear(ctx context.Context, op docstore.Operator, kind models.CampaignKind, year int) (*models.Campaign, error)
	List(ctx context.Context, op docstore.Operator, kind models.CampaignKind) ([]*models.Campaign, error)
}

type docCampaignRepository struct {
	store docstore.Store
}

func NewCampaignRepository(store docstore.Store) CampaignRepository {
	return &docCampaignRepository{store: store}
}

// campaignCollection maps a campaign kind to its backing collection.
func campaignCollection(kind models.CampaignKind) string {
	switch kind {
	case models.CampaignMembership:
		return CollectionMembershipCampaigns
	case models.CampaignInsurance:
		return CollectionInsuranceCampaigns
	}
	return CollectionEnrollmentCampaigns
}

func (r *docCampaignRepository) Create(ctx context.Context, op docstore.Operator, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = r.store.NewID()
	}
	return r.Save(ctx, op, campaign)
}

func (r *docCampaignRepository) Save(ctx context.Context, op docstore.Operator, campaign *models.Campaign) error {
	data, err := docstore.DataFrom(campaign)
	if err != nil {
		return fmt.Errorf("encode campaign %s: %w", campaign.ID, err)
	}
	return resolve(r.store, op).Set(ctx, campaignCollection(campaign.Kind), campaign.ID, data)
}

func (r *docCampaignRepository) GetByID(ctx context.Context, op docstore.Operator, kind models.CampaignKind, id string) (*models.Campaign, error) {
	doc, err := resolve(r.store, op).Get(ctx, campaignCollection(kind), id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return decodeCampaign(doc)
}

func (r *docCampaignRepository) FindByYear(ctx context.Context, op docstore.Operator, kind models.CampaignKind, year int) (*models.Campaign, error) {
	docs, err := resolve(r.store, op).Query(ctx, campaignCollection(kind),
		docstore.Where("year", docstore.OpEqual, year).WithLimit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrCampaignNotFound
	}
	return decodeCampaign(docs[0])
}

func (r *docCampaignRepository) List(ctx context.Context, op docstore.Operator, kind models.CampaignKind) ([]*models.Campaign, error) {
	docs, err := resolve(r.store, op).Query(ctx, campaignCollection(kind),
		docstore.Query{OrderBy: "year", Desc: true})
	if err != nil {
		return nil, err
	}
	campaigns := make([]*models.Campaign, 0, len(docs))
	for _, doc := range docs {
		campaign, err := decodeCampaign(doc)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, nil
}

func decodeCampaign(doc docstore.Document) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := doc.DataTo(&campaign); err != nil {
		return nil, fmt.Errorf("decode campaign: %w", err)
	}
	campaign.ID = doc.ID
	return &campaign, nil
}
