package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

var ErrScholarshipNotFound = errors.New("scholarship not found")

type ScholarshipRepository interface {
	Create(ctx context.Context, op docstore.Operator, scholarship *models.Scholarship) error
	Save(ctx context.Context, op docstore.Operator, scholarship *models.Scholarship) error
	GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Scholarship, error)
	GetActiveByPlayer(ctx context.Context, op docstore.Operator, playerID string) (*models.Scholarship, error)
	ListByPlayer(ctx context.Context, op docstore.Operator, playerID string) ([]*models.Scholarship, error)
	ListActive(ctx context.Context, op docstore.Operator) ([]*models.Scholarship, error)
}

type docScholarshipRepository struct {
	store docstore.Store
}

func NewScholarshipRepository(store docstore.Store) ScholarshipRepository {
	return &docScholarshipRepository{store: store}
}

func (r *docScholarshipRepository) Create(ctx context.Context, op docstore.Operator, scholarship *models.Scholarship) error {
	if scholarship.ID == "" {
		scholarship.ID = r.store.NewID()
	}
	return r.Save(ctx, op, scholarship)
}

func (r *docScholarshipRepository) Save(ctx context.Context, op docstore.Operator, scholarship *models.Scholarship) error {
	data, err := docstore.DataFrom(scholarship)
	if err != nil {
		return fmt.Errorf("encode scholarship %s: %w", scholarship.ID, err)
	}
	return resolve(r.store, op).Set(ctx, CollectionScholarships, scholarship.ID, data)
}

func (r *docScholarshipRepository) GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Scholarship, error) {
	doc, err := resolve(r.store, op).Get(ctx, CollectionScholarships, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrScholarshipNotFound
		}
		return nil, err
	}
	return decodeScholarship(doc)
}

func (r *docScholarshipRepository) GetActiveByPlayer(ctx context.Context, op docstore.Operator, playerID string) (*models.Scholarship, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionScholarships,
		docstore.Where("jugadorId", docstore.OpEqual, playerID).
			And("status", docstore.OpEqual, models.ScholarshipActive).
			WithLimit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrScholarshipNotFound
	}
	return decodeScholarship(docs[0])
}

func (r *docScholarshipRepository) ListByPlayer(ctx context.Context, op docstore.Operator, playerID string) ([]*models.Scholarship, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionScholarships,
		docstore.Where("jugadorId", docstore.OpEqual, playerID).Order("fechaOtorgamiento", true))
	if err != nil {
		return nil, err
	}
	return decodeScholarships(docs)
}

func (r *docScholarshipRepository) ListActive(ctx context.Context, op docstore.Operator) ([]*models.Scholarship, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionScholarships,
		docstore.Where("status", docstore.OpEqual, models.ScholarshipActive))
	if err != nil {
		return nil, err
	}
	return decodeScholarships(docs)
}

func decodeScholarship(doc docstore.Document) (*models.Scholarship, error) {
	var scholarship models.Scholarship
	if err := doc.DataTo(&scholarship); err != nil {
		return nil, fmt.Errorf("decode scholarship: %w", err)
	}
	scholarship.ID = doc.ID
	return &scholarship, nil
}

func decodeScholarships(docs []docstore.Document) ([]*models.Scholarship, error) {
	scholarships := make([]*models.Scholarship, 0, len(docs))
	for _, doc := range docs {
		scholarship, err := decodeScholarship(doc)
		if err != nil {
			return nil, err
		}
		scholarships = append(scholarships, scholarship)
	}
	return scholarships, nil
}
