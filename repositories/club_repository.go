package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

var ErrClubNotFound = errors.New("club not found")

type ClubRepository interface {
	Create(ctx context.Context, op docstore.Operator, club *models.Club) error
	Save(ctx context.Context, op docstore.Operator, club *models.Club) error
	Patch(ctx context.Context, op docstore.Operator, id string, patch map[string]interface{}) error
	GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Club, error)
	List(ctx context.Context, op docstore.Operator) ([]*models.Club, error)
	ListByStatus(ctx context.Context, op docstore.Operator, status models.Status) ([]*models.Club, error)
}

type docClubRepository struct {
	store docstore.Store
}

func NewClubRepository(store docstore.Store) ClubRepository {
	return &docClubRepository{store: store}
}

func (r *docClubRepository) Create(ctx context.Context, op docstore.Operator, club *models.Club) error {
	if club.ID == "" {
		club.ID = r.store.NewID()
	}
	return r.Save(ctx, op, club)
}

func (r *docClubRepository) Save(ctx context.Context, op docstore.Operator, club *models.Club) error {
	data, err := docstore.DataFrom(club)
	if err != nil {
		return fmt.Errorf("encode club %s: %w", club.ID, err)
	}
	return resolve(r.store, op).Set(ctx, CollectionClubs, club.ID, data)
}

func (r *docClubRepository) Patch(ctx context.Context, op docstore.Operator, id string, patch map[string]interface{}) error {
	err := resolve(r.store, op).Update(ctx, CollectionClubs, id, patch)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrClubNotFound
	}
	return err
}

func (r *docClubRepository) GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Club, error) {
	doc, err := resolve(r.store, op).Get(ctx, CollectionClubs, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return decodeClub(doc)
}

func (r *docClubRepository) List(ctx context.Context, op docstore.Operator) ([]*models.Club, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionClubs, docstore.Query{OrderBy: "nombre"})
	if err != nil {
		return nil, err
	}
	return decodeClubs(docs)
}

func (r *docClubRepository) ListByStatus(ctx context.Context, op docstore.Operator, status models.Status) ([]*models.Club, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionClubs,
		docstore.Where("status", docstore.OpEqual, status))
	if err != nil {
		return nil, err
	}
	return decodeClubs(docs)
}

func decodeClub(doc docstore.Document) (*models.Club, error) {
	var club models.Club
	if err := doc.DataTo(&club); err != nil {
		return nil, fmt.Errorf("decode club: %w", err)
	}
	club.ID = doc.ID
	return &club, nil
}

func decodeClubs(docs []docstore.Document) ([]*models.Club, error) {
	clubs := make([]*models.Club, 0, len(docs))
	for _, doc := range docs {
		club, err := decodeClub(doc)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, club)
	}
	return clubs, nil
}
