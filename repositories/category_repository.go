package repositories

import (
	"context"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, op docstore.Operator, category *models.Category) error
	List(ctx context.Context, op docstore.Operator, gender string) ([]*models.Category, error)
}

type docCategoryRepository struct {
	store docstore.Store
}

func NewCategoryRepository(store docstore.Store) CategoryRepository {
	return &docCategoryRepository{store: store}
}

func (r *docCategoryRepository) Create(ctx context.Context, op docstore.Operator, category *models.Category) error {
	if category.ID == "" {
		category.ID = r.store.NewID()
	}
	data, err := docstore.DataFrom(category)
	if err != nil {
		return fmt.Errorf("encode category %s: %w", category.ID, err)
	}
	return resolve(r.store, op).Set(ctx, CollectionCategories, category.ID, data)
}

func (r *docCategoryRepository) List(ctx context.Context, op docstore.Operator, gender string) ([]*models.Category, error) {
	query := docstore.Query{OrderBy: "nombre"}
	if gender != "" {
		query = docstore.Where("genero", docstore.OpEqual, gender).Order("nombre", false)
	}
	docs, err := resolve(r.store, op).Query(ctx, CollectionCategories, query)
	if err != nil {
		return nil, err
	}
	categories := make([]*models.Category, 0, len(docs))
	for _, doc := range docs {
		var category models.Category
		if err := doc.DataTo(&category); err != nil {
			return nil, fmt.Errorf("decode category: %w", err)
		}
		category.ID = doc.ID
		categories = append(categories, &category)
	}
	return categories, nil
}
