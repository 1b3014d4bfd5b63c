package services

import (
	"context"

	"github.com/luminospark/asambal-system/models"
	"github.com/luminospark/asambal-system/repositories"
)

type CreateCategoryInput struct {
	Name   string `json:"nombre"`
	Gender string `json:"genero"`
}

type CategoryService interface {
	Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	List(ctx context.Context, gender string) ([]*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	if input.Name == "" || input.Gender == "" {
		return nil, ErrValidationFailed
	}
	category := &models.Category{Name: input.Name, Gender: input.Gender}
	if err := s.categoryRepo.Create(ctx, nil, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, gender string) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, nil, gender)
}
