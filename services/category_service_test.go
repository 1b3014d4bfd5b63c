package services

import (
	"context"
	"errors"
	"testing"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/repositories"
)

func TestCategoryCreateAndList(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewCategoryService(repositories.NewCategoryRepository(store))
	ctx := context.Background()

	for _, input := range []CreateCategoryInput{
		{Name: "sub18", Gender: "masculino"},
		{Name: "primera", Gender: "masculino"},
		{Name: "sub18", Gender: "femenino"},
	} {
		category, err := svc.Create(ctx, input)
		if err != nil {
			t.Fatalf("create %s: %v", input.Name, err)
		}
		if category.ID == "" {
			t.Fatal("expected generated category id")
		}
	}

	male, err := svc.List(ctx, "masculino")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(male) != 2 {
		t.Fatalf("expected 2 male categories, got %d", len(male))
	}
	if male[0].Name != "primera" || male[1].Name != "sub18" {
		t.Fatalf("expected categories sorted by name, got %q, %q", male[0].Name, male[1].Name)
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(all))
	}
}

func TestCategoryCreateValidation(t *testing.T) {
	svc := NewCategoryService(repositories.NewCategoryRepository(docstore.NewMemoryStore()))

	for _, input := range []CreateCategoryInput{
		{Name: "", Gender: "masculino"},
		{Name: "sub16", Gender: ""},
	} {
		if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}
