package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/universal-crud/backend-go/internal/models"
	"github.com/universal-crud/backend-go/internal/repository"
)

// CategoryService handles category management. Mutations are admin-only,
// enforced at the routing layer.
type CategoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	log        *logrus.Logger
}

// NewCategoryService initializes a new category service
func NewCategoryService(categories repository.CategoryRepository, products repository.ProductRepository, log *logrus.Logger) *CategoryService {
	return &CategoryService{categories: categories, products: products, log: log}
}

// List returns all categories with product counts.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// Get fetches a category by id.
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return s.categories.FindByID(ctx, id)
}

// Products returns a page of the active products in a category, together with
// the category itself.
func (s *CategoryService) Products(ctx context.Context, categoryID int64, page, limit int) (*models.Category, []models.Product, models.Pagination, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, nil, models.Pagination{}, err
	}

	products, total, err := s.products.ListByCategory(ctx, categoryID, page, limit)
	if err != nil {
		return nil, nil, models.Pagination{}, err
	}
	return category, products, models.NewPagination(page, limit, total), nil
}

// Create inserts a new category after a name uniqueness check.
func (s *CategoryService) Create(ctx context.Context, name string, description *string) (*models.Category, error) {
	taken, err := s.categories.NameTaken(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrDuplicate
	}

	id, err := s.categories.Create(ctx, name, description)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Category created: %s (id=%d)", name, id)
	return s.categories.FindByID(ctx, id)
}

// Update applies a partial update and returns the updated category.
func (s *CategoryService) Update(ctx context.Context, id int64, name, description *string) (*models.Category, error) {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if name != nil {
		taken, err := s.categories.NameTaken(ctx, *name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repository.ErrDuplicate
		}
	}

	if err := s.categories.Update(ctx, id, name, description); err != nil {
		return nil, err
	}

	s.log.Infof("Category %d updated", id)
	return s.categories.FindByID(ctx, id)
}

// Delete removes a category. Deletion is blocked while any product, active or
// not, still references it.
func (s *CategoryService) Delete(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, repository.ErrCategoryHasProducts
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.log.Infof("Category %d deleted", id)
	return category, nil
}
