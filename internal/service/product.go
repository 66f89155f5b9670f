package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/universal-crud/backend-go/internal/models"
	"github.com/universal-crud/backend-go/internal/repository"
)

// ProductService handles product catalog operations.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	log        *logrus.Logger
}

// NewProductService initializes a new product service
func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository, log *logrus.Logger) *ProductService {
	return &ProductService{products: products, categories: categories, log: log}
}

// List returns a page of products matching the filter.
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, models.Pagination, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return products, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get fetches a product by id.
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

// Create inserts a new product after verifying the referenced category exists,
// then returns the stored record with its category name.
func (s *ProductService) Create(ctx context.Context, params repository.CreateProductParams) (*models.Product, error) {
	if err := s.checkCategory(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	id, err := s.products.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Product created: %s (id=%d)", params.Name, id)
	return s.products.FindByID(ctx, id)
}

// Update applies a partial update and returns the updated product.
func (s *ProductService) Update(ctx context.Context, id int64, params repository.UpdateProductParams) (*models.Product, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, id, params); err != nil {
		return nil, err
	}

	s.log.Infof("Product %d updated", id)
	return s.products.FindByID(ctx, id)
}

// Delete removes a product and returns the deleted record.
func (s *ProductService) Delete(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.log.Infof("Product %d deleted", id)
	return product, nil
}

func (s *ProductService) checkCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
