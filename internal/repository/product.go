package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/universal-crud/backend-go/internal/database"
	"github.com/universal-crud/backend-go/internal/models"
)

const productColumns = `p.id, p.name, p.description, p.price, p.quantity, p.category_id,
		c.name AS category_name, p.image_url, p.status, p.created_at, p.updated_at`

const productJoin = ` FROM products p LEFT JOIN categories c ON p.category_id = c.id`

type productRepository struct {
	db *database.DB
}

// NewProductRepository initializes a product repository over the shared pool.
func NewProductRepository(db *database.DB) ProductRepository {
	return &productRepository{db: db}
}

// List returns a page of products plus the total count matching the filter.
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var conditions []string
	var args []any

	if filter.CategoryID > 0 {
		conditions = append(conditions, "p.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "p.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(p.name LIKE ? OR p.description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + productJoin + whereClause +
		` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListByCategory returns a page of the active products in a category.
func (r *productRepository) ListByCategory(ctx context.Context, categoryID int64, page, limit int) ([]models.Product, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM products WHERE category_id = ? AND status = ?`
	if err := r.db.QueryRow(ctx, countQuery, categoryID, models.StatusActive).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count category products: %w", err)
	}

	query := `SELECT ` + productColumns + productJoin +
		` WHERE p.category_id = ? AND p.status = ?
		ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	products, err := r.queryProducts(ctx, query, categoryID, models.StatusActive, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindByID retrieves a product with its category name.
func (r *productRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + productJoin + ` WHERE p.id = ?`
	var p models.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CategoryID,
		&p.CategoryName, &p.ImageURL, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

// Create inserts a new product and returns the new id. Status defaults to
// active at the schema level.
func (r *productRepository) Create(ctx context.Context, params CreateProductParams) (int64, error) {
	query := `
		INSERT INTO products (name, description, price, quantity, category_id, image_url)
		VALUES (?, ?, ?, ?, ?, ?)`
	id, err := r.db.Insert(ctx, query,
		params.Name, params.Description, params.Price, params.Quantity, params.CategoryID, params.ImageURL)
	if err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}
	return id, nil
}

// Update applies the provided fields.
func (r *productRepository) Update(ctx context.Context, id int64, params UpdateProductParams) error {
	var sets []string
	var args []any

	if params.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *params.Name)
	}
	if params.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *params.Description)
	}
	if params.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *params.Price)
	}
	if params.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *params.Quantity)
	}
	if params.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *params.CategoryID)
	}
	if params.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *params.ImageURL)
	}
	if params.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *params.Status)
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByCategory counts every product referencing a category, regardless of
// status. Used to block category deletion.
func (r *productRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM products WHERE category_id = ?`
	if err := r.db.QueryRow(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CategoryID,
			&p.CategoryName, &p.ImageURL, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
