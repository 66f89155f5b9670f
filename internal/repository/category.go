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

const categoryColumns = `c.id, c.name, c.description, c.created_at, COUNT(p.id) AS product_count`

const categoryJoin = ` FROM categories c LEFT JOIN products p ON c.id = p.category_id AND p.status = ?`

const categoryGroup = ` GROUP BY c.id, c.name, c.description, c.created_at`

type categoryRepository struct {
	db *database.DB
}

// NewCategoryRepository initializes a category repository over the shared pool.
func NewCategoryRepository(db *database.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// List returns all categories with their active product counts, sorted by name.
func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + categoryJoin + categoryGroup + ` ORDER BY c.name ASC`
	rows, err := r.db.Query(ctx, query, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FindByID retrieves a category with its active product count.
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + categoryJoin + ` WHERE c.id = ?` + categoryGroup
	var c models.Category
	err := r.db.QueryRow(ctx, query, models.StatusActive, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.ProductCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &c, nil
}

// Create inserts a new category and returns the new id.
func (r *categoryRepository) Create(ctx context.Context, name string, description *string) (int64, error) {
	query := `INSERT INTO categories (name, description) VALUES (?, ?)`
	id, err := r.db.Insert(ctx, query, name, description)
	if err != nil {
		if database.IsDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	return id, nil
}

// Update applies the provided fields.
func (r *categoryRepository) Update(ctx context.Context, id int64, name, description *string) error {
	var sets []string
	var args []any

	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *description)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := `UPDATE categories SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// Delete removes a category.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// NameTaken reports whether another category already owns the name.
func (r *categoryRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	query := `SELECT COUNT(*) FROM categories WHERE name = ? AND id <> ?`
	if err := r.db.QueryRow(ctx, query, name, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}
