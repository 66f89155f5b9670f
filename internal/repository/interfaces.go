package repository

import (
	"context"

	"github.com/universal-crud/backend-go/internal/models"
)

// UserFilter narrows and pages the user listing.
type UserFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

// UpdateUserParams holds the user fields that can change. All fields are
// pointers so callers only set what needs updating; the repository builds the
// SQL accordingly.
type UpdateUserParams struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Role      *string
}

// Empty reports whether no field is set.
func (p UpdateUserParams) Empty() bool {
	return p.Username == nil && p.Email == nil && p.FirstName == nil && p.LastName == nil && p.Role == nil
}

// UserRepository provides persistence for users.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string, firstName, lastName *string) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id int64, params UpdateUserParams) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// ProductFilter narrows and pages the product listing.
type ProductFilter struct {
	CategoryID int64
	Status     string
	Search     string
	Page       int
	Limit      int
}

// CreateProductParams holds the fields of a new product.
type CreateProductParams struct {
	Name        string
	Description *string
	Price       float64
	Quantity    int
	CategoryID  *int64
	ImageURL    *string
}

// UpdateProductParams holds the product fields that can change.
type UpdateProductParams struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
	CategoryID  *int64
	ImageURL    *string
	Status      *string
}

// Empty reports whether no field is set.
func (p UpdateProductParams) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Quantity == nil &&
		p.CategoryID == nil && p.ImageURL == nil && p.Status == nil
}

// ProductRepository provides persistence for products.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	ListByCategory(ctx context.Context, categoryID int64, page, limit int) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, params CreateProductParams) (int64, error)
	Update(ctx context.Context, id int64, params UpdateProductParams) error
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}

// CategoryRepository provides persistence for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, name string, description *string) (int64, error)
	Update(ctx context.Context, id int64, name, description *string) error
	Delete(ctx context.Context, id int64) error
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
}
