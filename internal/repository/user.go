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

const userColumns = "id, username, email, password, first_name, last_name, role, created_at, updated_at"

type userRepository struct {
	db *database.DB
}

// NewUserRepository initializes a user repository over the shared pool.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user with the default role and returns the new id.
func (r *userRepository) Create(ctx context.Context, username, email, passwordHash string, firstName, lastName *string) (int64, error) {
	query := `
		INSERT INTO users (username, email, password, first_name, last_name, role)
		VALUES (?, ?, ?, ?, ?, ?)`
	id, err := r.db.Insert(ctx, query, username, email, passwordHash, firstName, lastName, models.RoleUser)
	if err != nil {
		if database.IsDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// FindByID retrieves a user by id
func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// FindByUsernameOrEmail retrieves a user matching the identifier as either
// username or email, for login.
func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? OR email = ?`
	return r.scanUser(r.db.QueryRow(ctx, query, identifier, identifier))
}

// ExistsByUsernameOrEmail reports whether a user with the username or email exists.
func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	query := `SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`
	if err := r.db.QueryRow(ctx, query, username, email).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// UsernameTaken reports whether another user already owns the username.
func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.fieldTaken(ctx, "username", username, excludeID)
}

// EmailTaken reports whether another user already owns the email.
func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.fieldTaken(ctx, "email", email, excludeID)
}

func (r *userRepository) fieldTaken(ctx context.Context, field, value string, excludeID int64) (bool, error) {
	var count int64
	query := `SELECT COUNT(*) FROM users WHERE ` + field + ` = ? AND id <> ?`
	if err := r.db.QueryRow(ctx, query, value, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check %s uniqueness: %w", field, err)
	}
	return count > 0, nil
}

// List returns a page of users plus the total count matching the filter.
func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	var conditions []string
	var args []any

	if filter.Role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + whereClause +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update applies the provided fields. Callers check existence and uniqueness
// beforehand; the UNIQUE constraints still backstop concurrent writers.
func (r *userRepository) Update(ctx context.Context, id int64, params UpdateUserParams) error {
	var sets []string
	var args []any

	appendSet := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}
	appendSet("username", params.Username)
	appendSet("email", params.Email)
	appendSet("first_name", params.FirstName)
	appendSet("last_name", params.LastName)
	appendSet("role", params.Role)

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Exec(ctx, query, passwordHash, id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Delete removes a user.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}
