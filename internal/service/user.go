package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/universal-crud/backend-go/internal/auth"
	"github.com/universal-crud/backend-go/internal/models"
	"github.com/universal-crud/backend-go/internal/repository"
)

// UserService handles registration, authentication and user management.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    *logrus.Logger
}

// NewUserService initializes a new user service
func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, log *logrus.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

// RegisterParams holds the fields of a registration request.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// Register creates a new user with a hashed password and issues a token.
// New users always get the default role. The pre-check gives a friendly 409;
// the UNIQUE constraints close the race with concurrent registrations.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (*models.User, string, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, params.Username, params.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", repository.ErrDuplicate
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.users.Create(ctx, params.Username, params.Email, string(hashed), params.FirstName, params.LastName)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User registered: %s", user.Username)
	return user, token, nil
}

// Login authenticates a user by username or email and returns a JWT token.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	user, err := s.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in: %s", user.Username)
	return user, token, nil
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// List returns a page of users matching the filter.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]models.User, models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return users, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Update applies a profile update after per-field uniqueness checks and
// returns the updated user.
func (s *UserService) Update(ctx context.Context, id int64, params repository.UpdateUserParams) (*models.User, error) {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if params.Username != nil {
		taken, err := s.users.UsernameTaken(ctx, *params.Username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}
	if params.Email != nil {
		taken, err := s.users.EmailTaken(ctx, *params.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	if err := s.users.Update(ctx, id, params); err != nil {
		return nil, err
	}

	s.log.Infof("User %d updated", id)
	return s.users.FindByID(ctx, id)
}

// ChangePassword replaces a user's password. The current password is
// verified unless an admin changes someone else's password.
func (s *UserService) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string, verifyCurrent bool) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if verifyCurrent {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
			return ErrWrongPassword
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, id, string(hashed)); err != nil {
		return err
	}

	s.log.Infof("Password changed for user %d", id)
	return nil
}

// Delete removes a user and returns the deleted record.
func (s *UserService) Delete(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.log.Infof("User %d deleted", id)
	return user, nil
}
