package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/universal-crud/backend-go/internal/auth"
	"github.com/universal-crud/backend-go/internal/repository"
	"github.com/universal-crud/backend-go/internal/respond"
	"github.com/universal-crud/backend-go/internal/service"
)

// AuthHandler owns the registration, login and token verification endpoints.
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type registerRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var errs []respond.FieldError
	if msg, ok := validUsername(req.Username); !ok {
		errs = append(errs, respond.FieldError{Field: "username", Message: msg})
	}
	if !validEmail(req.Email) {
		errs = append(errs, respond.FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if len(req.Password) < passwordMinLen {
		errs = append(errs, respond.FieldError{Field: "password", Message: "Password must be at least 6 characters long"})
	}
	if req.FirstName != nil && len(*req.FirstName) > nameMaxLen {
		errs = append(errs, respond.FieldError{Field: "first_name", Message: "First name must be less than 50 characters"})
	}
	if req.LastName != nil && len(*req.LastName) > nameMaxLen {
		errs = append(errs, respond.FieldError{Field: "last_name", Message: "Last name must be less than 50 characters"})
	}
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	user, token, err := h.users.Register(r.Context(), service.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			respond.Error(w, http.StatusConflict, "User with this username or email already exists")
			return
		}
		respond.ServerError(w, "Registration failed", err)
		return
	}

	respond.JSON(w, http.StatusCreated, "User registered successfully", map[string]any{
		"user":  user,
		"token": token,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var errs []respond.FieldError
	if req.Username == "" {
		errs = append(errs, respond.FieldError{Field: "username", Message: "Username is required"})
	}
	if req.Password == "" {
		errs = append(errs, respond.FieldError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respond.ServerError(w, "Login failed", err)
		return
	}

	respond.JSON(w, http.StatusOK, "Login successful", map[string]any{
		"user":  user,
		"token": token,
	})
}

// Verify handles GET /api/auth/verify. The token was already checked by the
// middleware; this returns fresh user data from the database.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.users.Get(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "User not found")
			return
		}
		respond.ServerError(w, "Verification failed", err)
		return
	}

	respond.JSON(w, http.StatusOK, "", map[string]any{"user": user})
}
