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

// UserHandler owns the user management endpoints. Listing and deletion are
// admin-only (routed behind RequireAdmin); profile reads and updates allow
// the owner or an admin, checked here against the caller's principal.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs the handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type updateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// List handles GET /api/users (admin only)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var errs []respond.FieldError
	page, limit, errs := parsePageQuery(r, errs)

	filter := repository.UserFilter{Page: page, Limit: limit}
	query := r.URL.Query()

	if role := query.Get("role"); role != "" {
		if !validRole(role) {
			errs = append(errs, respond.FieldError{Field: "role", Message: "Role must be either admin or user"})
		} else {
			filter.Role = role
		}
	}
	if search := query.Get("search"); search != "" {
		if len(search) > searchMaxLen {
			errs = append(errs, respond.FieldError{Field: "search", Message: "Search term must be less than 100 characters"})
		} else {
			filter.Search = search
		}
	}
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	users, pagination, err := h.users.List(r.Context(), filter)
	if err != nil {
		respond.ServerError(w, "Failed to fetch users", err)
		return
	}

	respond.JSON(w, http.StatusOK, "", map[string]any{
		"users":      users,
		"pagination": pagination,
	})
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.users.Get(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		respond.ServerError(w, "Failed to fetch profile", err)
		return
	}

	respond.JSON(w, http.StatusOK, "", map[string]any{"user": user})
}

// Get handles GET /api/users/{id} (self or admin)
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !principal.IsAdmin() && principal.UserID != id {
		respond.Error(w, http.StatusForbidden, "Access denied: You can only view your own profile")
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		respond.ServerError(w, "Failed to fetch user", err)
		return
	}

	respond.JSON(w, http.StatusOK, "", map[string]any{"user": user})
}

// Update handles PUT /api/users/{id} (self or admin)
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !principal.IsAdmin() && principal.UserID != id {
		respond.Error(w, http.StatusForbidden, "Access denied: You can only update your own profile")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Role != nil {
		if !principal.IsAdmin() {
			respond.Error(w, http.StatusForbidden, "Access denied: You cannot change your own role")
			return
		}
		if principal.UserID == id && *req.Role != principal.Role {
			respond.Error(w, http.StatusForbidden, "Access denied: Admins cannot change their own role")
			return
		}
	}

	var errs []respond.FieldError
	if req.Username != nil {
		if msg, ok := validUsername(*req.Username); !ok {
			errs = append(errs, respond.FieldError{Field: "username", Message: msg})
		}
	}
	if req.Email != nil && !validEmail(*req.Email) {
		errs = append(errs, respond.FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if req.FirstName != nil && len(*req.FirstName) > nameMaxLen {
		errs = append(errs, respond.FieldError{Field: "first_name", Message: "First name must be less than 50 characters"})
	}
	if req.LastName != nil && len(*req.LastName) > nameMaxLen {
		errs = append(errs, respond.FieldError{Field: "last_name", Message: "Last name must be less than 50 characters"})
	}
	if req.Role != nil && !validRole(*req.Role) {
		errs = append(errs, respond.FieldError{Field: "role", Message: "Role must be either admin or user"})
	}
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	params := repository.UpdateUserParams{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}
	if params.Empty() {
		respond.Error(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	user, err := h.users.Update(r.Context(), id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrUsernameTaken):
			respond.Error(w, http.StatusConflict, "Username already exists")
		case errors.Is(err, service.ErrEmailTaken):
			respond.Error(w, http.StatusConflict, "Email already exists")
		case errors.Is(err, repository.ErrDuplicate):
			respond.Error(w, http.StatusConflict, "Username or email already exists")
		default:
			respond.ServerError(w, "Failed to update user", err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, "User updated successfully", map[string]any{"user": user})
}

// ChangePassword handles POST /api/users/{id}/change-password (self or admin)
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !principal.IsAdmin() && principal.UserID != id {
		respond.Error(w, http.StatusForbidden, "Access denied: You can only change your own password")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	// An admin resetting someone else's password does not know the current one.
	verifyCurrent := !principal.IsAdmin() || principal.UserID == id

	var errs []respond.FieldError
	if verifyCurrent && req.CurrentPassword == "" {
		errs = append(errs, respond.FieldError{Field: "current_password", Message: "Current password is required"})
	}
	if len(req.NewPassword) < passwordMinLen {
		errs = append(errs, respond.FieldError{Field: "new_password", Message: "New password must be at least 6 characters long"})
	}
	if req.ConfirmPassword != req.NewPassword {
		errs = append(errs, respond.FieldError{Field: "confirm_password", Message: "Password confirmation does not match new password"})
	}
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	err := h.users.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword, verifyCurrent)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrWrongPassword):
			respond.Error(w, http.StatusUnauthorized, "Current password is incorrect")
		default:
			respond.ServerError(w, "Failed to change password", err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, "Password changed successfully", nil)
}

// Delete handles DELETE /api/users/{id} (admin only)
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if principal.UserID == id {
		respond.Error(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	user, err := h.users.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		respond.ServerError(w, "Failed to delete user", err)
		return
	}

	respond.JSON(w, http.StatusOK, "User deleted successfully", map[string]any{"deleted_user": user})
}
