package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/universal-crud/backend-go/internal/repository"
	"github.com/universal-crud/backend-go/internal/respond"
	"github.com/universal-crud/backend-go/internal/service"
)

// CategoryHandler owns the category endpoints. Reads are public, mutations
// are admin-only (enforced by the router middleware).
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type createCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// List handles GET /api/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respond.ServerError(w, "Failed to fetch categories", err)
		return
	}
	respond.JSON(w, http.StatusOK, "", map[string]any{"categories": categories})
}

// Get handles GET /api/categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Category not found")
			return
		}
		respond.ServerError(w, "Failed to fetch category", err)
		return
	}

	respond.JSON(w, http.StatusOK, "", map[string]any{"category": category})
}

// Products handles GET /api/categories/{id}/products
func (h *CategoryHandler) Products(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var errs []respond.FieldError
	page, limit, errs := parsePageQuery(r, errs)
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	category, products, pagination, err := h.categories.Products(r.Context(), id, page, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Category not found")
			return
		}
		respond.ServerError(w, "Failed to fetch category products", err)
		return
	}

	respond.JSON(w, http.StatusOK, "", map[string]any{
		"category":   category,
		"products":   products,
		"pagination": pagination,
	})
}

// Create handles POST /api/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var errs []respond.FieldError
	if req.Name == "" {
		errs = append(errs, respond.FieldError{Field: "name", Message: "Category name is required"})
	} else if len(req.Name) > categoryNameMax {
		errs = append(errs, respond.FieldError{Field: "name", Message: "Category name must be less than 50 characters"})
	}
	if req.Description != nil && len(*req.Description) > categoryDescMax {
		errs = append(errs, respond.FieldError{Field: "description", Message: "Description must be less than 500 characters"})
	}
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			respond.Error(w, http.StatusConflict, "Category with this name already exists")
			return
		}
		respond.ServerError(w, "Failed to create category", err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Category created successfully", map[string]any{"category": category})
}

// Update handles PUT /api/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var errs []respond.FieldError
	if req.Name != nil && (len(*req.Name) < 1 || len(*req.Name) > categoryNameMax) {
		errs = append(errs, respond.FieldError{Field: "name", Message: "Category name must be between 1 and 50 characters"})
	}
	if req.Description != nil && len(*req.Description) > categoryDescMax {
		errs = append(errs, respond.FieldError{Field: "description", Message: "Description must be less than 500 characters"})
	}
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}
	if req.Name == nil && req.Description == nil {
		respond.Error(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	category, err := h.categories.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, repository.ErrDuplicate):
			respond.Error(w, http.StatusConflict, "Category with this name already exists")
		default:
			respond.ServerError(w, "Failed to update category", err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, "Category updated successfully", map[string]any{"category": category})
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := h.categories.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, repository.ErrCategoryHasProducts):
			respond.Error(w, http.StatusConflict, "Cannot delete category that has products. Please remove or reassign products first.")
		default:
			respond.ServerError(w, "Failed to delete category", err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, "Category deleted successfully", map[string]any{"deleted_category": category})
}
