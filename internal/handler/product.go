package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/universal-crud/backend-go/internal/repository"
	"github.com/universal-crud/backend-go/internal/respond"
	"github.com/universal-crud/backend-go/internal/service"
)

// ProductHandler owns the product catalog endpoints. Reads are public,
// mutations require authentication.
type ProductHandler struct {
	products *service.ProductService
}

// NewProductHandler constructs the handler.
func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	CategoryID  *int64   `json:"category_id"`
	ImageURL    *string  `json:"image_url"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	CategoryID  *int64   `json:"category_id"`
	ImageURL    *string  `json:"image_url"`
	Status      *string  `json:"status"`
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var errs []respond.FieldError
	page, limit, errs := parsePageQuery(r, errs)

	filter := repository.ProductFilter{Page: page, Limit: limit}
	query := r.URL.Query()

	if raw := query.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			errs = append(errs, respond.FieldError{Field: "category_id", Message: "Category ID must be a positive integer"})
		} else {
			filter.CategoryID = id
		}
	}
	if status := query.Get("status"); status != "" {
		if !validStatus(status) {
			errs = append(errs, respond.FieldError{Field: "status", Message: "Status must be either active or inactive"})
		} else {
			filter.Status = status
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

	products, pagination, err := h.products.List(r.Context(), filter)
	if err != nil {
		respond.ServerError(w, "Failed to fetch products", err)
		return
	}

	respond.JSON(w, http.StatusOK, "", map[string]any{
		"products":   products,
		"pagination": pagination,
	})
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		respond.ServerError(w, "Failed to fetch product", err)
		return
	}

	respond.JSON(w, http.StatusOK, "", map[string]any{"product": product})
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var errs []respond.FieldError
	if req.Name == "" {
		errs = append(errs, respond.FieldError{Field: "name", Message: "Product name is required"})
	} else if len(req.Name) > productNameMaxLen {
		errs = append(errs, respond.FieldError{Field: "name", Message: "Product name must be less than 100 characters"})
	}
	if req.Price == nil {
		errs = append(errs, respond.FieldError{Field: "price", Message: "Price must be a positive number"})
	} else if *req.Price < 0 {
		errs = append(errs, respond.FieldError{Field: "price", Message: "Price must be a positive number"})
	}
	errs = validateOptionalProductFields(errs, req.Description, req.Quantity, req.CategoryID, req.ImageURL)
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	params := repository.CreateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}
	if req.Quantity != nil {
		params.Quantity = *req.Quantity
	}

	product, err := h.products.Create(r.Context(), params)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respond.Error(w, http.StatusBadRequest, "Category not found")
			return
		}
		respond.ServerError(w, "Failed to create product", err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Product created successfully", map[string]any{"product": product})
}

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var errs []respond.FieldError
	if req.Name != nil && (len(*req.Name) < 1 || len(*req.Name) > productNameMaxLen) {
		errs = append(errs, respond.FieldError{Field: "name", Message: "Product name must be between 1 and 100 characters"})
	}
	if req.Price != nil && *req.Price < 0 {
		errs = append(errs, respond.FieldError{Field: "price", Message: "Price must be a positive number"})
	}
	if req.Status != nil && !validStatus(*req.Status) {
		errs = append(errs, respond.FieldError{Field: "status", Message: "Status must be either active or inactive"})
	}
	errs = validateOptionalProductFields(errs, req.Description, req.Quantity, req.CategoryID, req.ImageURL)
	if len(errs) > 0 {
		respond.ValidationError(w, errs)
		return
	}

	params := repository.UpdateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	}
	if params.Empty() {
		respond.Error(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	product, err := h.products.Update(r.Context(), id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrCategoryNotFound):
			respond.Error(w, http.StatusBadRequest, "Category not found")
		default:
			respond.ServerError(w, "Failed to update product", err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, "Product updated successfully", map[string]any{"product": product})
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		respond.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		respond.ServerError(w, "Failed to delete product", err)
		return
	}

	respond.JSON(w, http.StatusOK, "Product deleted successfully", map[string]any{"deleted_product": product})
}

func validateOptionalProductFields(errs []respond.FieldError, description *string, quantity *int, categoryID *int64, imageURL *string) []respond.FieldError {
	if description != nil && len(*description) > productDescMaxLen {
		errs = append(errs, respond.FieldError{Field: "description", Message: "Description must be less than 1000 characters"})
	}
	if quantity != nil && *quantity < 0 {
		errs = append(errs, respond.FieldError{Field: "quantity", Message: "Quantity must be a non-negative integer"})
	}
	if categoryID != nil && *categoryID < 1 {
		errs = append(errs, respond.FieldError{Field: "category_id", Message: "Category ID must be a positive integer"})
	}
	if imageURL != nil && !validURL(*imageURL) {
		errs = append(errs, respond.FieldError{Field: "image_url", Message: "Image URL must be a valid URL"})
	}
	return errs
}
