package repository

import "errors"

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate indicates a uniqueness conflict.
var ErrDuplicate = errors.New("record already exists")

// ErrCategoryHasProducts indicates a category delete was blocked because
// products still reference it.
var ErrCategoryHasProducts = errors.New("category has products")
