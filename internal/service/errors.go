package service

import "errors"

// ErrInvalidCredentials is returned when login fails, without revealing
// whether the user exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrWrongPassword is returned when a password change supplies a wrong
// current password.
var ErrWrongPassword = errors.New("current password is incorrect")

// ErrUsernameTaken is returned when a profile update collides on username.
var ErrUsernameTaken = errors.New("username already exists")

// ErrEmailTaken is returned when a profile update collides on email.
var ErrEmailTaken = errors.New("email already exists")

// ErrCategoryNotFound is returned when a product references a category that
// does not exist.
var ErrCategoryNotFound = errors.New("category not found")
