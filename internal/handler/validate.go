package handler

import (
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/universal-crud/backend-go/internal/respond"
)

// Validation limits mirror the declared rules of the REST contract.
const (
	usernameMinLen    = 3
	usernameMaxLen    = 50
	passwordMinLen    = 6
	nameMaxLen        = 50
	productNameMaxLen = 100
	productDescMaxLen = 1000
	categoryNameMax   = 50
	categoryDescMax   = 500
	searchMaxLen      = 100
	maxPageSize       = 100
	defaultPageSize   = 10
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validUsername(username string) (string, bool) {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return "Username must be between 3 and 50 characters", false
	}
	if !usernamePattern.MatchString(username) {
		return "Username can only contain letters, numbers, and underscores", false
	}
	return "", true
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func validRole(role string) bool {
	return role == "admin" || role == "user"
}

func validStatus(status string) bool {
	return status == "active" || status == "inactive"
}

// parseID extracts a positive integer path parameter.
func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// parsePageQuery reads page and limit query parameters with defaults, and
// appends field errors for out-of-range values.
func parsePageQuery(r *http.Request, errs []respond.FieldError) (page, limit int, out []respond.FieldError) {
	page, limit, out = 1, defaultPageSize, errs

	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			out = append(out, respond.FieldError{Field: "page", Message: "Page must be a positive integer"})
		} else {
			page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxPageSize {
			out = append(out, respond.FieldError{Field: "limit", Message: "Limit must be between 1 and 100"})
		} else {
			limit = v
		}
	}
	return page, limit, out
}
