package service

import "errors"

// Sentinel errors the handlers map onto the HTTP taxonomy. Validation
// failures wrap ErrValidation so the specific message survives while
// errors.Is still matches.
var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrFeedbackNotFound   = errors.New("feedback not found")
	ErrNotOwner           = errors.New("not authorized to modify this feedback")
	ErrNoUpdates          = errors.New("no updates provided")
)

// PaginationMeta is the metadata block attached to paginated listings.
type PaginationMeta struct {
	TotalItems   int64 `json:"totalItems"`
	ItemCount    int   `json:"itemCount"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int   `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
