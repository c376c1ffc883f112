package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/pkg/config"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// UserIDHeader carries the identity of the calling user, set by the gateway
const UserIDHeader = "X-User-Id"

// Paging turns offset/limit/sort query parameters into a PageRequest.
// page/size are accepted as an alternative to offset/limit.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// NewPaging creates paging bounds from configuration
func NewPaging(cfg config.PaginationConfig) Paging {
	return Paging{DefaultLimit: cfg.DefaultLimit, MaxLimit: cfg.MaxLimit}
}

// Parse reads the cursor of a listing request
func (p Paging) Parse(r *http.Request) (entities.PageRequest, error) {
	q := r.URL.Query()
	page := entities.PageRequest{Limit: p.DefaultLimit}

	limit, err := queryInt(q.Get("limit"), "limit")
	if err != nil {
		return page, err
	}
	if limit == nil {
		if limit, err = queryInt(q.Get("size"), "size"); err != nil {
			return page, err
		}
	}
	if limit != nil {
		if *limit <= 0 {
			return page, apperrors.NewValidationError("limit must be positive")
		}
		page.Limit = min(*limit, p.MaxLimit)
	}

	offset, err := queryInt(q.Get("offset"), "offset")
	if err != nil {
		return page, err
	}
	if offset == nil {
		number, err := queryInt(q.Get("page"), "page")
		if err != nil {
			return page, err
		}
		if number != nil {
			n := *number * page.Limit
			offset = &n
		}
	}
	if offset != nil {
		if *offset < 0 {
			return page, apperrors.NewValidationError("offset must not be negative")
		}
		page.Offset = *offset
	}

	// sort=createdAt,desc&sort=title
	for _, raw := range q["sort"] {
		parts := strings.Split(raw, ",")
		field := strings.TrimSpace(parts[0])
		if field == "" {
			continue
		}
		order := entities.SortOrder{Field: field}
		if len(parts) > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[1])) {
			case "desc":
				order.Desc = true
			case "asc", "":
			default:
				return page, apperrors.NewValidationError(fmt.Sprintf("invalid sort direction %q", parts[1]))
			}
		}
		page.Sort = append(page.Sort, order)
	}

	return page, nil
}

func queryInt(value, name string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s must be an integer", name))
	}
	return &n, nil
}

// requesterID resolves who is acting: the identity header wins over the
// requesterId carried by the body or query.
func requesterID(r *http.Request, fallback string) (string, error) {
	if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(fallback); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(r.URL.Query().Get("requesterId")); id != "" {
		return id, nil
	}
	return "", apperrors.NewValidationError("requesterId is required")
}

// authenticatedUser reads the identity header, which the route requires
func authenticatedUser(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		return "", apperrors.NewUnauthorizedError(UserIDHeader + " header is required")
	}
	return id, nil
}

// validateText enforces presence and length of a free-text field
func validateText(field, value string, maxLen int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError(fmt.Sprintf("%s must not be blank", field))
	}
	if len([]rune(value)) > maxLen {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return nil
}
