package entities

// SortOrder is one key of a sort cursor
type SortOrder struct {
	Field string
	Desc  bool
}

// PageRequest is the offset/limit/sort cursor accepted by every listing
type PageRequest struct {
	Offset int
	Limit  int
	Sort   []SortOrder
}

// Page is a slice of results plus the size of the whole result set
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	Offset        int   `json:"offset"`
	Limit         int   `json:"limit"`
}

// NewPage builds a page, never returning a nil content slice
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		Offset:        req.Offset,
		Limit:         req.Limit,
	}
}
