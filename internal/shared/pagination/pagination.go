// Package pagination holds the page/limit arithmetic shared by list endpoints.
package pagination

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a normalised page request.
type Params struct {
	Page  int
	Limit int
}

// Meta is returned alongside every paginated collection.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Normalize fills unset values with defaults. Out-of-range input is
// rejected earlier by request validation, so values here are clamped.
func Normalize(page, limit, defaultLimit int) Params {
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// Keeps (page-1)*limit from overflowing; such a page is simply empty.
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewMeta computes total pages as ceil(total/limit), never less than 1.
func NewMeta(p Params, total int) Meta {
	totalPages := 1
	if p.Limit > 0 && total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
