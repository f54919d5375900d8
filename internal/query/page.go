// Package query assembles filtered, sorted and paginated list queries.
package query

import (
	"math"
	"net/url"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxOffset bounds (page-1)*limit so the OFFSET never overflows.
	MaxOffset = math.MaxInt32
)

type Page struct {
	Page  int
	Limit int
}

type Meta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// ParsePage reads page/limit. page must be >= 1 and keep the offset within
// MaxOffset; limit is clamped to [1, MaxLimit].
func ParsePage(v url.Values) (Page, error) {
	p := Page{Page: 1, Limit: DefaultLimit}
	page, err := Int(v, "page")
	if err != nil {
		return p, err
	}
	if page != nil {
		if *page < 1 {
			return p, apperr.BadRequest("page must be at least 1")
		}
		p.Page = *page
	}
	limit, err := Int(v, "limit")
	if err != nil {
		return p, err
	}
	if limit != nil {
		p.Limit = ClampLimit(*limit)
	}
	if p.Page-1 > MaxOffset/p.Limit {
		return p, apperr.BadRequest("page %d is out of range for limit %d", p.Page, p.Limit)
	}
	return p, nil
}

func ClampLimit(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

func (p Page) Meta(total int) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
