package catalog

import (
	"math"

	"github.com/sahilchouksey/degreefyd-api/model"
)

// Window is a contiguous range of a sorted result. Limit 0 means unbounded.
type Window struct {
	Offset int
	Limit  int
}

// PageWindow converts a 1-based page and page size into a Window
func PageWindow(page, limit int) Window {
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}
	// saturate so an oversized page lands past the end instead of wrapping
	offset := math.MaxInt
	if limit == 0 || page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}
	return Window{Offset: offset, Limit: limit}
}

// Apply slices an already sorted sequence
func (w Window) Apply(colleges []model.College) []model.College {
	if w.Offset < 0 || w.Offset >= len(colleges) {
		return []model.College{}
	}
	end := len(colleges)
	if w.Limit > 0 && w.Limit < end-w.Offset {
		end = w.Offset + w.Limit
	}
	return colleges[w.Offset:end]
}

// TotalPages is ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	l := int64(limit)
	pages := total / l
	if total%l != 0 {
		pages++
	}
	return int(pages)
}

// Page is one page of a listing
type Page struct {
	Data       []model.College `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}
