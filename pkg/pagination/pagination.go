// Package pagination provides the page-request and page-envelope types
// shared by all list endpoints.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Pageable describes a page request. Page is zero-based; a Size of zero or
// less means "everything" (unpaged).
type Pageable struct {
	Page int
	Size int
}

// FromEcho reads `page` and `size` query params with defaults.
func FromEcho(c echo.Context, defaultSize int) Pageable {
	p := Pageable{Page: 0, Size: defaultSize}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Page = n
		}
	}
	if v := c.QueryParam("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Size = n
		}
	}
	return p
}

// Unpaged reports whether the request asks for the full result set.
func (p Pageable) Unpaged() bool {
	return p.Size <= 0
}

func (p Pageable) offset() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page * p.Size
}

// Page is one page of results plus paging metadata.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

// NewPage assembles a page envelope around content.
func NewPage[T any](content []T, p Pageable, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	page := Page[T]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
	}
	if p.Unpaged() {
		page.Page = 0
		page.Size = len(content)
		page.TotalPages = 1
		return page
	}
	page.TotalPages = int((total + int64(p.Size) - 1) / int64(p.Size))
	return page
}

// Scope applies the page request as a gorm scope.
func (p Pageable) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Unpaged() {
			return db
		}
		return db.Offset(p.offset()).Limit(p.Size)
	}
}
