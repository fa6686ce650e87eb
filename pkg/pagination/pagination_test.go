package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestFromEcho(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?page=2&size=25", nil)
	p := FromEcho(e.NewContext(req, httptest.NewRecorder()), 10)
	assert.Equal(t, Pageable{Page: 2, Size: 25}, p)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	p = FromEcho(e.NewContext(req, httptest.NewRecorder()), 10)
	assert.Equal(t, Pageable{Page: 0, Size: 10}, p)

	// Garbage params fall back to defaults.
	req = httptest.NewRequest(http.MethodGet, "/?page=x&size=y", nil)
	p = FromEcho(e.NewContext(req, httptest.NewRecorder()), 10)
	assert.Equal(t, Pageable{Page: 0, Size: 10}, p)
}

func TestNewPage_TotalPages(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, Pageable{Page: 0, Size: 3}, 7)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(7), page.TotalElements)

	page = NewPage([]int{1}, Pageable{Page: 2, Size: 3}, 7)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
}

func TestNewPage_Unpaged(t *testing.T) {
	page := NewPage([]string{"a", "b"}, Pageable{Page: 0, Size: 0}, 2)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, 1, page.TotalPages)
}

func TestNewPage_NilContent(t *testing.T) {
	page := NewPage[string](nil, Pageable{Page: 0, Size: 5}, 0)
	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
}
