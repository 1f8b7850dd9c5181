package filters

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage bounds Offset so that it cannot overflow.
	MaxPage         = 10_000_000
)

type Filters struct {
	Page     int `schema:"page" json:"page" validate:"omitempty,min=1,max=10000000"`
	PageSize int `schema:"page_size" json:"page_size" validate:"omitempty,min=1"`
}

// Normalize fills in defaults and clamps the page size to maxPageSize.
func (f *Filters) Normalize(defaultPageSize, maxPageSize int) {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
}

func (f *Filters) Limit() int {
	return f.PageSize
}

// PastEnd reports whether a page beyond the first came back empty, i.e. it lies past the last page.
func (f *Filters) PastEnd(results int) bool {
	return f.Page > 1 && results == 0
}

func (f *Filters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// TitleFilter narrows a title listing. Zero values disable a condition.
type TitleFilter struct {
	Category string `schema:"category" validate:"omitempty,max=50"`
	Genre    string `schema:"genre" validate:"omitempty,max=50"`
	Name     string `schema:"name" validate:"omitempty,max=256"`
	Year     *int32 `schema:"year"`
}

type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds a page of results. Links are derived from base by rewriting its page
// query parameter; base may be nil, in which case no links are produced.
func NewPage[T any](results []T, total int, f Filters, base *url.URL) *Page[T] {
	if results == nil {
		results = []T{}
	}
	p := &Page[T]{Count: total, Results: results}
	if base == nil {
		return p
	}
	if f.Page*f.PageSize < total {
		next := pageURL(base, f.Page+1)
		p.Next = &next
	}
	if f.Page > 1 {
		prev := pageURL(base, f.Page-1)
		p.Previous = &prev
	}
	return p
}

func pageURL(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
