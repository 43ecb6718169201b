// Package pagination slices ordered result sets into fixed-size, 1-indexed pages.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultPageSize is used when a non-positive size is configured.
const DefaultPageSize = 10

// Meta describes one page of a result set of Total items.
type Meta struct {
	Number         int   `json:"number"`
	Size           int   `json:"size"`
	NumPages       int   `json:"num_pages"`
	Total          int64 `json:"total"`
	HasNext        bool  `json:"has_next"`
	HasPrevious    bool  `json:"has_previous"`
	NextNumber     int   `json:"next_number,omitempty"`
	PreviousNumber int   `json:"previous_number,omitempty"`
}

// Page is a Meta plus the items it covers.
type Page[T any] struct {
	Meta
	Items []T `json:"items"`
}

// NewMeta resolves the untrusted page parameter raw against total items.
// Empty or non-numeric values select page 1; numbers outside
// [1, NumPages], including ones that overflow int, select the last page.
// An empty set is page 1 of 1.
func NewMeta(total int64, size int, raw string) Meta {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange):
		// An integer too wide for int is still out of range.
		number = numPages
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	m := Meta{
		Number:      number,
		Size:        size,
		NumPages:    numPages,
		Total:       total,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
	if m.HasNext {
		m.NextNumber = number + 1
	}
	if m.HasPrevious {
		m.PreviousNumber = number - 1
	}
	return m
}

// Offset is the zero-based index of the first item on the page.
func (m Meta) Offset() int {
	return (m.Number - 1) * m.Size
}

// Limit is the maximum number of items on the page.
func (m Meta) Limit() int {
	return m.Size
}

// NewPage wraps items already fetched for meta. A nil slice becomes empty so
// the page always serialises as a list.
func NewPage[T any](meta Meta, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Meta: meta, Items: items}
}

// Paginate returns the requested page of an in-memory ordered slice.
func Paginate[T any](items []T, size int, raw string) Page[T] {
	meta := NewMeta(int64(len(items)), size, raw)
	start := meta.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + meta.Limit()
	if end > len(items) {
		end = len(items)
	}
	return NewPage(meta, items[start:end])
}
