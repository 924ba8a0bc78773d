package store

import (
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// DefaultPageSize is used when callers pass a non-positive size.
const DefaultPageSize = 10

// Page is one page of a listing plus the numbers templates need for navigation.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	Total      int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

func (p Page[T]) NextNumber() int { return p.Number + 1 }
func (p Page[T]) PrevNumber() int { return p.Number - 1 }

// ParsePage turns a raw ?page= value into a page number. Anything that is not
// a positive integer means page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate counts base, clamps page into range (out-of-range pages fall back
// to page 1) and loads the requested slice ordered by order. scopes are only
// applied to the item query, e.g. preloads.
func Paginate[T any](base *gorm.DB, page, size int, order string, scopes ...func(*gorm.DB) *gorm.DB) (Page[T], error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(size)))
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 || page > totalPages {
		page = 1
	}

	items := make([]T, 0, size)
	err := base.Scopes(scopes...).
		Order(order).
		Offset((page - 1) * size).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Items:      items,
		Number:     page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}
