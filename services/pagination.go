package services

import (
	"math"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type PageMeta struct {
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

type pager struct {
	page  int
	limit int
}

func newPager(page, limit int) pager {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return pager{page: page, limit: limit}
}

func (p pager) scope(db *gorm.DB) *gorm.DB {
	return db.Offset((p.page - 1) * p.limit).Limit(p.limit)
}

func newPage[T any](data []T, total int64, p pager) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data: data,
		Meta: PageMeta{
			Total:       total,
			TotalPages:  int(math.Ceil(float64(total) / float64(p.limit))),
			CurrentPage: p.page,
			PageSize:    p.limit,
		},
	}
}
