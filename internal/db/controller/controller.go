// Package controller holds the database-facing service layer. Every resource
// gets its own sub-package with List/Find/Create/Update/Delete functions that
// operate on a *gorm.DB handle passed in by the caller.
package controller

import (
	"strings"

	"gorm.io/gorm"
)

// DefaultPageSize is the number of rows per page on list views.
const DefaultPageSize = 15

// ListParams carries the common list-view inputs: free-text search, exact
// column filters and pagination.
type ListParams struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

// PageInfo describes one page of a paginated result set.
type PageInfo struct {
	Page     int
	PageSize int
	Total    int64
	LastPage int
}

// Normalize clamps page and page size to usable values.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}

	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
}

// Offset returns the row offset of the requested page.
func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewPageInfo builds pagination metadata from a total row count.
func NewPageInfo(params ListParams, total int64) PageInfo {
	lastPage := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	if lastPage < 1 {
		lastPage = 1
	}

	return PageInfo{
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
		LastPage: lastPage,
	}
}

// ApplyFilters adds an exact-match WHERE clause per filter whose column
// exists on the model. Filters naming unknown columns are skipped rather
// than rejected, so stale query strings never break a list view.
func ApplyFilters(query *gorm.DB, model any, filters map[string]string) *gorm.DB {
	for column, value := range filters {
		if value == "" {
			continue
		}

		if !query.Migrator().HasColumn(model, column) {
			continue
		}

		query = query.Where(column+" = ?", value)
	}

	return query
}

// SearchClause builds a case-insensitive LIKE pattern for free-text search.
func SearchClause(search string) string {
	return "%" + strings.ToLower(search) + "%"
}
