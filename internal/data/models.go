// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"
)

// queryTimeout bounds every round-trip to the database.
const queryTimeout = 3 * time.Second

var (
	// ErrRecordNotFound is returned when a query finds no matching row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrStaleReference is returned when a write points at a row that was
	// deleted after it was resolved (a foreign key violation).
	ErrStaleReference = errors.New("referenced record no longer exists")
)

// BookRepository is the persistence contract for books.
type BookRepository interface {
	Insert(ctx context.Context, book *Book) error
	Get(ctx context.Context, id int64) (*Book, error)
	GetAll(ctx context.Context) ([]*Book, error)
	GetPage(ctx context.Context, filters Filters) ([]*Book, Metadata, error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id int64) error
}

// AuthorRepository is the persistence contract for authors.
//
// Insert and Update (with syncBooks set) write the author's Books as the
// complete set of books pointing at it, in the same unit of work as the
// author row itself.
type AuthorRepository interface {
	Insert(ctx context.Context, author *Author) error
	Get(ctx context.Context, id int64) (*Author, error)
	GetPage(ctx context.Context, filters Filters) ([]*Author, Metadata, error)
	Update(ctx context.Context, author *Author, syncBooks bool) error
	Delete(ctx context.Context, id int64) error
}

// Models is a top-level container that groups all repositories together.
// It is passed around the application via applicationDependencies so every handler
// has access to storage without importing sql directly.
type Models struct {
	Books   BookRepository
	Authors AuthorRepository
}

// NewModels constructs a Models value backed by the given PostgreSQL connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sql.DB) Models {
	return Models{
		Books:   BookModel{DB: db},
		Authors: AuthorModel{DB: db},
	}
}

// NewMemoryModels constructs a Models value backed by process memory. Both
// repositories share one store so book/author references stay consistent.
func NewMemoryModels() Models {
	store := newMemoryStore()
	return Models{
		Books:   memoryBookModel{store: store},
		Authors: memoryAuthorModel{store: store},
	}
}

// Filters holds pagination parameters extracted from URL query strings.
type Filters struct {
	Page     int // Current page number (1-indexed)
	PageSize int // Number of records per page
}

// limit returns the SQL LIMIT value derived from PageSize.
func (f Filters) limit() int { return f.PageSize }

// offset returns the number of rows before the requested page. It saturates
// at math.MaxInt when (Page-1)*PageSize does not fit in an int, which places
// the page past the end of any table.
func (f Filters) offset() int {
	if f.Page < 2 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// Metadata describes where a page sits in the full result set. The handlers
// expose it as response headers.
type Metadata struct {
	CurrentPage  int
	PageSize     int
	LastPage     int // 0 when there are no records
	TotalRecords int
}

// calculateMetadata computes page metadata from the total record count and
// the requested page.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	meta := Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		TotalRecords: totalRecords,
	}
	if pageSize > 0 {
		meta.LastPage = totalRecords / pageSize
		if totalRecords%pageSize != 0 {
			meta.LastPage++
		}
	}
	return meta
}

// pageBounds converts filters into slice bounds over total items. An offset
// at or beyond total yields an empty range.
func pageBounds(filters Filters, total int) (start, end int) {
	start = filters.offset()
	if start >= total {
		return total, total
	}
	if filters.limit() >= total-start {
		return start, total
	}
	return start, start + filters.limit()
}
