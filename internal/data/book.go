// Package data provides the data models and database interaction logic
// for the bookshelf API.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

// Book represents a single book record. It maps to a row in the "books"
// table; Author is resolved from the author_id foreign key.
type Book struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title" validate:"notblank,max=255"`
	Description string  `json:"description" validate:"notblank"`
	Author      *Author `json:"-" validate:"-"` // nil when the book has no author
}

// authorID returns the foreign key value to store for the book.
func (b *Book) authorID() sql.NullInt64 {
	if b.Author == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: b.Author.ID, Valid: true}
}

// ValidateBook records every constraint violation on book.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Struct(book)
}

// NoAuthor is the idAuthor value meaning "do not attach an author".
const NoAuthor int64 = -1

// CreateBookInput holds the fields a client supplies when creating a book.
// IDAuthor is not a Book field; the handler resolves it to an Author.
type CreateBookInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IDAuthor    int64  `json:"idAuthor"`
}

// NewCreateBookInput returns an input with IDAuthor preset to NoAuthor so an
// omitted idAuthor decodes as "no author".
func NewCreateBookInput() CreateBookInput {
	return CreateBookInput{IDAuthor: NoAuthor}
}

// UpdateBookInput holds the fields a client may supply when updating a book.
// Every field is a pointer so we can distinguish between "not provided" (nil)
// and "intentionally set to zero/empty". Only non-nil fields are applied.
//
// ID and Author accept the read-only members of a BookDetail so a client can
// send back what it fetched; they are never applied.
type UpdateBookInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	IDAuthor    *int64          `json:"idAuthor"`
	ID          *int64          `json:"id"`
	Author      json.RawMessage `json:"author"`
}

// Merge copies the provided scalar fields onto book and leaves the rest as
// they are. The author reference is resolved separately by the caller.
func (in UpdateBookInput) Merge(book *Book) {
	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
}

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting book records.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

const selectBooks = `
	SELECT b.book_id, b.title, b.description, a.author_id, a.firstname, a.lastname
	FROM books b
	LEFT JOIN authors a ON a.author_id = b.author_id`

// Insert adds a new book record to the database and writes the
// database-assigned book_id back into the book struct.
func (m BookModel) Insert(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (title, description, author_id)
		VALUES ($1, $2, $3)
		RETURNING book_id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, book.Title, book.Description, book.authorID()).Scan(&book.ID)
	return translateError(err)
}

// Get retrieves a single book, with its author, by primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	book, err := scanBook(m.DB.QueryRowContext(ctx, selectBooks+` WHERE b.book_id = $1`, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// GetAll retrieves every book ordered by primary key.
func (m BookModel) GetAll(ctx context.Context) ([]*Book, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, selectBooks+` ORDER BY b.book_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBooks(rows)
}

// GetPage retrieves one page of books ordered by primary key, along with
// pagination Metadata computed from the total row count.
func (m BookModel) GetPage(ctx context.Context, filters Filters) ([]*Book, Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var totalRecords int
	err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM books`).Scan(&totalRecords)
	if err != nil {
		return nil, Metadata{}, err
	}

	rows, err := m.DB.QueryContext(ctx, selectBooks+`
		ORDER BY b.book_id ASC
		LIMIT $1 OFFSET $2`, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, Metadata{}, err
	}

	return books, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Update saves title, description and author of book back to the database.
// Returns ErrRecordNotFound if the row was deleted in the meantime.
func (m BookModel) Update(ctx context.Context, book *Book) error {
	query := `
		UPDATE books
		SET title = $1, description = $2, author_id = $3
		WHERE book_id = $4`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, book.Title, book.Description, book.authorID(), book.ID)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(result)
}

// Delete removes the book with the given id from the database.
// Returns ErrRecordNotFound if no matching record exists.
func (m BookModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM books WHERE book_id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}
