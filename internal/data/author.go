// internal/data/author.go
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

// Author represents a single author record. Books is the inverse side of the
// books.author_id foreign key, ordered by book id.
type Author struct {
	ID        int64   `json:"id"`
	Firstname string  `json:"firstname" validate:"notblank,max=255"`
	Lastname  string  `json:"lastname" validate:"notblank,max=255"`
	Books     []*Book `json:"-" validate:"-"`
}

// AddBook associates book with a, updating both sides of the relationship.
// A book that belonged to another author is detached from it first.
func (a *Author) AddBook(book *Book) {
	if prev := book.Author; prev != nil && prev != a {
		prev.removeBook(book)
	}
	book.Author = a

	for _, b := range a.Books {
		if b == book || (book.ID != 0 && b.ID == book.ID) {
			return
		}
	}
	a.Books = append(a.Books, book)
}

// ClearBooks detaches every book from a.
func (a *Author) ClearBooks() {
	for _, b := range a.Books {
		if b.Author == a {
			b.Author = nil
		}
	}
	a.Books = nil
}

func (a *Author) removeBook(book *Book) {
	for i, b := range a.Books {
		if b == book {
			a.Books = append(a.Books[:i], a.Books[i+1:]...)
			return
		}
	}
}

// BookIDs returns the ids of the associated books in order.
func (a *Author) BookIDs() []int64 {
	ids := make([]int64, 0, len(a.Books))
	for _, b := range a.Books {
		ids = append(ids, b.ID)
	}
	return ids
}

// ValidateAuthor records every constraint violation on author.
func ValidateAuthor(v *validator.Validator, author *Author) {
	v.Struct(author)
}

// CreateAuthorInput holds the fields a client supplies when creating an author.
type CreateAuthorInput struct {
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	IDBooks   []int64 `json:"idBooks"`
}

// UpdateAuthorInput holds the fields a client may supply when updating an
// author. A nil IDBooks (absent or null) leaves the book set untouched; an
// empty array detaches every book.
//
// ID and Books accept the read-only members of an AuthorDetail; they are
// never applied. Only idBooks changes the book set.
type UpdateAuthorInput struct {
	Firstname *string         `json:"firstname"`
	Lastname  *string         `json:"lastname"`
	IDBooks   []int64         `json:"idBooks"`
	ID        *int64          `json:"id"`
	Books     json.RawMessage `json:"books"`
}

// Merge copies the provided scalar fields onto author.
func (in UpdateAuthorInput) Merge(author *Author) {
	if in.Firstname != nil {
		author.Firstname = *in.Firstname
	}
	if in.Lastname != nil {
		author.Lastname = *in.Lastname
	}
}

// AuthorModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting author records.
type AuthorModel struct {
	DB *sql.DB
}

// Insert adds the author and points every book in author.Books at it, in one
// transaction. The new author_id is written back into the struct.
func (m AuthorModel) Insert(ctx context.Context, author *Author) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // No-op once the transaction has been committed.

	query := `
		INSERT INTO authors (firstname, lastname)
		VALUES ($1, $2)
		RETURNING author_id`

	err = tx.QueryRowContext(ctx, query, author.Firstname, author.Lastname).Scan(&author.ID)
	if err != nil {
		return err
	}

	if ids := author.BookIDs(); len(ids) > 0 {
		_, err = tx.ExecContext(ctx, `UPDATE books SET author_id = $1 WHERE book_id = ANY($2)`, author.ID, pq.Array(ids))
		if err != nil {
			return translateError(err)
		}
	}

	return tx.Commit()
}

// Get retrieves a single author, with its books, by primary key.
// Returns ErrRecordNotFound if no author with the given id exists.
func (m AuthorModel) Get(ctx context.Context, id int64) (*Author, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var author Author
	err := m.DB.QueryRowContext(ctx,
		`SELECT author_id, firstname, lastname FROM authors WHERE author_id = $1`, id,
	).Scan(&author.ID, &author.Firstname, &author.Lastname)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	if err := m.attachBooks(ctx, []*Author{&author}); err != nil {
		return nil, err
	}
	return &author, nil
}

// GetPage retrieves one page of authors ordered by primary key, each with
// its books loaded.
func (m AuthorModel) GetPage(ctx context.Context, filters Filters) ([]*Author, Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var totalRecords int
	err := m.DB.QueryRowContext(ctx, `SELECT count(*) FROM authors`).Scan(&totalRecords)
	if err != nil {
		return nil, Metadata{}, err
	}

	rows, err := m.DB.QueryContext(ctx, `
		SELECT author_id, firstname, lastname
		FROM authors
		ORDER BY author_id ASC
		LIMIT $1 OFFSET $2`, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	authors := []*Author{}
	for rows.Next() {
		var author Author
		if err := rows.Scan(&author.ID, &author.Firstname, &author.Lastname); err != nil {
			return nil, Metadata{}, err
		}
		authors = append(authors, &author)
	}
	if err := rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	if err := m.attachBooks(ctx, authors); err != nil {
		return nil, Metadata{}, err
	}

	return authors, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// attachBooks loads the books of every author in a single query.
func (m AuthorModel) attachBooks(ctx context.Context, authors []*Author) error {
	if len(authors) == 0 {
		return nil
	}

	byID := make(map[int64]*Author, len(authors))
	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	rows, err := m.DB.QueryContext(ctx, `
		SELECT book_id, title, description, author_id
		FROM books
		WHERE author_id = ANY($1)
		ORDER BY book_id ASC`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			book     Book
			authorID int64
		)
		if err := rows.Scan(&book.ID, &book.Title, &book.Description, &authorID); err != nil {
			return err
		}
		if author, ok := byID[authorID]; ok {
			author.AddBook(&book)
		}
	}
	return rows.Err()
}

// Update saves the author's names. When syncBooks is set, author.Books
// becomes the exact set of books pointing at the author: books missing from
// it are detached. Both steps run in one transaction.
func (m AuthorModel) Update(ctx context.Context, author *Author, syncBooks bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE authors SET firstname = $1, lastname = $2 WHERE author_id = $3`,
		author.Firstname, author.Lastname, author.ID)
	if err != nil {
		return err
	}
	if err := expectAffected(result); err != nil {
		return err
	}

	if syncBooks {
		ids := pq.Array(author.BookIDs())

		_, err = tx.ExecContext(ctx,
			`UPDATE books SET author_id = NULL WHERE author_id = $1 AND NOT (book_id = ANY($2))`,
			author.ID, ids)
		if err != nil {
			return err
		}

		if len(author.Books) > 0 {
			_, err = tx.ExecContext(ctx, `UPDATE books SET author_id = $1 WHERE book_id = ANY($2)`, author.ID, ids)
			if err != nil {
				return translateError(err)
			}
		}
	}

	return tx.Commit()
}

// Delete removes the author with the given id. Its books are kept; the
// schema nulls their author_id.
func (m AuthorModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM authors WHERE author_id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}
