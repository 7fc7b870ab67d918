// internal/data/postgres.go
package data

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for a broken foreign key.
const foreignKeyViolation pq.ErrorCode = "23503"

// translateError maps driver errors onto the package's sentinel errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return ErrStaleReference
	}
	return err
}

// expectAffected turns a zero-row write into ErrRecordNotFound.
func expectAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBook reads one row produced by selectBooks.
func scanBook(row rowScanner) (*Book, error) {
	var (
		book      Book
		authorID  sql.NullInt64
		firstname sql.NullString
		lastname  sql.NullString
	)

	err := row.Scan(&book.ID, &book.Title, &book.Description, &authorID, &firstname, &lastname)
	if err != nil {
		return nil, err
	}

	if authorID.Valid {
		book.Author = &Author{
			ID:        authorID.Int64,
			Firstname: firstname.String,
			Lastname:  lastname.String,
		}
	}
	return &book, nil
}

// scanBooks drains rows produced by selectBooks. It always returns a non-nil slice.
func scanBooks(rows *sql.Rows) ([]*Book, error) {
	books := []*Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	// Check for any error that occurred while iterating the rows.
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}
