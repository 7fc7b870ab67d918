// cmd/api/books.go
// This file contains all HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger and the repositories.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/data"
	"github.com/aoideee/bookshelf-api/internal/validator"
)

// fetchBook resolves the :id parameter to a stored book. When it returns
// false a 404 or 500 response has already been written.
func (app *applicationDependencies) fetchBook(w http.ResponseWriter, r *http.Request) (*data.Book, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, false
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return book, true
}

// resolveAuthor looks up the author referenced by idAuthor. An id that does
// not resolve yields a nil author and no error.
func (app *applicationDependencies) resolveAuthor(ctx context.Context, id int64) (*data.Author, error) {
	if id < 1 {
		return nil, nil
	}
	author, err := app.models.Authors.Get(ctx, id)
	if errors.Is(err, data.ErrRecordNotFound) {
		return nil, nil
	}
	return author, err
}

// listBooksHandler handles GET /api/books.
// It fetches every book and returns them as a JSON array.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, data.NewBookDetails(books), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksPageHandler handles GET /api/bookspages?page=&limit=.
// A page past the end is an empty array, not an error.
func (app *applicationDependencies) listBooksPageHandler(w http.ResponseWriter, r *http.Request) {
	filters := app.readFilters(r.URL.Query())

	books, metadata, err := app.models.Books.GetPage(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, data.NewBookDetails(books), pageHeaders(metadata))
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /api/books/:id.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := app.fetchBook(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, data.NewBookDetail(book), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /api/books.
// It decodes the new book, validates it, attaches the author named by
// idAuthor when that author exists, and responds 201 with a Location header.
// Nothing is written when validation fails.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	input := data.NewCreateBookInput()

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book := &data.Book{
		Title:       input.Title,
		Description: input.Description,
	}

	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	author, err := app.resolveAuthor(r.Context(), input.IDAuthor)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if author != nil {
		author.AddBook(book)
	}

	err = app.models.Books.Insert(r.Context(), book)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrStaleReference):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	headers := make(http.Header)
	headers.Set("Location", app.resourceURL(r, fmt.Sprintf("/api/books/%d", book.ID)))

	err = app.writeJSON(w, http.StatusCreated, data.NewBookDetail(book), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PUT /api/books/:id.
// Only fields present in the body are applied. A present idAuthor is
// re-resolved (an unknown id clears the author); an absent one keeps it.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := app.fetchBook(w, r)
	if !ok {
		return
	}

	var input data.UpdateBookInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input.Merge(book)

	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	if input.IDAuthor != nil {
		author, err := app.resolveAuthor(r.Context(), *input.IDAuthor)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		book.Author = nil
		if author != nil {
			author.AddBook(book)
		}
	}

	err = app.models.Books.Update(r.Context(), book)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrStaleReference):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, data.NewBookDetail(book), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /api/books/:id.
// It responds 204 with an empty body, or 404 if no book with that ID exists.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Books.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
