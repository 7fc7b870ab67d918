// cmd/api/authors.go
// This file contains all HTTP request handlers for the authors resource.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/data"
	"github.com/aoideee/bookshelf-api/internal/validator"
)

// fetchAuthor resolves the :id parameter to a stored author. When it returns
// false a 404 or 500 response has already been written.
func (app *applicationDependencies) fetchAuthor(w http.ResponseWriter, r *http.Request) (*data.Author, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, false
	}

	author, err := app.models.Authors.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return author, true
}

// associateBooks adds every book in ids that exists to author, setting both
// sides of the relationship. Unknown ids are skipped.
func (app *applicationDependencies) associateBooks(ctx context.Context, author *data.Author, ids []int64) error {
	for _, id := range ids {
		book, err := app.models.Books.Get(ctx, id)
		if err != nil {
			if errors.Is(err, data.ErrRecordNotFound) {
				continue
			}
			return err
		}
		author.AddBook(book)
	}
	return nil
}

// listAuthorsPageHandler handles GET /api/authorspages?page=&limit=.
func (app *applicationDependencies) listAuthorsPageHandler(w http.ResponseWriter, r *http.Request) {
	filters := app.readFilters(r.URL.Query())

	authors, metadata, err := app.models.Authors.GetPage(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, data.NewAuthorDetails(authors), pageHeaders(metadata))
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showAuthorHandler handles GET /api/authors/:id.
func (app *applicationDependencies) showAuthorHandler(w http.ResponseWriter, r *http.Request) {
	author, ok := app.fetchAuthor(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, data.NewAuthorDetail(author), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createAuthorHandler handles POST /api/authors.
// Each resolvable id in idBooks is moved to the new author; the author row
// and the book links are written together.
func (app *applicationDependencies) createAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateAuthorInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	author := &data.Author{
		Firstname: input.Firstname,
		Lastname:  input.Lastname,
	}

	v := validator.New()
	if data.ValidateAuthor(v, author); !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	err = app.associateBooks(r.Context(), author, input.IDBooks)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.models.Authors.Insert(r.Context(), author)
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
	headers.Set("Location", app.resourceURL(r, fmt.Sprintf("/api/authors/%d", author.ID)))

	err = app.writeJSON(w, http.StatusCreated, data.NewAuthorDetail(author), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateAuthorHandler handles PUT /api/authors/:id.
// Present fields are merged onto the stored author. When idBooks is present
// it replaces the author's book set; the merged author is what gets saved
// and returned.
func (app *applicationDependencies) updateAuthorHandler(w http.ResponseWriter, r *http.Request) {
	author, ok := app.fetchAuthor(w, r)
	if !ok {
		return
	}

	var input data.UpdateAuthorInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input.Merge(author)

	v := validator.New()
	if data.ValidateAuthor(v, author); !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	syncBooks := input.IDBooks != nil
	if syncBooks {
		author.ClearBooks()
		err = app.associateBooks(r.Context(), author, input.IDBooks)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	err = app.models.Authors.Update(r.Context(), author, syncBooks)
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

	err = app.writeJSON(w, http.StatusOK, data.NewAuthorDetail(author), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteAuthorHandler handles DELETE /api/authors/:id.
// The author's books are kept and lose their author reference.
func (app *applicationDependencies) deleteAuthorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Authors.Delete(r.Context(), id)
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
