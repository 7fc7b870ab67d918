// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	logRequest → recoverPanic → rateLimit → authenticate → router
//
// Current endpoints:
//
//	GET    /api/healthcheck   – service status
//	GET    /api/books         – list every book
//	GET    /api/bookspages    – list one page of books (?page=&limit=)
//	GET    /api/books/:id     – retrieve a single book by ID
//	POST   /api/books         – create a new book (admin)
//	PUT    /api/books/:id     – update an existing book
//	DELETE /api/books/:id     – delete a book by ID (admin)
//	GET    /api/authorspages  – list one page of authors (?page=&limit=)
//	GET    /api/authors/:id   – retrieve a single author by ID
//	POST   /api/authors       – create a new author (admin)
//	PUT    /api/authors/:id   – update an existing author
//	DELETE /api/authors/:id   – delete an author by ID (admin)
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/api/healthcheck", app.healthcheckHandler)

	// Book routes
	router.HandlerFunc(http.MethodGet, "/api/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/api/bookspages", app.listBooksPageHandler)
	router.HandlerFunc(http.MethodGet, "/api/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPost, "/api/books", app.requireAdmin(app.createBookHandler))
	router.HandlerFunc(http.MethodPut, "/api/books/:id", app.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/api/books/:id", app.requireAdmin(app.deleteBookHandler))

	// Author routes
	router.HandlerFunc(http.MethodGet, "/api/authorspages", app.listAuthorsPageHandler)
	router.HandlerFunc(http.MethodGet, "/api/authors/:id", app.showAuthorHandler)
	router.HandlerFunc(http.MethodPost, "/api/authors", app.requireAdmin(app.createAuthorHandler))
	router.HandlerFunc(http.MethodPut, "/api/authors/:id", app.updateAuthorHandler)
	router.HandlerFunc(http.MethodDelete, "/api/authors/:id", app.requireAdmin(app.deleteAuthorHandler))

	// logRequest is outermost so it records the status recoverPanic writes.
	return app.logRequest(app.recoverPanic(app.rateLimit(app.authenticate(router))))
}
