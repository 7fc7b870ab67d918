// cmd/api/errors.go
// JSON error responses. Every body has the form {"error": ...} except
// validation failures, which carry {"errors": [...]}.
package main

import (
	"log/slog"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

// forbiddenMessage is returned verbatim by the administrator gate.
const forbiddenMessage = "you must be an administrator to access this resource"

// logError records err together with the request that caused it.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
	)
}

// errorResponse writes {"error": message} with status.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	err := app.writeJSON(w, status, envelope{"error": message}, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs err and answers 500 without exposing it.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse answers 400 with err's text, used for undecodable bodies.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// failedValidationResponse sends a 400 Bad Request response containing
// the field-level violations collected by a Validator, ordered by field.
func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, v *validator.Validator) {
	err := app.writeJSON(w, http.StatusBadRequest, envelope{"errors": v.List()}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// editConflictResponse sends a 409 Conflict when a referenced record vanished
// between being resolved and being written.
func (app *applicationDependencies) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusConflict, "a related record was removed while processing your request, please try again")
}

// invalidAuthenticationTokenResponse sends a 401 for a malformed or unverifiable bearer token.
func (app *applicationDependencies) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, "invalid or missing authentication token")
}

// forbiddenResponse sends a 403 with the fixed administrator-gate message.
func (app *applicationDependencies) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, forbiddenMessage)
}

func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}
