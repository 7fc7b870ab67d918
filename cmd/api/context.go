// cmd/api/context.go
package main

import (
	"context"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/auth"
)

type contextKey string

const claimsContextKey = contextKey("claims")

// contextSetClaims returns a copy of r carrying the verified token claims.
func (app *applicationDependencies) contextSetClaims(r *http.Request, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), claimsContextKey, claims)
	return r.WithContext(ctx)
}

// contextGetClaims returns the caller's claims, or nil for an anonymous request.
func (app *applicationDependencies) contextGetClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsContextKey).(*auth.Claims)
	return claims
}
