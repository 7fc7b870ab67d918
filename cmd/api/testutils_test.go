package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aoideee/bookshelf-api/internal/auth"
	"github.com/aoideee/bookshelf-api/internal/data"
)

// testClient drives the full router against an in-memory store.
type testClient struct {
	t          *testing.T
	app        *applicationDependencies
	handler    http.Handler
	adminToken string
	userToken  string
}

func newTestApplication(t *testing.T) *applicationDependencies {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret", auth.DefaultIssuer)
	require.NoError(t, err)

	app := &applicationDependencies{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.NewMemoryModels(),
		tokens: tokens,
	}
	app.config.environment = "development"
	return app
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	app := newTestApplication(t)

	admin, err := app.tokens.Issue("admin", []string{auth.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	user, err := app.tokens.Issue("reader", []string{auth.RoleUser}, time.Hour)
	require.NoError(t, err)

	return &testClient{t: t, app: app, handler: app.routes(), adminToken: admin, userToken: user}
}

func (c *testClient) do(method, path, body, token string) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	return rr
}

func (c *testClient) seedAuthor(firstname, lastname string) *data.Author {
	c.t.Helper()
	a := &data.Author{Firstname: firstname, Lastname: lastname}
	require.NoError(c.t, c.app.models.Authors.Insert(context.Background(), a))
	return a
}

func (c *testClient) seedBook(title, description string, author *data.Author) *data.Book {
	c.t.Helper()
	b := &data.Book{Title: title, Description: description}
	if author != nil {
		author.AddBook(b)
	}
	require.NoError(c.t, c.app.models.Books.Insert(context.Background(), b))
	return b
}

func (c *testClient) bookCount() int {
	c.t.Helper()
	books, err := c.app.models.Books.GetAll(context.Background())
	require.NoError(c.t, err)
	return len(books)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
