package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/bookshelf-api/internal/data"
	"github.com/aoideee/bookshelf-api/internal/validator"
)

func bookIDs(books []data.BookSummary) []int64 {
	ids := []int64{}
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestCreateAuthor_LinksExistingBooks(t *testing.T) {
	c := newTestClient(t)
	book := c.seedBook("Kindred", "Time travel", nil)

	body := fmt.Sprintf(`{"firstname":"Octavia","lastname":"Butler","idBooks":[%d,99]}`, book.ID)
	rr := c.do(http.MethodPost, "/api/authors", body, c.adminToken)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	author := decode[data.AuthorDetail](t, rr)
	assert.Equal(t, "Octavia", author.Firstname)
	assert.Equal(t, []int64{book.ID}, bookIDs(author.Books))
	assert.Equal(t, fmt.Sprintf("http://example.com/api/authors/%d", author.ID), rr.Header().Get("Location"))

	rr = c.do(http.MethodGet, fmt.Sprintf("/api/books/%d", book.ID), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[data.BookDetail](t, rr)
	require.NotNil(t, got.Author)
	assert.Equal(t, author.ID, got.Author.ID)
}

func TestCreateAuthor_MovesBookFromPreviousAuthor(t *testing.T) {
	c := newTestClient(t)
	previous := c.seedAuthor("Old", "Owner")
	book := c.seedBook("T", "D", previous)

	body := fmt.Sprintf(`{"firstname":"New","lastname":"Owner","idBooks":[%d]}`, book.ID)
	rr := c.do(http.MethodPost, "/api/authors", body, c.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = c.do(http.MethodGet, fmt.Sprintf("/api/authors/%d", previous.ID), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[data.AuthorDetail](t, rr).Books)
}

func TestCreateAuthor_Rejected(t *testing.T) {
	c := newTestClient(t)

	rr := c.do(http.MethodPost, "/api/authors", `{"firstname":"A","lastname":"B"}`, c.userToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = c.do(http.MethodPost, "/api/authors", `{"firstname":"A","lastname":"B"}`, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))

	rr = c.do(http.MethodPost, "/api/authors", `{"firstname":" ","lastname":""}`, c.adminToken)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[map[string][]validator.FieldError](t, rr)
	assert.Equal(t, []validator.FieldError{
		{Field: "firstname", Message: "must be provided"},
		{Field: "lastname", Message: "must be provided"},
	}, body["errors"])

	rr = c.do(http.MethodGet, "/api/authorspages", "", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestShowAuthor(t *testing.T) {
	c := newTestClient(t)
	author := c.seedAuthor("Iain", "Banks")
	c.seedBook("Excession", "Outside context", author)
	c.seedBook("Unrelated", "x", nil)

	rr := c.do(http.MethodGet, fmt.Sprintf("/api/authors/%d", author.ID), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		fmt.Sprintf(`{"id":%d,"firstname":"Iain","lastname":"Banks","books":[{"id":1,"title":"Excession","description":"Outside context"}]}`, author.ID),
		rr.Body.String())

	rr = c.do(http.MethodGet, "/api/authors/77", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = c.do(http.MethodGet, "/api/authors/x", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListAuthorsPage(t *testing.T) {
	c := newTestClient(t)
	for i := 1; i <= 5; i++ {
		c.seedAuthor(fmt.Sprintf("First%d", i), "Last")
	}

	rr := c.do(http.MethodGet, "/api/authorspages", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "5", rr.Header().Get("X-Total-Count"))
	assert.Len(t, decode[[]data.AuthorDetail](t, rr), 3)

	rr = c.do(http.MethodGet, "/api/authorspages?page=2&limit=3", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	authors := decode[[]data.AuthorDetail](t, rr)
	require.Len(t, authors, 2)
	assert.Equal(t, "First4", authors[0].Firstname)
	assert.NotNil(t, authors[0].Books)

	rr = c.do(http.MethodGet, "/api/authorspages?page=9", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestUpdateAuthor_KeepsBooksWhenAbsent(t *testing.T) {
	c := newTestClient(t)
	author := c.seedAuthor("Ann", "Leckie")
	book := c.seedBook("Ancillary Justice", "Ships", author)

	rr := c.do(http.MethodPut, fmt.Sprintf("/api/authors/%d", author.ID), `{"lastname":"Leckie-Smith"}`, "")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[data.AuthorDetail](t, rr)
	assert.Equal(t, "Ann", got.Firstname)
	assert.Equal(t, "Leckie-Smith", got.Lastname)
	assert.Equal(t, []int64{book.ID}, bookIDs(got.Books))
}

func TestUpdateAuthor_AcceptsFetchedRepresentation(t *testing.T) {
	c := newTestClient(t)
	author := c.seedAuthor("Ann", "Leckie")
	book := c.seedBook("Ancillary Justice", "Ships", author)
	path := fmt.Sprintf("/api/authors/%d", author.ID)

	body := fmt.Sprintf(`{"id":7,"firstname":"Ann","lastname":"Leckie","books":[{"id":%d,"title":"Other","description":"x"}]}`, book.ID+1)
	rr := c.do(http.MethodPut, path, body, "")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[data.AuthorDetail](t, rr)
	assert.Equal(t, author.ID, got.ID)
	assert.Equal(t, []int64{book.ID}, bookIDs(got.Books))
}

func TestUpdateAuthor_ReplacesBooks(t *testing.T) {
	c := newTestClient(t)
	author := c.seedAuthor("Ted", "Chiang")
	kept := c.seedBook("Story of Your Life", "Heptapods", author)
	dropped := c.seedBook("Exhalation", "Air", author)
	added := c.seedBook("Lifecycle", "Digients", nil)

	body := fmt.Sprintf(`{"idBooks":[%d,%d,500]}`, kept.ID, added.ID)
	rr := c.do(http.MethodPut, fmt.Sprintf("/api/authors/%d", author.ID), body, "")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[data.AuthorDetail](t, rr)
	assert.Equal(t, []int64{kept.ID, added.ID}, bookIDs(got.Books))

	rr = c.do(http.MethodGet, fmt.Sprintf("/api/books/%d", dropped.ID), "", "")
	assert.Nil(t, decode[data.BookDetail](t, rr).Author)

	rr = c.do(http.MethodGet, fmt.Sprintf("/api/authors/%d", author.ID), "", "")
	assert.Equal(t, []int64{kept.ID, added.ID}, bookIDs(decode[data.AuthorDetail](t, rr).Books))

	// An empty list detaches everything.
	rr = c.do(http.MethodPut, fmt.Sprintf("/api/authors/%d", author.ID), `{"idBooks":[]}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[data.AuthorDetail](t, rr).Books)
}

func TestUpdateAuthor_Errors(t *testing.T) {
	c := newTestClient(t)
	author := c.seedAuthor("A", "B")

	rr := c.do(http.MethodPut, "/api/authors/42", `{"firstname":"x"}`, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = c.do(http.MethodPut, fmt.Sprintf("/api/authors/%d", author.ID), `{"firstname":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.do(http.MethodPut, fmt.Sprintf("/api/authors/%d", author.ID), `{"nickname":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteAuthor_KeepsBooks(t *testing.T) {
	c := newTestClient(t)
	author := c.seedAuthor("Gene", "Wolfe")
	book := c.seedBook("Shadow of the Torturer", "Severian", author)
	path := fmt.Sprintf("/api/authors/%d", author.ID)

	rr := c.do(http.MethodDelete, path, "", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = c.do(http.MethodDelete, path, "", c.adminToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = c.do(http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = c.do(http.MethodGet, fmt.Sprintf("/api/books/%d", book.ID), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decode[data.BookDetail](t, rr).Author)
	assert.Equal(t, 1, c.bookCount())
}
