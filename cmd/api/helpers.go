// cmd/api/helpers.go
// Request parsing and response writing shared by the handlers.
package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/bookshelf-api/internal/data"
)

// Pagination defaults for the *pages routes.
const (
	defaultPage  = 1
	defaultLimit = 3
)

// envelope is the JSON wrapper used for error and status bodies,
// e.g. {"error": "..."}. Resource bodies are written bare.
type envelope map[string]any

// readIDParam returns the positive integer in the ":id" route segment.
func (app *applicationDependencies) readIDParam(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}

// readInt returns qs[key] as an int, or defaultValue when missing or malformed.
func (app *applicationDependencies) readInt(qs url.Values, key string, defaultValue int) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}

// readFilters reads page and limit from the query string. Out-of-range
// values are normalised so the store never sees a negative offset.
func (app *applicationDependencies) readFilters(qs url.Values) data.Filters {
	page := app.readInt(qs, "page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	limit := app.readInt(qs, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	return data.Filters{Page: page, PageSize: limit}
}

// pageHeaders renders pagination metadata for a list response whose body is
// a bare array.
func pageHeaders(m data.Metadata) http.Header {
	headers := make(http.Header)
	headers.Set("X-Total-Count", strconv.Itoa(m.TotalRecords))
	headers.Set("X-Page", strconv.Itoa(m.CurrentPage))
	headers.Set("X-Per-Page", strconv.Itoa(m.PageSize))
	headers.Set("X-Last-Page", strconv.Itoa(m.LastPage))
	return headers
}

// resourceURL returns the absolute URL for path, using the configured base
// URL or, failing that, the scheme and host of r.
func (app *applicationDependencies) resourceURL(r *http.Request, path string) string {
	base := app.config.baseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return strings.TrimRight(base, "/") + path
}

// writeJSON sends payload as indented JSON with the given status and extra headers.
func (app *applicationDependencies) writeJSON(w http.ResponseWriter, status int, payload any, headers http.Header) error {
	js, err := json.MarshalIndent(payload, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readJSON decodes the request body into dst. The body is capped at 1MB and
// must hold exactly one JSON value whose fields all exist on dst.
func (app *applicationDependencies) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("body must not be empty")
		}
		return err
	}

	// Anything after the first value is rejected.
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}
