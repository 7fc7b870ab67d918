// internal/data/memory.go
// In-process implementation of the repositories, used when no database DSN
// is configured and by the handler tests. It mirrors the PostgreSQL schema:
// books carry the author_id, deleting an author nulls it.
package data

import (
	"context"
	"sort"
	"sync"
)

type bookRow struct {
	id          int64
	title       string
	description string
	authorID    int64 // 0 means no author
}

type authorRow struct {
	id        int64
	firstname string
	lastname  string
}

// memoryStore holds every row behind one mutex, so each repository call is
// a single unit of work.
type memoryStore struct {
	mu           sync.Mutex
	books        map[int64]bookRow
	authors      map[int64]authorRow
	nextBookID   int64
	nextAuthorID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		books:   make(map[int64]bookRow),
		authors: make(map[int64]authorRow),
	}
}

// The helpers below expect s.mu to be held.

func (s *memoryStore) bookIDs() []int64 {
	ids := make([]int64, 0, len(s.books))
	for id := range s.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *memoryStore) authorIDs() []int64 {
	ids := make([]int64, 0, len(s.authors))
	for id := range s.authors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *memoryStore) book(row bookRow) *Book {
	book := &Book{ID: row.id, Title: row.title, Description: row.description}
	if a, ok := s.authors[row.authorID]; ok {
		book.Author = &Author{ID: a.id, Firstname: a.firstname, Lastname: a.lastname}
	}
	return book
}

func (s *memoryStore) author(row authorRow) *Author {
	author := &Author{ID: row.id, Firstname: row.firstname, Lastname: row.lastname}
	for _, id := range s.bookIDs() {
		if b := s.books[id]; b.authorID == row.id {
			author.AddBook(&Book{ID: b.id, Title: b.title, Description: b.description})
		}
	}
	return author
}

func (s *memoryStore) authorRef(book *Book) (int64, error) {
	if book.Author == nil {
		return 0, nil
	}
	if _, ok := s.authors[book.Author.ID]; !ok {
		return 0, ErrStaleReference
	}
	return book.Author.ID, nil
}

type memoryBookModel struct {
	store *memoryStore
}

func (m memoryBookModel) Insert(ctx context.Context, book *Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	authorID, err := m.store.authorRef(book)
	if err != nil {
		return err
	}

	m.store.nextBookID++
	book.ID = m.store.nextBookID
	m.store.books[book.ID] = bookRow{id: book.ID, title: book.Title, description: book.Description, authorID: authorID}
	return nil
}

func (m memoryBookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	row, ok := m.store.books[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return m.store.book(row), nil
}

func (m memoryBookModel) GetAll(ctx context.Context) ([]*Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	books := []*Book{}
	for _, id := range m.store.bookIDs() {
		books = append(books, m.store.book(m.store.books[id]))
	}
	return books, nil
}

func (m memoryBookModel) GetPage(ctx context.Context, filters Filters) ([]*Book, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	ids := m.store.bookIDs()
	start, end := pageBounds(filters, len(ids))

	books := []*Book{}
	for _, id := range ids[start:end] {
		books = append(books, m.store.book(m.store.books[id]))
	}
	return books, calculateMetadata(len(ids), filters.Page, filters.PageSize), nil
}

func (m memoryBookModel) Update(ctx context.Context, book *Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.books[book.ID]; !ok {
		return ErrRecordNotFound
	}
	authorID, err := m.store.authorRef(book)
	if err != nil {
		return err
	}

	m.store.books[book.ID] = bookRow{id: book.ID, title: book.Title, description: book.Description, authorID: authorID}
	return nil
}

func (m memoryBookModel) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.books[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.store.books, id)
	return nil
}

type memoryAuthorModel struct {
	store *memoryStore
}

// checkBooks fails with ErrStaleReference when any book in author.Books is gone.
func (m memoryAuthorModel) checkBooks(author *Author) error {
	for _, b := range author.Books {
		if _, ok := m.store.books[b.ID]; !ok {
			return ErrStaleReference
		}
	}
	return nil
}

func (m memoryAuthorModel) Insert(ctx context.Context, author *Author) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if err := m.checkBooks(author); err != nil {
		return err
	}

	m.store.nextAuthorID++
	author.ID = m.store.nextAuthorID
	m.store.authors[author.ID] = authorRow{id: author.ID, firstname: author.Firstname, lastname: author.Lastname}

	for _, b := range author.Books {
		row := m.store.books[b.ID]
		row.authorID = author.ID
		m.store.books[b.ID] = row
	}
	return nil
}

func (m memoryAuthorModel) Get(ctx context.Context, id int64) (*Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	row, ok := m.store.authors[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return m.store.author(row), nil
}

func (m memoryAuthorModel) GetPage(ctx context.Context, filters Filters) ([]*Author, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, Metadata{}, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	ids := m.store.authorIDs()
	start, end := pageBounds(filters, len(ids))

	authors := []*Author{}
	for _, id := range ids[start:end] {
		authors = append(authors, m.store.author(m.store.authors[id]))
	}
	return authors, calculateMetadata(len(ids), filters.Page, filters.PageSize), nil
}

func (m memoryAuthorModel) Update(ctx context.Context, author *Author, syncBooks bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.authors[author.ID]; !ok {
		return ErrRecordNotFound
	}
	if syncBooks {
		if err := m.checkBooks(author); err != nil {
			return err
		}
	}

	m.store.authors[author.ID] = authorRow{id: author.ID, firstname: author.Firstname, lastname: author.Lastname}
	if !syncBooks {
		return nil
	}

	keep := make(map[int64]bool, len(author.Books))
	for _, b := range author.Books {
		keep[b.ID] = true
	}
	for id, row := range m.store.books {
		switch {
		case keep[id]:
			row.authorID = author.ID
		case row.authorID == author.ID:
			row.authorID = 0
		default:
			continue
		}
		m.store.books[id] = row
	}
	return nil
}

func (m memoryAuthorModel) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.authors[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.store.authors, id)

	for bookID, row := range m.store.books {
		if row.authorID == id {
			row.authorID = 0
			m.store.books[bookID] = row
		}
	}
	return nil
}
