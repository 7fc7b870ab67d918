// internal/data/projection.go
// Response shapes. Book and Author reference each other, so each view nests
// only a summary of the other side and never recurses further.
package data

// AuthorSummary is an author as nested inside a book.
type AuthorSummary struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// BookSummary is a book as nested inside an author.
type BookSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BookDetail is the shape returned by every book endpoint.
type BookDetail struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Author      *AuthorSummary `json:"author"`
}

// AuthorDetail is the shape returned by every author endpoint.
type AuthorDetail struct {
	ID        int64         `json:"id"`
	Firstname string        `json:"firstname"`
	Lastname  string        `json:"lastname"`
	Books     []BookSummary `json:"books"`
}

func NewBookDetail(book *Book) BookDetail {
	detail := BookDetail{
		ID:          book.ID,
		Title:       book.Title,
		Description: book.Description,
	}
	if a := book.Author; a != nil {
		detail.Author = &AuthorSummary{ID: a.ID, Firstname: a.Firstname, Lastname: a.Lastname}
	}
	return detail
}

func NewBookDetails(books []*Book) []BookDetail {
	details := make([]BookDetail, 0, len(books))
	for _, b := range books {
		details = append(details, NewBookDetail(b))
	}
	return details
}

func NewAuthorDetail(author *Author) AuthorDetail {
	detail := AuthorDetail{
		ID:        author.ID,
		Firstname: author.Firstname,
		Lastname:  author.Lastname,
		Books:     make([]BookSummary, 0, len(author.Books)),
	}
	for _, b := range author.Books {
		detail.Books = append(detail.Books, BookSummary{ID: b.ID, Title: b.Title, Description: b.Description})
	}
	return detail
}

func NewAuthorDetails(authors []*Author) []AuthorDetail {
	details := make([]AuthorDetail, 0, len(authors))
	for _, a := range authors {
		details = append(details, NewAuthorDetail(a))
	}
	return details
}
