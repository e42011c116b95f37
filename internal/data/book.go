// Package data provides the book model, the book stores and the operations
// the HTTP layer runs against them.
package data

import (
	"strings"
	"time"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

// Book represents a single book record held by a Store.
type Book struct {
	ID         string    `json:"id"`         // Opaque identifier generated at creation
	Name       string    `json:"name"`       // Title of the book, always non-empty
	Year       any       `json:"year"`       // Free-form, stored as sent
	Author     any       `json:"author"`     // Free-form, stored as sent
	Summary    any       `json:"summary"`    // Free-form, stored as sent
	Publisher  any       `json:"publisher"`  // Free-form, stored as sent
	PageCount  int       `json:"pageCount"`  // Total number of pages
	ReadPage   int       `json:"readPage"`   // Pages read so far, never above PageCount
	Finished   bool      `json:"finished"`   // Derived: ReadPage == PageCount
	Reading    bool      `json:"reading"`    // Whether the owner is currently reading it
	InsertedAt time.Time `json:"insertedAt"` // Set once at creation
	UpdatedAt  time.Time `json:"updatedAt"`  // Refreshed on every update
}

// BookInput holds the fields a client supplies when creating or replacing a book.
// Fields a client may not set (id, finished, timestamps) are absent on purpose.
// Year, Author, Summary and Publisher accept any JSON value; an omitted one
// is kept as null.
type BookInput struct {
	Name      string `json:"name"`
	Year      any  `json:"year"`
	Author    any  `json:"author"`
	Summary   any  `json:"summary"`
	Publisher any  `json:"publisher"`
	PageCount int  `json:"pageCount"`
	ReadPage  int  `json:"readPage"`
	Reading   bool `json:"reading"`
}

// BookSummary is the reduced view of a Book returned by listings.
type BookSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher any    `json:"publisher"`
}

// Filters narrows a listing. A zero value matches every book; nil boolean
// fields and an empty Name are not applied.
type Filters struct {
	Name     string // Case-insensitive substring of the book name
	Reading  *bool
	Finished *bool
}

// Validation failure reasons.
const (
	MsgMissingName      = "missing name"
	MsgReadPageExceeded = "readPage exceeds pageCount"
)

// ValidateBook runs the payload rules shared by create and update.
func ValidateBook(v *validator.Validator, input *BookInput) {
	v.Check(input.Name != "", "name", MsgMissingName)
	v.Check(input.ReadPage <= input.PageCount, "readPage", MsgReadPageExceeded)
}

// newBook builds a fresh record from input. It is one of the two places
// where Finished is derived.
func newBook(id string, input *BookInput, now time.Time) *Book {
	book := &Book{
		ID:         id,
		InsertedAt: now,
	}
	book.applyInput(input, now)
	return book
}

// applyInput replaces every mutable field and rederives Finished.
func (b *Book) applyInput(input *BookInput, now time.Time) {
	b.Name = input.Name
	b.Year = input.Year
	b.Author = input.Author
	b.Summary = input.Summary
	b.Publisher = input.Publisher
	b.PageCount = input.PageCount
	b.ReadPage = input.ReadPage
	b.Reading = input.Reading
	b.Finished = input.PageCount == input.ReadPage
	b.UpdatedAt = now
}

// Projection returns the listing view of the book.
func (b *Book) Projection() BookSummary {
	return BookSummary{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}

// Match reports whether book satisfies every filter that is set.
func (f Filters) Match(book *Book) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(book.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Reading != nil && book.Reading != *f.Reading {
		return false
	}
	if f.Finished != nil && book.Finished != *f.Finished {
		return false
	}
	return true
}
