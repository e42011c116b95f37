// internal/data/models.go
package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aoideee/bookshelf-api/internal/validator"
	"github.com/google/uuid"
)

var (
	// ErrRecordNotFound is returned when no book matches the requested id.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateID is returned by a Store asked to append an id it already holds.
	ErrDuplicateID = errors.New("duplicate book id")

	// ErrInsertNotConfirmed is returned when a freshly appended book cannot be read back.
	ErrInsertNotConfirmed = errors.New("inserted book could not be confirmed")
)

// Store holds the ordered collection of books. Implementations must keep
// insertion order on Snapshot and keep a replaced book at its position.
type Store interface {
	Append(ctx context.Context, book *Book) error
	Find(ctx context.Context, id string) (*Book, error)
	Replace(ctx context.Context, book *Book) error
	Remove(ctx context.Context, id string) error
	Snapshot(ctx context.Context) ([]*Book, error)
}

// Models is a top-level container that groups all model types together.
// It is passed around the application via applicationDependencies so every
// handler reaches the store through the same operations.
type Models struct {
	Books *BookModel
}

// NewModels constructs a Models value wired up to the given store.
func NewModels(store Store, logger *slog.Logger) Models {
	return Models{
		Books: NewBookModel(store, logger),
	}
}

// BookModel runs the book operations against a Store. Mutating operations
// are serialized by mu; GetAll and Get read the store directly.
type BookModel struct {
	Store  Store
	Now    func() time.Time
	NewID  func() string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewBookModel returns a BookModel using UTC wall-clock time and random UUIDs.
// Timestamps are cut to microseconds, the resolution PostgreSQL keeps.
func NewBookModel(store Store, logger *slog.Logger) *BookModel {
	return &BookModel{
		Store:  store,
		Now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		NewID:  uuid.NewString,
		logger: logger.With("system", "books"),
	}
}

// Insert validates input, stores a new book and returns it.
func (m *BookModel) Insert(ctx context.Context, input *BookInput) (*Book, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	book := newBook(m.NewID(), input, m.Now())
	if err := m.Store.Append(ctx, book); err != nil {
		return nil, fmt.Errorf("append book: %w", err)
	}

	if _, err := m.Store.Find(ctx, book.ID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrInsertNotConfirmed
		}
		return nil, fmt.Errorf("confirm book: %w", err)
	}

	m.logger.Info("book created", "id", book.ID, "name", book.Name)
	return book, nil
}

// GetAll returns the projections of every book matching filters, in
// insertion order. The result is never nil.
func (m *BookModel) GetAll(ctx context.Context, filters Filters) ([]BookSummary, error) {
	books, err := m.Store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot books: %w", err)
	}

	summaries := []BookSummary{}
	for _, b := range books {
		if filters.Match(b) {
			summaries = append(summaries, b.Projection())
		}
	}
	return summaries, nil
}

// Get retrieves a single book by id.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m *BookModel) Get(ctx context.Context, id string) (*Book, error) {
	return m.Store.Find(ctx, id)
}

// Update replaces every mutable field of the book with the given id.
// The lookup happens before validation, so an unknown id always yields
// ErrRecordNotFound.
func (m *BookModel) Update(ctx context.Context, id string, input *BookInput) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, err := m.Store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validate(input); err != nil {
		return nil, err
	}

	book.applyInput(input, m.Now())
	if err := m.Store.Replace(ctx, book); err != nil {
		return nil, err
	}

	m.logger.Info("book updated", "id", book.ID, "name", book.Name)
	return book, nil
}

// Delete removes the book with the given id.
// Returns ErrRecordNotFound if no matching record exists.
func (m *BookModel) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Store.Remove(ctx, id); err != nil {
		return err
	}

	m.logger.Info("book deleted", "id", id)
	return nil
}

func validate(input *BookInput) error {
	v := validator.New()
	ValidateBook(v, input)
	return v.Err()
}
