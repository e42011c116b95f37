package data

import (
	"context"
	"sync"
)

// MemoryStore keeps books in a slice for the lifetime of the process.
// Books handed in or out are copied, so callers never share a record with
// the store.
type MemoryStore struct {
	mu    sync.RWMutex
	books []*Book
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds a copy of book at the end of the collection.
func (s *MemoryStore) Append(_ context.Context, book *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findIndex(book.ID) != -1 {
		return ErrDuplicateID
	}
	s.books = append(s.books, clone(book))
	return nil
}

// Find returns a copy of the first book whose id matches.
func (s *MemoryStore) Find(_ context.Context, id string) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findIndex(id)
	if i == -1 {
		return nil, ErrRecordNotFound
	}
	return clone(s.books[i]), nil
}

// Replace overwrites the stored book sharing book's id, keeping its position.
func (s *MemoryStore) Replace(_ context.Context, book *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findIndex(book.ID)
	if i == -1 {
		return ErrRecordNotFound
	}
	s.books[i] = clone(book)
	return nil
}

// Remove deletes the book with the given id.
func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findIndex(id)
	if i == -1 {
		return ErrRecordNotFound
	}
	s.removeAt(i)
	return nil
}

// Snapshot returns copies of every book in insertion order.
func (s *MemoryStore) Snapshot(_ context.Context) ([]*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*Book, len(s.books))
	for i, b := range s.books {
		books[i] = clone(b)
	}
	return books, nil
}

// Len returns the number of stored books.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// findIndex returns the position of the first book with the given id, or -1.
// The caller must hold s.mu.
func (s *MemoryStore) findIndex(id string) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// removeAt deletes the book at position i, shifting later books down.
// The caller must hold s.mu for writing.
func (s *MemoryStore) removeAt(i int) {
	copy(s.books[i:], s.books[i+1:])
	s.books[len(s.books)-1] = nil
	s.books = s.books[:len(s.books)-1]
}

// clone copies a book. Free-form field values are shared; nothing mutates them.
func clone(b *Book) *Book {
	c := *b
	return &c
}
