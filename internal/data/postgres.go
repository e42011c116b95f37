// internal/data/postgres.go
package data

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS books (
		seq         BIGSERIAL,
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		year        JSONB,
		author      JSONB,
		summary     JSONB,
		publisher   JSONB,
		page_count  INTEGER NOT NULL DEFAULT 0,
		read_page   INTEGER NOT NULL DEFAULT 0,
		finished    BOOLEAN NOT NULL DEFAULT FALSE,
		reading     BOOLEAN NOT NULL DEFAULT FALSE,
		inserted_at TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`

const bookColumns = `id, name, year, author, summary, publisher, page_count, read_page, finished, reading, inserted_at, updated_at`

// PostgresStore keeps books in the "books" table. Insertion order is
// tracked by the seq column, which UPDATE never touches.
type PostgresStore struct {
	DB *sql.DB // Shared database connection pool
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// EnsureSchema creates the books table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

// Append inserts a new book row.
func (s *PostgresStore) Append(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.DB.ExecContext(ctx, query,
		book.ID,
		book.Name,
		jsonField{&book.Year},
		jsonField{&book.Author},
		jsonField{&book.Summary},
		jsonField{&book.Publisher},
		book.PageCount,
		book.ReadPage,
		book.Finished,
		book.Reading,
		book.InsertedAt,
		book.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// Find retrieves a single book by id.
// Returns ErrRecordNotFound if no book with the given id exists.
func (s *PostgresStore) Find(ctx context.Context, id string) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// Replace saves every mutable column of book. InsertedAt is never written.
func (s *PostgresStore) Replace(ctx context.Context, book *Book) error {
	query := `
		UPDATE books
		SET name = $1, year = $2, author = $3, summary = $4, publisher = $5,
		    page_count = $6, read_page = $7, finished = $8, reading = $9, updated_at = $10
		WHERE id = $11`

	args := []any{
		book.Name,
		jsonField{&book.Year},
		jsonField{&book.Author},
		jsonField{&book.Summary},
		jsonField{&book.Publisher},
		book.PageCount,
		book.ReadPage,
		book.Finished,
		book.Reading,
		book.UpdatedAt,
		book.ID,
	}

	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Remove deletes the book with the given id.
// Returns ErrRecordNotFound if no matching record exists.
func (s *PostgresStore) Remove(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Snapshot reads every book in insertion order.
func (s *PostgresStore) Snapshot(ctx context.Context) ([]*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY seq ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*Book, error) {
	var book Book
	err := row.Scan(
		&book.ID,
		&book.Name,
		jsonField{&book.Year},
		jsonField{&book.Author},
		jsonField{&book.Summary},
		jsonField{&book.Publisher},
		&book.PageCount,
		&book.ReadPage,
		&book.Finished,
		&book.Reading,
		&book.InsertedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	book.InsertedAt = book.InsertedAt.UTC()
	book.UpdatedAt = book.UpdatedAt.UTC()
	return &book, nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// jsonField stores a free-form book field in a JSONB column. A nil value is
// written as JSON null and a SQL NULL reads back as nil.
type jsonField struct {
	v *any
}

func (f jsonField) Value() (driver.Value, error) {
	js, err := json.Marshal(*f.v)
	if err != nil {
		return nil, err
	}
	return string(js), nil
}

func (f jsonField) Scan(src any) error {
	switch src := src.(type) {
	case nil:
		*f.v = nil
		return nil
	case []byte:
		return json.Unmarshal(src, f.v)
	case string:
		return json.Unmarshal([]byte(src), f.v)
	default:
		return fmt.Errorf("jsonField: unsupported source type %T", src)
	}
}
