package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestModel(store Store) *BookModel {
	m := NewBookModel(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := &testClock{now: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
	m.Now = clock.Now
	seq := 0
	m.NewID = func() string {
		seq++
		return fmt.Sprintf("book-%d", seq)
	}
	return m
}

func validationField(t *testing.T, err error) string {
	t.Helper()
	var verr *validator.Error
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *validator.Error", err)
	}
	return verr.Field
}

func TestBookModel_InsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(NewMemoryStore())

	created, err := m.Insert(ctx, &BookInput{Name: "A", PageCount: 100, ReadPage: 100})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := m.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Finished {
		t.Error("Finished = false, want true")
	}
	if !got.InsertedAt.Equal(got.UpdatedAt) {
		t.Errorf("InsertedAt = %v, UpdatedAt = %v, want equal", got.InsertedAt, got.UpdatedAt)
	}
}

func TestBookModel_InsertValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     BookInput
		wantField string
	}{
		{"missing name", BookInput{PageCount: 10, ReadPage: 1}, "name"},
		{"read page exceeds page count", BookInput{Name: "A", PageCount: 10, ReadPage: 11}, "readPage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			m := newTestModel(store)

			_, err := m.Insert(context.Background(), &tt.input)
			if got := validationField(t, err); got != tt.wantField {
				t.Errorf("Field = %q, want %q", got, tt.wantField)
			}
			if store.Len() != 0 {
				t.Errorf("store Len() = %d, want 0", store.Len())
			}
		})
	}
}

type lossyStore struct {
	*MemoryStore
}

func (lossyStore) Append(context.Context, *Book) error { return nil }

func TestBookModel_InsertNotConfirmed(t *testing.T) {
	m := newTestModel(lossyStore{NewMemoryStore()})

	_, err := m.Insert(context.Background(), &BookInput{Name: "A"})
	if !errors.Is(err, ErrInsertNotConfirmed) {
		t.Errorf("Insert() error = %v, want ErrInsertNotConfirmed", err)
	}
}

func TestBookModel_GetAll(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(NewMemoryStore())

	inputs := []BookInput{
		{Name: "Dune", Publisher: "Chilton", PageCount: 10, ReadPage: 10, Reading: false},
		{Name: "Children of DUNE", Publisher: "Putnam", PageCount: 10, ReadPage: 2, Reading: true},
		{Name: "Foundation", Publisher: "Gnome", PageCount: 10, ReadPage: 0, Reading: true},
	}
	for i := range inputs {
		if _, err := m.Insert(ctx, &inputs[i]); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"no filters", Filters{}, []string{"book-1", "book-2", "book-3"}},
		{"name", Filters{Name: "dune"}, []string{"book-1", "book-2"}},
		{"reading", Filters{Reading: boolPtr(true)}, []string{"book-2", "book-3"}},
		{"not reading", Filters{Reading: boolPtr(false)}, []string{"book-1"}},
		{"finished", Filters{Finished: boolPtr(true)}, []string{"book-1"}},
		{"unfinished", Filters{Finished: boolPtr(false)}, []string{"book-2", "book-3"}},
		{"composed", Filters{Name: "dune", Reading: boolPtr(true)}, []string{"book-2"}},
		{"nothing", Filters{Name: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.GetAll(ctx, tt.filters)
			if err != nil {
				t.Fatalf("GetAll() error = %v", err)
			}
			if got == nil {
				t.Fatal("GetAll() returned nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("GetAll() length = %d, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}

	all, _ := m.GetAll(ctx, Filters{})
	if all[0].Publisher != "Chilton" || all[0].Name != "Dune" {
		t.Errorf("projection = %+v, want Dune/Chilton", all[0])
	}
}

func TestBookModel_Update(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(NewMemoryStore())

	created, _ := m.Insert(ctx, &BookInput{Name: "A", PageCount: 100, ReadPage: 100})

	updated, err := m.Update(ctx, created.ID, &BookInput{Name: "B", PageCount: 100, ReadPage: 40, Reading: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := m.Get(ctx, created.ID)
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}
	if !got.InsertedAt.Equal(created.InsertedAt) {
		t.Errorf("InsertedAt = %v, want %v", got.InsertedAt, created.InsertedAt)
	}
	if !got.UpdatedAt.After(got.InsertedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", got.UpdatedAt, got.InsertedAt)
	}
	if got.Finished {
		t.Error("Finished = true, want false")
	}
	if got.Name != "B" || !got.Reading {
		t.Errorf("fields not replaced: %+v", got)
	}
	if !updated.UpdatedAt.Equal(got.UpdatedAt) {
		t.Errorf("returned UpdatedAt = %v, stored %v", updated.UpdatedAt, got.UpdatedAt)
	}
}

func TestBookModel_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(NewMemoryStore())
	created, _ := m.Insert(ctx, &BookInput{Name: "A", PageCount: 10, ReadPage: 5})

	t.Run("unknown id", func(t *testing.T) {
		_, err := m.Update(ctx, "nope", &BookInput{Name: "B"})
		if !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("Update() error = %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("unknown id with invalid payload", func(t *testing.T) {
		_, err := m.Update(ctx, "nope", &BookInput{})
		if !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("Update() error = %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("invalid payload leaves record unchanged", func(t *testing.T) {
		_, err := m.Update(ctx, created.ID, &BookInput{Name: "B", PageCount: 1, ReadPage: 2})
		if got := validationField(t, err); got != "readPage" {
			t.Errorf("Field = %q, want readPage", got)
		}

		got, _ := m.Get(ctx, created.ID)
		if got.Name != "A" || got.ReadPage != 5 || !got.UpdatedAt.Equal(created.UpdatedAt) {
			t.Errorf("record mutated: %+v", got)
		}
	})
}

func TestBookModel_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestModel(store)

	a, _ := m.Insert(ctx, &BookInput{Name: "A"})
	m.Insert(ctx, &BookInput{Name: "B"})

	if err := m.Delete(ctx, "nope"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Delete(nope) error = %v, want ErrRecordNotFound", err)
	}
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}

	if err := m.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
	if _, err := m.Get(ctx, a.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrRecordNotFound", err)
	}
}

func TestBookModel_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewBookModel(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := m.Insert(ctx, &BookInput{Name: fmt.Sprintf("book %d", i)}); err != nil {
				t.Errorf("Insert() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if store.Len() != 50 {
		t.Errorf("Len() = %d, want 50", store.Len())
	}
}
