// cmd/api/handlers.go
// This file contains all HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger and book models.
package main

import (
	"fmt"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/data"
)

// healthcheckHandler handles GET /healthcheck.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	body := envelope{
		"status": "success",
		"data": envelope{
			"environment": app.config.Environment,
			"storage":     app.config.Storage,
			"version":     appVersion,
		},
	}

	err := app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /books.
// It reads the book payload, stores a new record and responds 201 with
// the generated id.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.BookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Insert(r.Context(), &input)
	if err != nil {
		app.bookErrorResponse(w, r, err, msgCreateFailed, msgInsertFailed)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/books/%s", book.ID))

	body := envelope{
		"status":  "success",
		"message": "Buku berhasil ditambahkan",
		"data":    envelope{"bookId": book.ID},
	}

	err = app.writeJSON(w, http.StatusCreated, body, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /books.
// The optional name, reading and finished query parameters narrow the
// listing; each book is returned as {id, name, publisher}.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filters := data.Filters{
		Name:     app.readString(qs, "name", ""),
		Reading:  app.readFlag(qs, "reading"),
		Finished: app.readFlag(qs, "finished"),
	}

	books, err := app.models.Books.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	body := envelope{
		"status": "success",
		"data":   envelope{"books": books},
	}

	err = app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /books/:bookId.
// Responds 404 if no book with that id exists.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readBookIDParam(r)

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		app.bookErrorResponse(w, r, err, "", msgBookNotFound)
		return
	}

	body := envelope{
		"status": "success",
		"data":   envelope{"book": book},
	}

	err = app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PUT /books/:bookId.
// Every mutable field is replaced by the payload. Responds 404 if the book
// does not exist and 400 if the payload fails validation.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readBookIDParam(r)

	var input data.BookInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	_, err = app.models.Books.Update(r.Context(), id, &input)
	if err != nil {
		app.bookErrorResponse(w, r, err, msgUpdateFailed, msgUpdateNotFound)
		return
	}

	body := envelope{
		"status":  "success",
		"message": "Buku berhasil diperbarui",
	}

	err = app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /books/:bookId.
// Responds 404 if no book with that id exists.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readBookIDParam(r)

	err := app.models.Books.Delete(r.Context(), id)
	if err != nil {
		app.bookErrorResponse(w, r, err, "", msgDeleteNotFound)
		return
	}

	body := envelope{
		"status":  "success",
		"message": "Buku berhasil dihapus",
	}

	err = app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
