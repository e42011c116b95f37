// cmd/api/errors.go
// This file contains all error-response helpers for the application.
// Every error body has the shape {"status": "fail", "message": ...}.
package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/data"
	"github.com/aoideee/bookshelf-api/internal/validator"
)

// Client-facing messages for the book endpoints.
const (
	msgCreateFailed     = "Gagal menambahkan buku"
	msgUpdateFailed     = "Gagal memperbarui buku"
	msgMissingName      = "Mohon isi nama buku"
	msgReadPageExceeded = "readPage tidak boleh lebih besar dari pageCount"
	msgBookNotFound     = "Buku tidak ditemukan"
	msgUpdateNotFound   = "Gagal memperbarui buku. Id tidak ditemukan"
	msgDeleteNotFound   = "Buku gagal dihapus. Id tidak ditemukan"
	msgInsertFailed     = "Buku gagal ditambahkan"
)

// logError logs an internal error at ERROR level with the request method and URL for context.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
	)
}

// errorResponse sends a JSON failure envelope with the given status code and message.
// It is the low-level building block used by all the specific error helpers below.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	body := envelope{"status": "fail", "message": message}
	err := app.writeJSON(w, status, body, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs a 500-level error and sends a generic message to the client.
// Internal error details are never exposed to the client.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// notFoundResponse sends a 404 Not Found error for unknown routes.
func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

// methodNotAllowedResponse sends a 405 Method Not Allowed error.
func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse sends a 400 Bad Request error with the error message from the caller.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// rateLimitExceededResponse sends a 429 Too Many Requests error.
func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// bookErrorResponse translates an error from a book operation into a
// response. action prefixes validation messages and notFound is the 404
// message for the endpoint.
func (app *applicationDependencies) bookErrorResponse(w http.ResponseWriter, r *http.Request, err error, action, notFound string) {
	var verr *validator.Error

	switch {
	case errors.As(err, &verr):
		app.errorResponse(w, r, http.StatusBadRequest, action+". "+validationMessage(verr))
	case errors.Is(err, data.ErrRecordNotFound):
		app.errorResponse(w, r, http.StatusNotFound, notFound)
	case errors.Is(err, data.ErrInsertNotConfirmed):
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusInternalServerError, msgInsertFailed)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

// validationMessage returns the client message for a failed book check.
func validationMessage(verr *validator.Error) string {
	switch verr.Field {
	case "name":
		return msgMissingName
	case "readPage":
		return msgReadPageExceeded
	default:
		return verr.Message
	}
}
