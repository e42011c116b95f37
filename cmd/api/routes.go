// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router
// wrapped in the middleware chain (outermost first):
//
//	recoverPanic → logRequest → rateLimit → router
//
// Endpoints:
//
//	GET    /healthcheck      – service status
//	POST   /books            – create a new book
//	GET    /books            – list books, filtered by name, reading, finished
//	GET    /books/:bookId    – retrieve a single book
//	PUT    /books/:bookId    – replace a book's fields
//	DELETE /books/:bookId    – delete a book
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodPost, "/books", app.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/books/:bookId", app.showBookHandler)
	router.HandlerFunc(http.MethodPut, "/books/:bookId", app.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/books/:bookId", app.deleteBookHandler)

	return app.recoverPanic(app.logRequest(app.rateLimit(router)))
}
