package main

import (
	"net/http"
	"strings"

	"github.com/0xrinful/rush"

	"github.com/0xrinful/LibraryCatalog/ui"
)

func (app *application) routes() http.Handler {
	r := rush.New()
	r.NotFound = http.HandlerFunc(app.notFound)
	r.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowed)

	fileServer := http.FileServer(http.FS(ui.Files))
	r.Handle("/static/*", fileServer, "GET")

	r.Get("/healthcheck", app.healthcheck)

	r.Get("/api/books", app.listBooksHandler)
	r.Post("/api/books", app.createBookHandler)
	r.Get("/api/books/search", app.searchBooksHandler)
	r.Get("/api/books/available", app.listAvailableBooksHandler)
	r.Get("/api/books/{id}", app.showBookHandler)
	r.Handle("/api/books/{id}", http.HandlerFunc(app.updateBookHandler), "PUT")
	r.Handle("/api/books/{id}", http.HandlerFunc(app.deleteBookHandler), "DELETE")

	r.Get("/api/users", app.listUsersHandler)
	r.Post("/api/users", app.createUserHandler)
	r.Get("/api/users/{userId}", app.showUserHandler)
	r.Post("/api/users/{userId}/borrow/{bookId}", app.borrowBookHandler)
	r.Post("/api/users/{userId}/return/{bookId}", app.returnBookHandler)

	views := app.session.LoadAndSave

	r.Handle("/", views(http.HandlerFunc(app.home)), "GET")
	r.Handle("/books", views(http.HandlerFunc(app.books)), "GET")
	r.Handle("/users", views(http.HandlerFunc(app.users)), "GET")
	r.Handle("/users/{id}/borrow", views(http.HandlerFunc(app.borrowBookPost)), "POST")
	r.Handle("/users/{id}/return/{bookId}", views(http.HandlerFunc(app.returnBookPost)), "POST")

	return app.recoverPanic(app.assignRequestID(app.logRequest(r)))
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
