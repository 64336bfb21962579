package main

import (
	"fmt"
	"net/http"

	"github.com/0xrinful/LibraryCatalog/internal/data"
	"github.com/0xrinful/LibraryCatalog/internal/validator"
)

// bookInput is the request body for create and update. Every field is
// applied; an omitted "available" means true.
type bookInput struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publicationYear"`
	ISBN            string `json:"isbn" validate:"max=64"`
	Genre           string `json:"genre" validate:"max=200"`
	Available       *bool  `json:"available"`
}

func (in bookInput) toBook(id int64) *data.Book {
	available := true
	if in.Available != nil {
		available = *in.Available
	}

	return &data.Book{
		ID:              id,
		Title:           in.Title,
		Author:          in.Author,
		PublicationYear: in.PublicationYear,
		ISBN:            in.ISBN,
		Genre:           in.Genre,
		Available:       available,
	}
}

func (app *application) readBook(w http.ResponseWriter, r *http.Request, id int64) (*data.Book, bool) {
	var input bookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}

	book := input.toBook(id)

	v := validator.New()
	v.Struct(input)
	data.ValidateBook(v, book)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return nil, false
	}

	return book, true
}

func (app *application) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, books, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, book, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) searchBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filter := data.BookFilter{
		Title:  qs.Get("title"),
		Author: qs.Get("author"),
		Genre:  qs.Get("genre"),
	}

	books, err := app.models.Books.Search(r.Context(), filter)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, books, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listAvailableBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAvailable(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, books, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBookHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := app.readBook(w, r, 0)
	if !ok {
		return
	}

	err := app.models.Books.Insert(r.Context(), book)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/books/%d", book.ID))

	err = app.writeJSON(w, http.StatusCreated, book, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	book, ok := app.readBook(w, r, id)
	if !ok {
		return
	}

	err = app.models.Books.Update(r.Context(), book)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, book, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Books.Delete(r.Context(), id)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"deleted": true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
