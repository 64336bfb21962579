package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/0xrinful/LibraryCatalog/internal/data"
)

func (app *application) healthcheck(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.env,
			"version":     version,
		},
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAll(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := app.newTemplateData(r)
	data.Books = books
	app.render(w, r, http.StatusOK, "home.html", data)
}

func (app *application) books(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAll(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := app.newTemplateData(r)
	data.Books = books
	app.render(w, r, http.StatusOK, "books.html", data)
}

func (app *application) users(w http.ResponseWriter, r *http.Request) {
	users, err := app.models.Users.GetAll(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// Only copies on the shelf are offered in the borrow form.
	available, err := app.models.Books.GetAvailable(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := app.newTemplateData(r)
	data.Users = users
	data.Books = available
	app.render(w, r, http.StatusOK, "users.html", data)
}

func (app *application) borrowBookPost(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFound(w, r)
		return
	}

	err = r.ParseForm()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	bookID, err := strconv.ParseInt(r.PostForm.Get("book_id"), 10, 64)
	if err != nil || bookID < 1 {
		app.flashError(r, "Choose a book to borrow.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	_, err = app.models.Loans.Borrow(r.Context(), userID, bookID)
	if err != nil {
		if !app.flashModelError(r, err) {
			app.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	app.flashInfo(r, "Book borrowed successfully.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (app *application) returnBookPost(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFound(w, r)
		return
	}

	bookID, err := app.readIDParam(r, "bookId")
	if err != nil {
		app.notFound(w, r)
		return
	}

	_, err = app.models.Loans.Return(r.Context(), userID, bookID)
	if err != nil {
		if !app.flashModelError(r, err) {
			app.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	app.flashInfo(r, "Book returned successfully.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// flashModelError turns a NotFound or InvalidState error into a flash
// message. It reports false for any other error.
func (app *application) flashModelError(r *http.Request, err error) bool {
	switch {
	case errors.Is(err, data.ErrRecordNotFound), errors.Is(err, data.ErrInvalidState):
		app.flashError(r, err.Error())
		return true
	default:
		return false
	}
}
