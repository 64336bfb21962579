package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/0xrinful/LibraryCatalog/internal/data"
	"github.com/0xrinful/LibraryCatalog/internal/validator"
)

type userInput struct {
	Name        string `json:"name"`
	Email       string `json:"email" validate:"max=254"`
	PhoneNumber string `json:"phoneNumber" validate:"max=50"`
}

func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		app.findUserByEmail(w, r, email)
		return
	}

	users, err := app.models.Users.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, users, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// findUserByEmail answers with at most one user; no match is an empty list.
func (app *application) findUserByEmail(w http.ResponseWriter, r *http.Request, email string) {
	users := []*data.User{}

	user, err := app.models.Users.GetByEmail(r.Context(), email)
	switch {
	case err == nil:
		users = append(users, user)
	case errors.Is(err, data.ErrRecordNotFound):
	default:
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, users, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) showUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "userId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	user, err := app.models.Users.Get(r.Context(), id)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, user, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &data.User{
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
	}

	v := validator.New()
	v.Struct(input)
	data.ValidateUser(v, user)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Users.Insert(r.Context(), user)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/users/%d", user.ID))

	err = app.writeJSON(w, http.StatusCreated, user, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) borrowBookHandler(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := app.readLoanParams(w, r)
	if !ok {
		return
	}

	user, err := app.models.Loans.Borrow(r.Context(), userID, bookID)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, user, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) returnBookHandler(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := app.readLoanParams(w, r)
	if !ok {
		return
	}

	user, err := app.models.Loans.Return(r.Context(), userID, bookID)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, user, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) readLoanParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, err := app.readIDParam(r, "userId")
	if err != nil {
		app.notFoundResponse(w, r)
		return 0, 0, false
	}

	bookID, err := app.readIDParam(r, "bookId")
	if err != nil {
		app.notFoundResponse(w, r)
		return 0, 0, false
	}

	return userID, bookID, true
}
