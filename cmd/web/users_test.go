package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xrinful/LibraryCatalog/internal/data"
)

func createUser(t *testing.T, app *application, body string) data.User {
	t.Helper()

	rr := call(t, app.createUserHandler, http.MethodPost, "/api/users", body, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[data.User](t, rr)
}

func loanPath(userID, bookID string) map[string]string {
	return map[string]string{"userId": userID, "bookId": bookID}
}

func TestCreateUserStartsWithNoBooks(t *testing.T) {
	app, _ := newTestApplication(t)

	user := createUser(t, app, `{"name": "Ada Lovelace", "email": "ada@example.com", "phoneNumber": "555-0100", "books": [{"id": 1}]}`)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "555-0100", user.PhoneNumber)
	assert.NotNil(t, user.Books)
	assert.Empty(t, user.Books)

	rr := call(t, app.showUserHandler, http.MethodGet, "/api/users/1", "", map[string]string{"userId": "1"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id": 1, "name": "Ada Lovelace", "email": "ada@example.com", "phoneNumber": "555-0100", "books": []}`, rr.Body.String())
}

func TestCreateUserAcceptsFreeFormFields(t *testing.T) {
	app, _ := newTestApplication(t)

	user := createUser(t, app, `{"email": "not-an-email"}`)
	assert.Equal(t, "", user.Name)
	assert.Equal(t, "not-an-email", user.Email)

	rr := call(t, app.createUserHandler, http.MethodPost, "/api/users", `{"name": "`+strings.Repeat("n", 501)+`"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	body := decode[map[string]map[string]string](t, rr)
	assert.Equal(t, "must not be more than 500 characters long", body["error"]["name"])
}

func TestShowUserNotFound(t *testing.T) {
	app, _ := newTestApplication(t)

	rr := call(t, app.showUserHandler, http.MethodGet, "/api/users/3", "", map[string]string{"userId": "3"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User not found with id: 3", decode[map[string]string](t, rr)["error"])
}

func TestListUsersByEmail(t *testing.T) {
	app, _ := newTestApplication(t)
	first := createUser(t, app, `{"name": "Ada", "email": "shared@example.com"}`)
	createUser(t, app, `{"name": "Grace", "email": "shared@example.com"}`)
	createUser(t, app, `{"name": "Alan", "email": "alan@example.com"}`)

	rr := call(t, app.listUsersHandler, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]data.User](t, rr), 3)

	rr = call(t, app.listUsersHandler, http.MethodGet, "/api/users?email=shared@example.com", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	users := decode[[]data.User](t, rr)
	require.Len(t, users, 1)
	assert.Equal(t, first.ID, users[0].ID)

	rr = call(t, app.listUsersHandler, http.MethodGet, "/api/users?email=nobody@example.com", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestBorrowThenReturn(t *testing.T) {
	app, _ := newTestApplication(t)
	book := createBook(t, app, warAndPeace)
	user := createUser(t, app, `{"name": "Ada", "email": "ada@example.com"}`)

	rr := call(t, app.borrowBookHandler, http.MethodPost, "/api/users/2/borrow/1", "", loanPath("2", "1"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	borrowed := decode[data.User](t, rr)
	assert.Equal(t, user.ID, borrowed.ID)
	require.Len(t, borrowed.Books, 1)
	assert.Equal(t, book.ID, borrowed.Books[0].ID)
	assert.False(t, borrowed.Books[0].Available)

	rr = call(t, app.listAvailableBooksHandler, http.MethodGet, "/api/books/available", "", nil)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = call(t, app.returnBookHandler, http.MethodPost, "/api/users/2/return/1", "", loanPath("2", "1"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, decode[data.User](t, rr).Books)

	rr = call(t, app.showBookHandler, http.MethodGet, "/api/books/1", "", map[string]string{"id": "1"})
	assert.True(t, decode[data.Book](t, rr).Available)

	rr = call(t, app.returnBookHandler, http.MethodPost, "/api/users/2/return/1", "", loanPath("2", "1"))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "User has not borrowed this book", decode[map[string]string](t, rr)["error"])
}

func TestBorrowUnavailableBook(t *testing.T) {
	app, _ := newTestApplication(t)
	createBook(t, app, warAndPeace)
	createUser(t, app, `{"name": "Ada"}`)
	createUser(t, app, `{"name": "Grace"}`)

	rr := call(t, app.borrowBookHandler, http.MethodPost, "/api/users/2/borrow/1", "", loanPath("2", "1"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, app.borrowBookHandler, http.MethodPost, "/api/users/3/borrow/1", "", loanPath("3", "1"))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Book is not available for borrowing", decode[map[string]string](t, rr)["error"])

	rr = call(t, app.showUserHandler, http.MethodGet, "/api/users/3", "", map[string]string{"userId": "3"})
	assert.Empty(t, decode[data.User](t, rr).Books)
}

func TestBorrowMissingRows(t *testing.T) {
	app, _ := newTestApplication(t)
	createBook(t, app, warAndPeace)
	createUser(t, app, `{"name": "Ada"}`)

	rr := call(t, app.borrowBookHandler, http.MethodPost, "/api/users/9/borrow/1", "", loanPath("9", "1"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User not found with id: 9", decode[map[string]string](t, rr)["error"])

	rr = call(t, app.borrowBookHandler, http.MethodPost, "/api/users/2/borrow/9", "", loanPath("2", "9"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Book not found with id: 9", decode[map[string]string](t, rr)["error"])

	rr = call(t, app.returnBookHandler, http.MethodPost, "/api/users/x/return/1", "", loanPath("x", "1"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateLoanedBookCannotBeMarkedAvailable(t *testing.T) {
	app, _ := newTestApplication(t)
	createBook(t, app, warAndPeace)
	createUser(t, app, `{"name": "Ada"}`)

	rr := call(t, app.borrowBookHandler, http.MethodPost, "/api/users/2/borrow/1", "", loanPath("2", "1"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, app.updateBookHandler, http.MethodPut, "/api/books/1", warAndPeace, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = call(t, app.updateBookHandler, http.MethodPut, "/api/books/1", `{"title": "War and Peace", "available": false}`, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDeleteLoanedBookClearsCollection(t *testing.T) {
	app, _ := newTestApplication(t)
	createBook(t, app, warAndPeace)
	createUser(t, app, `{"name": "Ada"}`)

	rr := call(t, app.borrowBookHandler, http.MethodPost, "/api/users/2/borrow/1", "", loanPath("2", "1"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, app.deleteBookHandler, http.MethodDelete, "/api/books/1", "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, app.showUserHandler, http.MethodGet, "/api/users/2", "", map[string]string{"userId": "2"})
	assert.Empty(t, decode[data.User](t, rr).Books)
}
