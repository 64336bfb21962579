package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"

	"github.com/0xrinful/LibraryCatalog/internal/data"
	"github.com/0xrinful/LibraryCatalog/internal/jsonlog"
)

// memStore is an in-memory stand-in for PostgreSQL shared by the mock models.
type memStore struct {
	mu     sync.Mutex
	books  map[int64]data.Book
	users  map[int64]data.User
	loans  map[int64]int64 // book id -> user id
	order  []int64         // book ids in borrow order
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		books: map[int64]data.Book{},
		users: map[int64]data.User{},
		loans: map[int64]int64{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) userWithBooks(id int64) *data.User {
	u := s.users[id]
	u.Books = []*data.Book{}
	for _, bookID := range s.order {
		if s.loans[bookID] == id {
			b := s.books[bookID]
			u.Books = append(u.Books, &b)
		}
	}
	return &u
}

func (s *memStore) endLoan(bookID int64) {
	delete(s.loans, bookID)
	for i, id := range s.order {
		if id == bookID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *memStore) sortedBooks(keep func(data.Book) bool) []*data.Book {
	books := []*data.Book{}
	for _, b := range s.books {
		if keep(b) {
			b := b
			books = append(books, &b)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}

type mockBookModel struct{ s *memStore }

func (m mockBookModel) Insert(_ context.Context, book *data.Book) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	book.ID = m.s.id()
	m.s.books[book.ID] = *book
	return nil
}

func (m mockBookModel) Get(_ context.Context, id int64) (*data.Book, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.books[id]
	if !ok {
		return nil, &data.NotFoundError{Entity: "Book", ID: id}
	}
	return &b, nil
}

func (m mockBookModel) GetAll(_ context.Context) ([]*data.Book, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.sortedBooks(func(data.Book) bool { return true }), nil
}

func (m mockBookModel) SearchByTitle(ctx context.Context, title string) ([]*data.Book, error) {
	return m.Search(ctx, data.BookFilter{Title: title})
}

func (m mockBookModel) SearchByAuthor(ctx context.Context, author string) ([]*data.Book, error) {
	return m.Search(ctx, data.BookFilter{Author: author})
}

func (m mockBookModel) GetByGenre(ctx context.Context, genre string) ([]*data.Book, error) {
	return m.Search(ctx, data.BookFilter{Genre: genre})
}

func (m mockBookModel) GetAvailable(_ context.Context) ([]*data.Book, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.sortedBooks(func(b data.Book) bool { return b.Available }), nil
}

func (m mockBookModel) Search(_ context.Context, f data.BookFilter) ([]*data.Book, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	contains := func(field, sub string) bool {
		return strings.Contains(strings.ToLower(field), strings.ToLower(sub))
	}

	return m.s.sortedBooks(func(b data.Book) bool {
		switch {
		case f.Title != "":
			return contains(b.Title, f.Title)
		case f.Author != "":
			return contains(b.Author, f.Author)
		case f.Genre != "":
			return b.Genre == f.Genre
		}
		return true
	}), nil
}

func (m mockBookModel) Update(_ context.Context, book *data.Book) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.books[book.ID]; !ok {
		return &data.NotFoundError{Entity: "Book", ID: book.ID}
	}
	if _, onLoan := m.s.loans[book.ID]; onLoan && book.Available {
		return data.ErrBookOnLoan
	}
	m.s.books[book.ID] = *book
	return nil
}

func (m mockBookModel) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.books[id]; !ok {
		return &data.NotFoundError{Entity: "Book", ID: id}
	}
	delete(m.s.books, id)
	m.s.endLoan(id)
	return nil
}

type mockUserModel struct{ s *memStore }

func (m mockUserModel) Insert(_ context.Context, user *data.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	user.ID = m.s.id()
	user.Books = []*data.Book{}
	m.s.users[user.ID] = *user
	return nil
}

func (m mockUserModel) Get(_ context.Context, id int64) (*data.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return nil, &data.NotFoundError{Entity: "User", ID: id}
	}
	return m.s.userWithBooks(id), nil
}

func (m mockUserModel) GetByEmail(_ context.Context, email string) (*data.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var found *data.User
	for id, u := range m.s.users {
		if u.Email == email && (found == nil || id < found.ID) {
			found = m.s.userWithBooks(id)
		}
	}
	if found == nil {
		return nil, data.ErrRecordNotFound
	}
	return found, nil
}

func (m mockUserModel) GetAll(_ context.Context) ([]*data.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	users := []*data.User{}
	for id := range m.s.users {
		users = append(users, m.s.userWithBooks(id))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type mockLoanModel struct{ s *memStore }

func (m mockLoanModel) Borrow(_ context.Context, userID, bookID int64) (*data.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[userID]; !ok {
		return nil, &data.NotFoundError{Entity: "User", ID: userID}
	}
	b, ok := m.s.books[bookID]
	if !ok {
		return nil, &data.NotFoundError{Entity: "Book", ID: bookID}
	}
	if !b.Available {
		return nil, data.ErrBookNotAvailable
	}
	b.Available = false
	m.s.books[bookID] = b
	m.s.loans[bookID] = userID
	m.s.order = append(m.s.order, bookID)
	return m.s.userWithBooks(userID), nil
}

func (m mockLoanModel) Return(_ context.Context, userID, bookID int64) (*data.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[userID]; !ok {
		return nil, &data.NotFoundError{Entity: "User", ID: userID}
	}
	b, ok := m.s.books[bookID]
	if !ok {
		return nil, &data.NotFoundError{Entity: "Book", ID: bookID}
	}
	if holder, onLoan := m.s.loans[bookID]; !onLoan || holder != userID {
		return nil, data.ErrNotBorrowed
	}
	b.Available = true
	m.s.books[bookID] = b
	m.s.endLoan(bookID)
	return m.s.userWithBooks(userID), nil
}

func newTestApplication(t *testing.T) (*application, *memStore) {
	t.Helper()

	templateCache, err := newTemplateCache()
	require.NoError(t, err)

	store := newMemStore()

	app := &application{
		config: config{env: "testing"},
		logger: jsonlog.New(io.Discard, jsonlog.LevelOff),
		models: data.Models{
			Books: mockBookModel{s: store},
			Users: mockUserModel{s: store},
			Loans: mockLoanModel{s: store},
		},
		session:       scs.New(),
		templateCache: templateCache,
	}

	return app, store
}

// call runs handler directly, with path values set the way the router would.
func call(t *testing.T, handler http.HandlerFunc, method, target, body string, pathValues map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	r := httptest.NewRequest(method, target, reader)
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}

	rr := httptest.NewRecorder()
	handler(rr, r)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
