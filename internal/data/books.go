package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/0xrinful/LibraryCatalog/internal/validator"
)

// Book is one physical copy. Available is false exactly while a loan holds it.
type Book struct {
	ID              int64  `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	PublicationYear int    `json:"publicationYear" db:"publication_year"`
	ISBN            string `json:"isbn" db:"isbn"`
	Genre           string `json:"genre" db:"genre"`
	Available       bool   `json:"available" db:"available"`
}

// BookFilter holds the optional search parameters. Only the first non-empty
// field, in the order Title, Author, Genre, is applied.
type BookFilter struct {
	Title  string
	Author string
	Genre  string
}

var bookColumns = []any{"id", "title", "author", "publication_year", "isbn", "genre", "available"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (f BookFilter) apply(ds *goqu.SelectDataset) *goqu.SelectDataset {
	switch {
	case f.Title != "":
		return ds.Where(goqu.C("title").ILike(containsPattern(f.Title)))
	case f.Author != "":
		return ds.Where(goqu.C("author").ILike(containsPattern(f.Author)))
	case f.Genre != "":
		return ds.Where(goqu.C("genre").Eq(f.Genre))
	}
	return ds
}

func selectBooks() *goqu.SelectDataset {
	return dialect.From("books").Select(bookColumns...).Order(goqu.C("id").Asc())
}

// ValidateBook only caps lengths. Any field may be empty, since an update
// overwrites omitted fields with their zero value.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(validator.MaxChars(book.Title, 500), "title", "must not be more than 500 characters long")
	v.Check(validator.MaxChars(book.Author, 500), "author", "must not be more than 500 characters long")
}

type BookModel struct {
	DB *sqlx.DB
}

func (m BookModel) list(ctx context.Context, ds *goqu.SelectDataset) ([]*Book, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	books := []*Book{}
	err = m.DB.SelectContext(ctx, &books, query, args...)
	if err != nil {
		return nil, err
	}

	return books, nil
}

func (m BookModel) GetAll(ctx context.Context) ([]*Book, error) {
	return m.list(ctx, selectBooks())
}

func (m BookModel) SearchByTitle(ctx context.Context, title string) ([]*Book, error) {
	return m.list(ctx, BookFilter{Title: title}.apply(selectBooks()))
}

func (m BookModel) SearchByAuthor(ctx context.Context, author string) ([]*Book, error) {
	return m.list(ctx, BookFilter{Author: author}.apply(selectBooks()))
}

func (m BookModel) GetByGenre(ctx context.Context, genre string) ([]*Book, error) {
	return m.list(ctx, selectBooks().Where(goqu.C("genre").Eq(genre)))
}

func (m BookModel) GetAvailable(ctx context.Context) ([]*Book, error) {
	return m.list(ctx, selectBooks().Where(goqu.C("available").IsTrue()))
}

func (m BookModel) Search(ctx context.Context, filter BookFilter) ([]*Book, error) {
	return m.list(ctx, filter.apply(selectBooks()))
}

func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, bookNotFound(id)
	}

	query := `
		SELECT id, title, author, publication_year, isbn, genre, available
		FROM books
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var book Book

	err := m.DB.GetContext(ctx, &book, query, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, bookNotFound(id)
		default:
			return nil, err
		}
	}

	return &book, nil
}

// Insert stores a new row and overwrites book.ID with the assigned identity.
func (m BookModel) Insert(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (title, author, publication_year, isbn, genre, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	args := []any{book.Title, book.Author, book.PublicationYear, book.ISBN, book.Genre, book.Available}
	return m.DB.QueryRowxContext(ctx, query, args...).Scan(&book.ID)
}

// Update overwrites every mutable column. A book held by a loan cannot be
// marked available here; that only happens through a return.
func (m BookModel) Update(ctx context.Context, book *Book) error {
	if book.ID < 1 {
		return bookNotFound(book.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var onLoan bool
	err = tx.GetContext(ctx, &onLoan, `
		SELECT EXISTS (SELECT 1 FROM loans WHERE loans.book_id = books.id)
		FROM books
		WHERE id = $1
		FOR UPDATE`, book.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return bookNotFound(book.ID)
		default:
			return err
		}
	}

	if onLoan && book.Available {
		return ErrBookOnLoan
	}

	query := `
		UPDATE books
		SET title = $1, author = $2, publication_year = $3, isbn = $4, genre = $5, available = $6
		WHERE id = $7`

	args := []any{book.Title, book.Author, book.PublicationYear, book.ISBN, book.Genre, book.Available, book.ID}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the book; loans referencing it go with it (ON DELETE CASCADE).
func (m BookModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return bookNotFound(id)
	}

	query := `DELETE FROM books WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return bookNotFound(id)
	}

	return nil
}
