package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/0xrinful/LibraryCatalog/internal/validator"
)

type User struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Email       string  `json:"email" db:"email"`
	PhoneNumber string  `json:"phoneNumber" db:"phone_number"`
	Books       []*Book `json:"books" db:"-"`
}

type UserModel struct {
	DB *sqlx.DB
}

// ValidateUser caps the name length. Email and phone number are free-form.
func ValidateUser(v *validator.Validator, user *User) {
	v.Check(validator.MaxChars(user.Name, 500), "name", "must not be more than 500 characters long")
}

// Insert stores a new user. Any books on the input are discarded.
func (m UserModel) Insert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (name, email, phone_number)
		VALUES ($1, $2, $3)
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	args := []any{user.Name, user.Email, user.PhoneNumber}
	err := m.DB.QueryRowxContext(ctx, query, args...).Scan(&user.ID)
	if err != nil {
		return err
	}

	user.Books = []*Book{}
	return nil
}

func (m UserModel) Get(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return getUser(ctx, m.DB, id)
}

// GetByEmail returns the lowest-id user with that address. Emails are not
// unique, so duplicates are tolerated.
func (m UserModel) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, phone_number
		FROM users
		WHERE email = $1
		ORDER BY id
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user User

	err := m.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	users := []*User{&user}
	if err := loadBooks(ctx, m.DB, users); err != nil {
		return nil, err
	}

	return &user, nil
}

func (m UserModel) GetAll(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, name, email, phone_number
		FROM users
		ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	users := []*User{}
	err := m.DB.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	if err := loadBooks(ctx, m.DB, users); err != nil {
		return nil, err
	}

	return users, nil
}

// getUser runs against either the pool or an open transaction.
func getUser(ctx context.Context, q sqlx.QueryerContext, id int64) (*User, error) {
	if id < 1 {
		return nil, userNotFound(id)
	}

	query := `
		SELECT id, name, email, phone_number
		FROM users
		WHERE id = $1`

	var user User

	err := sqlx.GetContext(ctx, q, &user, query, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, userNotFound(id)
		default:
			return nil, err
		}
	}

	if err := loadBooks(ctx, q, []*User{&user}); err != nil {
		return nil, err
	}

	return &user, nil
}

type heldBook struct {
	UserID int64 `db:"user_id"`
	Book
}

// loadBooks fills the borrowed collection of every user, oldest loan first.
func loadBooks(ctx context.Context, q sqlx.QueryerContext, users []*User) error {
	if len(users) == 0 {
		return nil
	}

	byID := make(map[int64]*User, len(users))
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		u.Books = []*Book{}
		byID[u.ID] = u
		ids = append(ids, u.ID)
	}

	query := `
		SELECT l.user_id, b.id, b.title, b.author, b.publication_year, b.isbn, b.genre, b.available
		FROM loans l
		INNER JOIN books b ON b.id = l.book_id
		WHERE l.user_id = ANY($1)
		ORDER BY l.borrowed_at, b.id`

	var held []heldBook
	err := sqlx.SelectContext(ctx, q, &held, query, pq.Array(ids))
	if err != nil {
		return err
	}

	for i := range held {
		book := held[i].Book
		byID[held[i].UserID].Books = append(byID[held[i].UserID].Books, &book)
	}

	return nil
}
