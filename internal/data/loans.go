package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Loan is a row of the loans join table: the user currently holds the book.
// Returning deletes the row, so no history is kept.
type Loan struct {
	UserID     int64     `db:"user_id"`
	BookID     int64     `db:"book_id"`
	BorrowedAt time.Time `db:"borrowed_at"`
}

type LoanModel struct {
	DB *sqlx.DB
}

// Borrow lends bookID to userID. The book row is locked for the duration of
// the transaction, so a concurrent borrow of the same copy waits and then
// fails with ErrBookNotAvailable.
func (m LoanModel) Borrow(ctx context.Context, userID, bookID int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := getUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	available, err := lockBook(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}

	if !available {
		return nil, ErrBookNotAvailable
	}

	_, err = tx.ExecContext(ctx, `UPDATE books SET available = false WHERE id = $1`, bookID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO loans (user_id, book_id) VALUES ($1, $2)`, userID, bookID)
	if err != nil {
		switch {
		case isPQCode(err, pqUniqueViolation):
			return nil, ErrBookNotAvailable
		case isPQCode(err, pqForeignKeyViolation):
			return nil, userNotFound(userID)
		default:
			return nil, err
		}
	}

	user, err := getUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return user, nil
}

// Return gives bookID back from userID and marks the copy available again.
func (m LoanModel) Return(ctx context.Context, userID, bookID int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := getUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	if _, err := lockBook(ctx, tx, bookID); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, ErrNotBorrowed
	}

	_, err = tx.ExecContext(ctx, `UPDATE books SET available = true WHERE id = $1`, bookID)
	if err != nil {
		return nil, err
	}

	user, err := getUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return user, nil
}

func lockBook(ctx context.Context, tx *sqlx.Tx, bookID int64) (bool, error) {
	if bookID < 1 {
		return false, bookNotFound(bookID)
	}

	var available bool
	err := tx.GetContext(ctx, &available, `SELECT available FROM books WHERE id = $1 FOR UPDATE`, bookID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return false, bookNotFound(bookID)
		default:
			return false, err
		}
	}

	return available, nil
}
