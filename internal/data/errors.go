package data

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("models: record not found")
	ErrInvalidState   = errors.New("models: invalid state transition")
)

var (
	ErrBookNotAvailable = &StateError{Reason: "Book is not available for borrowing"}
	ErrNotBorrowed      = &StateError{Reason: "User has not borrowed this book"}
	ErrBookOnLoan       = &StateError{Reason: "Book is currently on loan"}
)

// NotFoundError reports a missing Book or User row. It matches ErrRecordNotFound.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %d", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrRecordNotFound
}

// StateError reports an illegal borrow/return transition. It matches ErrInvalidState.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return e.Reason
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

func bookNotFound(id int64) error {
	return &NotFoundError{Entity: "Book", ID: id}
}

func userNotFound(id int64) error {
	return &NotFoundError{Entity: "User", ID: id}
}

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}
