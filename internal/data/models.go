package data

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

var dialect = goqu.Dialect("postgres")

type Models struct {
	Users interface {
		Insert(ctx context.Context, user *User) error
		Get(ctx context.Context, id int64) (*User, error)
		GetByEmail(ctx context.Context, email string) (*User, error)
		GetAll(ctx context.Context) ([]*User, error)
	}

	Books interface {
		Insert(ctx context.Context, book *Book) error
		Get(ctx context.Context, id int64) (*Book, error)
		GetAll(ctx context.Context) ([]*Book, error)
		SearchByTitle(ctx context.Context, title string) ([]*Book, error)
		SearchByAuthor(ctx context.Context, author string) ([]*Book, error)
		GetByGenre(ctx context.Context, genre string) ([]*Book, error)
		GetAvailable(ctx context.Context) ([]*Book, error)
		Search(ctx context.Context, filter BookFilter) ([]*Book, error)
		Update(ctx context.Context, book *Book) error
		Delete(ctx context.Context, id int64) error
	}

	Loans interface {
		Borrow(ctx context.Context, userID, bookID int64) (*User, error)
		Return(ctx context.Context, userID, bookID int64) (*User, error)
	}
}

func NewModels(db *sqlx.DB) Models {
	return Models{
		Users: UserModel{DB: db},
		Books: BookModel{DB: db},
		Loans: LoanModel{DB: db},
	}
}
