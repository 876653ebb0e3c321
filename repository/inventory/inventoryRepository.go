// Package inventory owns the books.stock column: plain reads, row locks and
// the floor-checked decrement used by checkout.
package inventory

import (
	"context"
	"errors"

	"bookstore/model"
	"bookstore/util/database"

	"github.com/jackc/pgx/v5"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type Repo interface {
	Stock(ctx context.Context, q database.Querier, bookID int64) (int64, error)
	Lock(ctx context.Context, tx pgx.Tx, bookID int64) (*model.BookRef, error)
	Decrement(ctx context.Context, tx pgx.Tx, bookID, amount int64) error
}

type repo struct{}

func New() Repo { return repo{} }

func (repo) Stock(ctx context.Context, q database.Querier, bookID int64) (int64, error) {
	var stock int64
	err := q.QueryRow(ctx, `SELECT stock FROM books WHERE id=$1`, bookID).Scan(&stock)
	return stock, err
}

// Lock reads the current row under FOR UPDATE; concurrent checkouts of the
// same book queue here until the holder commits or rolls back.
func (repo) Lock(ctx context.Context, tx pgx.Tx, bookID int64) (*model.BookRef, error) {
	const q = `
		SELECT id, title, author, price, stock
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var b model.BookRef
	if err := tx.QueryRow(ctx, q, bookID).Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Stock); err != nil {
		return nil, err
	}
	return &b, nil
}

func (repo) Decrement(ctx context.Context, tx pgx.Tx, bookID, amount int64) error {
	// Guard: only decrement if sufficient.
	const q = `
		UPDATE books
		SET stock = stock - $2,
			updated_at = NOW()
		WHERE id = $1
		AND stock >= $2`
	tag, err := tx.Exec(ctx, q, bookID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}
