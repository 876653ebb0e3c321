package cartrepo

import (
	"context"
	"errors"

	"bookstore/model"
	"bookstore/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	FindOrCreate(ctx context.Context, userID int64) (*model.Cart, error)
	LockByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Cart, error)
	Items(ctx context.Context, q database.Querier, cartID int64) ([]model.CartItem, error)
	Item(ctx context.Context, cartID, itemID int64) (*model.CartItem, error)
	ItemByBook(ctx context.Context, cartID, bookID int64) (*model.CartItem, error)
	InsertItem(ctx context.Context, cartID, bookID, qty int64) (*model.CartItem, error)
	SetQuantity(ctx context.Context, cartID, itemID, qty int64) error
	DeleteItem(ctx context.Context, cartID, itemID int64) (int64, error)
	Clear(ctx context.Context, q database.Querier, cartID int64) (int64, error)
}

type repo struct{ q database.Querier }

func New(db *database.DB) Repo { return &repo{q: db.Pool} }

const cartSelect = `SELECT id, user_id, created_at FROM carts WHERE user_id = $1`

func scanCart(row pgx.Row) (*model.Cart, error) {
	var c model.Cart
	if err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreate is race-free: two first requests for the same user end up on
// one row. Reads of an existing cart never write.
func (r *repo) FindOrCreate(ctx context.Context, userID int64) (*model.Cart, error) {
	c, err := scanCart(r.q.QueryRow(ctx, cartSelect, userID))
	if !errors.Is(err, pgx.ErrNoRows) {
		return c, err
	}

	const ins = `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, created_at`
	c, err = scanCart(r.q.QueryRow(ctx, ins, userID))
	if !errors.Is(err, pgx.ErrNoRows) {
		return c, err
	}
	// lost the insert race; the winner's row is committed now
	return scanCart(r.q.QueryRow(ctx, cartSelect, userID))
}

// LockByUser takes the cart row lock for the rest of tx and returns nil when
// the user has no cart yet. Two checkouts of one cart queue here, and the
// second one reads the lines the first left behind.
func (r *repo) LockByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Cart, error) {
	c, err := scanCart(tx.QueryRow(ctx, cartSelect+` FOR UPDATE`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

const itemSelect = `
		SELECT ci.id, ci.cart_id, ci.book_id, ci.quantity,
			b.id, b.title, b.author, b.price, b.stock
		FROM cart_items ci
		JOIN books b ON b.id = ci.book_id`

func scanItem(row pgx.Row) (*model.CartItem, error) {
	var it model.CartItem
	var b model.BookRef
	if err := row.Scan(&it.ID, &it.CartID, &it.BookID, &it.Quantity,
		&b.ID, &b.Title, &b.Author, &b.Price, &b.Stock); err != nil {
		return nil, err
	}
	it.Book = &b
	return &it, nil
}

func (r *repo) Items(ctx context.Context, q database.Querier, cartID int64) ([]model.CartItem, error) {
	rows, err := q.Query(ctx, itemSelect+` WHERE ci.cart_id = $1 ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CartItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *repo) oneItem(ctx context.Context, where string, args ...any) (*model.CartItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, itemSelect+where, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return it, err
}

// Item returns nil unless itemID belongs to cartID.
func (r *repo) Item(ctx context.Context, cartID, itemID int64) (*model.CartItem, error) {
	return r.oneItem(ctx, ` WHERE ci.id = $1 AND ci.cart_id = $2`, itemID, cartID)
}

func (r *repo) ItemByBook(ctx context.Context, cartID, bookID int64) (*model.CartItem, error) {
	return r.oneItem(ctx, ` WHERE ci.cart_id = $1 AND ci.book_id = $2 ORDER BY ci.id LIMIT 1`, cartID, bookID)
}

func (r *repo) InsertItem(ctx context.Context, cartID, bookID, qty int64) (*model.CartItem, error) {
	const q = `
		INSERT INTO cart_items (cart_id, book_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`
	it := model.CartItem{CartID: cartID, BookID: bookID, Quantity: qty}
	if err := r.q.QueryRow(ctx, q, cartID, bookID, qty).Scan(&it.ID); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repo) SetQuantity(ctx context.Context, cartID, itemID, qty int64) error {
	_, err := r.q.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND cart_id = $2`, itemID, cartID, qty)
	return err
}

func (r *repo) DeleteItem(ctx context.Context, cartID, itemID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repo) Clear(ctx context.Context, q database.Querier, cartID int64) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
