// Package txrepo is the order ledger. It only appends and reads; there is no
// update or delete path.
package txrepo

import (
	"context"
	"errors"

	"bookstore/model"
	"bookstore/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	Insert(ctx context.Context, tx pgx.Tx, t *model.Transaction) error
	ListByUser(ctx context.Context, userID int64, page, limit int) ([]model.Transaction, int64, error)
	ByID(ctx context.Context, q database.Querier, userID, id int64) (*model.Transaction, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

// Insert writes the header and every item, filling generated ids and created_at.
func (r *repo) Insert(ctx context.Context, tx pgx.Tx, t *model.Transaction) error {
	const qh = `
		INSERT INTO transactions (user_id, total_price)
		VALUES ($1, $2)
		RETURNING id, created_at`
	if err := tx.QueryRow(ctx, qh, t.UserID, t.TotalPrice).Scan(&t.ID, &t.CreatedAt); err != nil {
		return err
	}

	const qi = `
		INSERT INTO transaction_items (transaction_id, book_id, quantity, price_per_item)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	batch := &pgx.Batch{}
	for _, it := range t.Items {
		batch.Queue(qi, t.ID, it.BookID, it.Quantity, it.PricePerItem)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range t.Items {
		if err := br.QueryRow().Scan(&t.Items[i].ID); err != nil {
			_ = br.Close()
			return err
		}
		t.Items[i].TransactionID = t.ID
	}
	return br.Close()
}

func (r *repo) ListByUser(ctx context.Context, userID int64, page, limit int) ([]model.Transaction, int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
		SELECT id, user_id, total_price, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, q, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Transaction
	idx := map[int64]int{}
	var ids []int64
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.TotalPrice, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		t.Items = []model.TransactionItem{}
		idx[t.ID] = len(out)
		ids = append(ids, t.ID)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	items, err := r.items(ctx, r.db.Pool, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, it := range items {
		t := &out[idx[it.TransactionID]]
		t.Items = append(t.Items, it)
	}
	return out, total, nil
}

// ByID is scoped to the owner and returns nil when nothing matches.
func (r *repo) ByID(ctx context.Context, q database.Querier, userID, id int64) (*model.Transaction, error) {
	const qh = `
		SELECT id, user_id, total_price, created_at
		FROM transactions
		WHERE id = $1 AND user_id = $2`
	var t model.Transaction
	err := q.QueryRow(ctx, qh, id, userID).Scan(&t.ID, &t.UserID, &t.TotalPrice, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Items, err = r.items(ctx, q, []int64{t.ID})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) items(ctx context.Context, q database.Querier, txIDs []int64) ([]model.TransactionItem, error) {
	const qi = `
		SELECT ti.id, ti.transaction_id, ti.book_id, ti.quantity, ti.price_per_item,
			b.id, b.title, b.author, b.price, b.stock
		FROM transaction_items ti
		JOIN books b ON b.id = ti.book_id
		WHERE ti.transaction_id = ANY($1)
		ORDER BY ti.transaction_id, ti.id`
	rows, err := q.Query(ctx, qi, txIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TransactionItem{}
	for rows.Next() {
		var it model.TransactionItem
		var b model.BookRef
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.BookID, &it.Quantity, &it.PricePerItem,
			&b.ID, &b.Title, &b.Author, &b.Price, &b.Stock); err != nil {
			return nil, err
		}
		it.Book = &b
		out = append(out, it)
	}
	return out, rows.Err()
}
