package bookrepo

import (
	"context"
	"strconv"
	"strings"

	"bookstore/model"
	"bookstore/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, search string, page, limit int) ([]model.Book, int64, error)
	All(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const bookCols = `id, title, author, price, stock, created_at, updated_at`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Stock, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (title, author, price, stock)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, b.Title, b.Author, b.Price, b.Stock).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) List(ctx context.Context, search string, page, limit int) ([]model.Book, int64, error) {
	where := ""
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		args = append(args, database.ContainsPattern(s))
		where = `WHERE title ILIKE $1 OR author ILIKE $1`
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM books `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	args = append(args, limit, (page-1)*limit)
	q := `SELECT ` + bookCols + ` FROM books ` + where +
		` ORDER BY title ASC, id ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectBooks(rows)
	return out, total, err
}

func (r *repo) All(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+bookCols+` FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBooks(rows)
}

func collectBooks(rows pgx.Rows) ([]model.Book, error) {
	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Detail returns pgx.ErrNoRows when the book does not exist.
func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return scanBook(r.db.Pool.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id=$1`, id))
}

func (r *repo) Update(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error) {
	const q = `
UPDATE books
SET title      = COALESCE($2, title),
    author     = COALESCE($3, author),
    price      = COALESCE($4, price),
    stock      = COALESCE($5, stock),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + bookCols
	return scanBook(r.db.Pool.QueryRow(ctx, q, id, p.Title, p.Author, p.Price, p.Stock))
}

func (r *repo) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
