package userrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"bookstore/model"
	"bookstore/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, f model.UserQuery) ([]model.User, int64, error)
	Update(ctx context.Context, id int64, p model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id int64) (int64, error)
	UpsertAdmin(ctx context.Context, u *model.User) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const userCols = `id, email, password_hash, role, first_name, last_name, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(email, password_hash, role, first_name, last_name)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// ByEmail returns nil, nil when no user matches.
func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, `
        SELECT `+userCols+`
        FROM users
        WHERE lower(email) = lower($1)`,
		email,
	))
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repo) List(ctx context.Context, f model.UserQuery) ([]model.User, int64, error) {
	var conds []string
	var args []any
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, database.ContainsPattern(s))
		conds = append(conds, "email ILIKE $"+strconv.Itoa(len(args)))
	}
	if f.Role != "" {
		args = append(args, f.Role)
		conds = append(conds, "role = $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.db.Pool.Query(ctx, `SELECT `+userCols+` FROM users`+where+
		` ORDER BY created_at DESC, id DESC LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

// Update returns nil, nil when the user does not exist.
func (r *repo) Update(ctx context.Context, id int64, p model.UserPatch) (*model.User, error) {
	const q = `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			email      = COALESCE($4, email),
			role       = COALESCE($5, role),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userCols
	var role *string
	if p.Role != nil {
		s := string(*p.Role)
		role = &s
	}
	return scanUser(r.db.Pool.QueryRow(ctx, q, id, p.FirstName, p.LastName, p.Email, role))
}

func (r *repo) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpsertAdmin creates the user as admin, or promotes and re-keys an existing one.
func (r *repo) UpsertAdmin(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(email, password_hash, role, first_name, last_name)
		VALUES ($1,$2,'admin',$3,$4)
		ON CONFLICT ((lower(email))) DO UPDATE
		SET role = 'admin', password_hash = EXCLUDED.password_hash, updated_at = NOW()
		RETURNING id, role, created_at, updated_at`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName,
	).Scan(&u.ID, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}
