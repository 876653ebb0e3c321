package usersvc

import (
	"context"
	"errors"
	"strings"

	"bookstore/model"
	userrepo "bookstore/repository/user"
	authsvc "bookstore/service/auth"
	booksvc "bookstore/service/book"
	"bookstore/util/apperr"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound = apperr.New(apperr.NotFound, "user not found")
	ErrEmailTaken   = apperr.New(apperr.Conflict, "email already registered")
	ErrSelfDelete   = apperr.New(apperr.InvalidRequest, "admins cannot delete their own account")
	ErrSelfDemote   = apperr.New(apperr.InvalidRequest, "admins cannot change their own role")

	// transactions.user_id is ON DELETE RESTRICT.
	ErrUserHasOrders = apperr.New(apperr.Conflict, "user has orders")
)

type Service interface {
	Me(ctx context.Context, userID int64) (*model.User, error)
	UpdateMe(ctx context.Context, userID int64, p model.UserPatch) (*model.User, error)

	List(ctx context.Context, q model.UserQuery) (model.Page[model.User], error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, actorID, id int64, p model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, actorID, id int64) error
}

type service struct{ r userrepo.Repo }

func New(r userrepo.Repo) Service { return &service{r: r} }

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	return s.Get(ctx, userID)
}

// UpdateMe ignores Role; only admins change roles, through Update.
func (s *service) UpdateMe(ctx context.Context, userID int64, p model.UserPatch) (*model.User, error) {
	p.Role = nil
	return s.update(ctx, userID, p)
}

func (s *service) List(ctx context.Context, q model.UserQuery) (model.Page[model.User], error) {
	if q.Role != "" && !q.Role.Valid() {
		return model.Page[model.User]{}, apperr.New(apperr.InvalidRequest, "role must be user or admin")
	}
	q.Page, q.Limit = booksvc.NormalizePage(q.Page, q.Limit)
	rows, total, err := s.r.List(ctx, q)
	if err != nil {
		return model.Page[model.User]{}, err
	}
	if rows == nil {
		rows = []model.User{}
	}
	return model.NewPage(rows, total, q.Page, q.Limit), nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, actorID, id int64, p model.UserPatch) (*model.User, error) {
	if p.Role != nil {
		if !p.Role.Valid() {
			return nil, apperr.New(apperr.InvalidRequest, "role must be user or admin")
		}
		if actorID == id && *p.Role != model.RoleAdmin {
			return nil, ErrSelfDemote
		}
	}
	return s.update(ctx, id, p)
}

func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDelete
	}
	n, err := s.r.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrUserHasOrders
		}
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *service) update(ctx context.Context, id int64, p model.UserPatch) (*model.User, error) {
	if p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Role == nil {
		return nil, apperr.New(apperr.InvalidRequest, "nothing to update")
	}
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		if email == "" {
			return nil, apperr.New(apperr.InvalidRequest, "email must not be empty")
		}
		p.Email = &email

		other, err := s.r.ByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, ErrEmailTaken
		}
	}

	u, err := s.r.Update(ctx, id, p)
	if authsvc.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
