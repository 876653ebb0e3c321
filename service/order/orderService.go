// Package ordersvc serves a user's read-only view of the order ledger.
package ordersvc

import (
	"context"

	"bookstore/model"
	booksvc "bookstore/service/book"
	"bookstore/util/apperr"
	"bookstore/util/database"
)

var ErrOrderNotFound = apperr.New(apperr.NotFound, "transaction not found")

type Repo interface {
	ListByUser(ctx context.Context, userID int64, page, limit int) ([]model.Transaction, int64, error)
	ByID(ctx context.Context, q database.Querier, userID, id int64) (*model.Transaction, error)
}

type Service interface {
	History(ctx context.Context, userID int64, page, limit int) (model.Page[model.Transaction], error)
	Detail(ctx context.Context, userID, id int64) (*model.Transaction, error)
}

type service struct {
	db database.Querier
	r  Repo
}

func New(db database.Querier, r Repo) Service { return &service{db: db, r: r} }

func (s *service) History(ctx context.Context, userID int64, page, limit int) (model.Page[model.Transaction], error) {
	page, limit = booksvc.NormalizePage(page, limit)
	rows, total, err := s.r.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return model.Page[model.Transaction]{}, err
	}
	if rows == nil {
		rows = []model.Transaction{}
	}
	return model.NewPage(rows, total, page, limit), nil
}

// Detail only returns orders owned by userID; someone else's id looks absent.
func (s *service) Detail(ctx context.Context, userID, id int64) (*model.Transaction, error) {
	t, err := s.r.ByID(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrOrderNotFound
	}
	return t, nil
}
