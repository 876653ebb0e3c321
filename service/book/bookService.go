package booksvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"bookstore/model"
	"bookstore/util/apperr"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// column bounds: stock INTEGER, price NUMERIC(10,2)
	MaxStock = math.MaxInt32
)

var priceCeiling = decimal.New(1, 8)

var ErrBookNotFound = apperr.New(apperr.NotFound, "book not found")

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, search string, page, limit int) ([]model.Book, int64, error)
	All(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type CreateInput struct {
	Title  string
	Author string
	Price  decimal.Decimal
	Stock  int64
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*model.Book, error)
	List(ctx context.Context, search string, page, limit int) (model.Page[model.Book], error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, w io.Writer) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func validPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThan(priceCeiling) && p.Equal(p.Round(2))
}

func validStock(n int64) bool { return n >= 0 && n <= MaxStock }

const (
	badPrice = "price must be between 0 and 99999999.99 with at most 2 decimals"
	badStock = "stock must be between 0 and 2147483647"
)

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if in.Title == "" || in.Author == "" {
		return nil, apperr.New(apperr.InvalidRequest, "title and author are required")
	}
	if !validPrice(in.Price) {
		return nil, apperr.New(apperr.InvalidRequest, badPrice)
	}
	if !validStock(in.Stock) {
		return nil, apperr.New(apperr.InvalidRequest, badStock)
	}
	b := &model.Book{Title: in.Title, Author: in.Author, Price: in.Price, Stock: in.Stock}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// NormalizePage applies the defaults shared by every paginated listing.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func (s *service) List(ctx context.Context, search string, page, limit int) (model.Page[model.Book], error) {
	page, limit = NormalizePage(page, limit)
	rows, total, err := s.r.List(ctx, search, page, limit)
	if err != nil {
		return model.Page[model.Book]{}, err
	}
	return model.NewPage(rows, total, page, limit), nil
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	return b, err
}

func (s *service) Update(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error) {
	if p.Empty() {
		return nil, apperr.New(apperr.InvalidRequest, "nothing to update")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, apperr.New(apperr.InvalidRequest, "title must not be empty")
	}
	if p.Author != nil && strings.TrimSpace(*p.Author) == "" {
		return nil, apperr.New(apperr.InvalidRequest, "author must not be empty")
	}
	if p.Price != nil && !validPrice(*p.Price) {
		return nil, apperr.New(apperr.InvalidRequest, badPrice)
	}
	if p.Stock != nil && !validStock(*p.Stock) {
		return nil, apperr.New(apperr.InvalidRequest, badStock)
	}
	b, err := s.r.Update(ctx, id, p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	return b, err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	n, err := s.r.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return apperr.New(apperr.Conflict, "book is referenced by past orders")
		}
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Export writes every book as an xlsx workbook.
func (s *service) Export(ctx context.Context, w io.Writer) error {
	books, err := s.r.All(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Books")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range []string{"ID", "Title", "Author", "Price", "Stock", "CreatedAt", "UpdatedAt"} {
		header.AddCell().SetValue(h)
	}
	for _, b := range books {
		row := sheet.AddRow()
		row.AddCell().SetValue(b.ID)
		row.AddCell().SetValue(b.Title)
		row.AddCell().SetValue(b.Author)
		row.AddCell().SetValue(b.Price.StringFixed(2))
		row.AddCell().SetValue(b.Stock)
		row.AddCell().SetValue(b.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(b.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file.Write(w)
}
