// service/book/bookService_test.go
package booksvc_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"bookstore/model"
	booksvc "bookstore/service/book"
	"bookstore/util/apperr"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

type repoMock struct {
	createFn func(ctx context.Context, b *model.Book) error
	listFn   func(ctx context.Context, search string, page, limit int) ([]model.Book, int64, error)
	allFn    func(ctx context.Context) ([]model.Book, error)
	detailFn func(ctx context.Context, id int64) (*model.Book, error)
	updateFn func(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error)
	deleteFn func(ctx context.Context, id int64) (int64, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) List(ctx context.Context, search string, page, limit int) ([]model.Book, int64, error) {
	return m.listFn(ctx, search, page, limit)
}
func (m *repoMock) All(ctx context.Context) ([]model.Book, error) { return m.allFn(ctx) }
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) Update(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error) {
	return m.updateFn(ctx, id, p)
}
func (m *repoMock) Delete(ctx context.Context, id int64) (int64, error) { return m.deleteFn(ctx, id) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	ctx := context.Background()

	cases := []booksvc.CreateInput{
		{Title: "", Author: "a", Price: dec("1")},
		{Title: "t", Author: " ", Price: dec("1")},
		{Title: "t", Author: "a", Price: dec("-1")},
		{Title: "t", Author: "a", Price: dec("1.005")},
		{Title: "t", Author: "a", Price: dec("1"), Stock: -1},
		{Title: "t", Author: "a", Price: dec("100000000")},
		{Title: "t", Author: "a", Price: dec("1"), Stock: booksvc.MaxStock + 1},
	}
	for _, in := range cases {
		_, err := s.Create(ctx, in)
		require.Equal(t, apperr.InvalidRequest, apperr.CodeOf(err), "%+v", in)
	}
}

func TestCreate_ColumnBounds(t *testing.T) {
	var created int
	m := &repoMock{createFn: func(ctx context.Context, b *model.Book) error { created++; return nil }}
	s := booksvc.New(m)

	b, err := s.Create(context.Background(), booksvc.CreateInput{
		Title: "t", Author: "a", Price: dec("99999999.99"), Stock: booksvc.MaxStock,
	})
	require.NoError(t, err)
	require.Equal(t, int64(booksvc.MaxStock), b.Stock)

	_, err = s.Create(context.Background(), booksvc.CreateInput{
		Title: "t", Author: "a", Price: dec("1"), Stock: 1 << 40,
	})
	require.Equal(t, apperr.InvalidRequest, apperr.CodeOf(err))
	require.Contains(t, err.Error(), "2147483647")
	require.Equal(t, 1, created, "out-of-range input never reaches the database")
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			if b.Title != "Laskar Pelangi" || b.Author != "Andrea Hirata" || !b.Price.Equal(dec("75000")) {
				return errors.New("bad args")
			}
			b.ID = 42
			return nil
		},
	}
	s := booksvc.New(m)
	b, err := s.Create(context.Background(), booksvc.CreateInput{
		Title: " Laskar Pelangi ", Author: "Andrea Hirata", Price: dec("75000.00"), Stock: 100,
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), b.ID)
	require.Equal(t, int64(100), b.Stock)
}

func TestList_NormalizesPaging(t *testing.T) {
	var gotPage, gotLimit int
	m := &repoMock{
		listFn: func(ctx context.Context, search string, page, limit int) ([]model.Book, int64, error) {
			gotPage, gotLimit = page, limit
			return []model.Book{{ID: 1}}, 25, nil
		},
	}
	s := booksvc.New(m)

	p, err := s.List(context.Background(), "hirata", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, gotPage)
	require.Equal(t, booksvc.DefaultLimit, gotLimit)
	require.Equal(t, 3, p.LastPage)
	require.Equal(t, int64(25), p.Total)

	_, err = s.List(context.Background(), "", 2, 1000)
	require.NoError(t, err)
	require.Equal(t, booksvc.MaxLimit, gotLimit)
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Book, error) { return nil, pgx.ErrNoRows },
	}
	_, err := booksvc.New(m).Detail(context.Background(), 99)
	require.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestUpdate(t *testing.T) {
	m := &repoMock{
		updateFn: func(ctx context.Context, id int64, p model.BookPatch) (*model.Book, error) {
			if id == 404 {
				return nil, pgx.ErrNoRows
			}
			return &model.Book{ID: id, Stock: *p.Stock}, nil
		},
	}
	s := booksvc.New(m)
	ctx := context.Background()

	_, err := s.Update(ctx, 1, model.BookPatch{})
	require.Equal(t, apperr.InvalidRequest, apperr.CodeOf(err))

	neg := int64(-3)
	_, err = s.Update(ctx, 1, model.BookPatch{Stock: &neg})
	require.Equal(t, apperr.InvalidRequest, apperr.CodeOf(err))

	huge := int64(booksvc.MaxStock) + 1
	_, err = s.Update(ctx, 1, model.BookPatch{Stock: &huge})
	require.Equal(t, apperr.InvalidRequest, apperr.CodeOf(err))

	pricey := dec("123456789")
	_, err = s.Update(ctx, 1, model.BookPatch{Price: &pricey})
	require.Equal(t, apperr.InvalidRequest, apperr.CodeOf(err))

	two := int64(2)
	b, err := s.Update(ctx, 1, model.BookPatch{Stock: &two})
	require.NoError(t, err)
	require.Equal(t, int64(2), b.Stock)

	_, err = s.Update(ctx, 404, model.BookPatch{Stock: &two})
	require.ErrorIs(t, err, booksvc.ErrBookNotFound)
}

func TestDelete(t *testing.T) {
	m := &repoMock{
		deleteFn: func(ctx context.Context, id int64) (int64, error) {
			switch id {
			case 1:
				return 1, nil
			case 2:
				return 0, &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
			default:
				return 0, nil
			}
		},
	}
	s := booksvc.New(m)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, 1))
	require.Equal(t, apperr.Conflict, apperr.CodeOf(s.Delete(ctx, 2)))
	require.Equal(t, apperr.NotFound, apperr.CodeOf(s.Delete(ctx, 3)))
}

func TestExport(t *testing.T) {
	m := &repoMock{
		allFn: func(ctx context.Context) ([]model.Book, error) {
			return []model.Book{{ID: 1, Title: "Bumi", Author: "Tere Liye", Price: dec("89000"), Stock: 4}}, nil
		},
	}
	var buf bytes.Buffer
	require.NoError(t, booksvc.New(m).Export(context.Background(), &buf))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet := f.Sheet["Books"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 2)
	require.Equal(t, "Bumi", sheet.Rows[1].Cells[1].String())
	require.Equal(t, "89000.00", sheet.Rows[1].Cells[3].String())
}
