package echoServer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookstore/app/echoServer/controller/auth"
	"bookstore/app/echoServer/controller/book"
	"bookstore/app/echoServer/controller/cart"
	"bookstore/app/echoServer/controller/transaction"
	"bookstore/app/echoServer/controller/user"
	"bookstore/app/echoServer/validation"
	"bookstore/model"
	booksvc "bookstore/service/book"
	cartsvc "bookstore/service/cart"
	checkoutsvc "bookstore/service/checkout"
	"bookstore/util/apperr"
	jwtutil "bookstore/util/jwt"
	"bookstore/util/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type checkoutStub struct {
	checkoutsvc.Service
	fn func(ctx context.Context, userID int64) (*model.Transaction, error)
}

func (s *checkoutStub) Checkout(ctx context.Context, userID int64) (*model.Transaction, error) {
	return s.fn(ctx, userID)
}

type bookStub struct {
	booksvc.Service
}

func (bookStub) List(ctx context.Context, search string, page, limit int) (model.Page[model.Book], error) {
	return model.NewPage([]model.Book{{ID: 1, Title: "Bumi", Price: decimal.RequireFromString("89000")}}, 1, page, limit), nil
}

func (bookStub) Create(ctx context.Context, in booksvc.CreateInput) (*model.Book, error) {
	return &model.Book{ID: 5, Title: in.Title, Author: in.Author, Price: in.Price, Stock: in.Stock}, nil
}

func (bookStub) Export(ctx context.Context, w io.Writer) error {
	_, err := w.Write([]byte("PK"))
	return err
}

type cartStub struct {
	cartsvc.Service
	gotUser int64
}

func (s *cartStub) AddItem(ctx context.Context, userID, bookID, quantity int64) (*model.CartItem, error) {
	s.gotUser = userID
	return &model.CartItem{ID: 3, BookID: bookID, Quantity: quantity}, nil
}

type server struct {
	e        *echo.Echo
	checkout *checkoutStub
	cart     *cartStub
	reg      *prometheus.Registry
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validation.New()
	s := &server{e: echo.New(), checkout: &checkoutStub{}, cart: &cartStub{}, reg: prometheus.NewRegistry()}
	RegisterMiddlewares(s.e, metrics.NewServerMetrics(s.reg))
	Register(s.e, C{
		Auth:        &auth.Controller{V: v, Log: log},
		Book:        &book.Controller{Svc: bookStub{}, V: v, Log: log},
		Cart:        &cart.Controller{Svc: s.cart, V: v, Log: log},
		Transaction: &transaction.Controller{CheckoutSvc: s.checkout, Log: log},
		User:        &user.Controller{V: v, Log: log},
		JWTSecret:   secret,
	})
	return s
}

func token(t *testing.T, uid int64, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := jwtutil.Issue(secret, jwtutil.Principal{UserID: uid, Email: "u@x.io", Role: role}, ttl)
	require.NoError(t, err)
	return tok
}

func (s *server) do(method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/v1/cart", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/v1/cart", "garbage", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/v1/cart", token(t, 7, "user", -time.Minute), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicCatalog(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/v1/books?page=1&limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	require.Equal(t, "89000.00", data[0].(map[string]any)["price"])
}

func TestCheckoutRoute(t *testing.T) {
	s := newServer(t)
	s.checkout.fn = func(ctx context.Context, userID int64) (*model.Transaction, error) {
		require.Equal(t, int64(7), userID)
		return &model.Transaction{
			ID: 1, UserID: 7, TotalPrice: decimal.RequireFromString("50"),
			Items: []model.TransactionItem{{ID: 1, BookID: 1, Quantity: 5, PricePerItem: decimal.RequireFromString("10")}},
		}, nil
	}

	rec := s.do(http.MethodPost, "/v1/transactions/checkout", token(t, 7, "user", time.Hour), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "50.00", body["total_price"])
	item := body["items"].([]any)[0].(map[string]any)
	require.Equal(t, "10.00", item["price_per_item"])
}

func TestCheckoutErrors(t *testing.T) {
	s := newServer(t)
	tok := token(t, 7, "user", time.Hour)

	s.checkout.fn = func(ctx context.Context, userID int64) (*model.Transaction, error) {
		return nil, apperr.New(apperr.InvalidRequest, `insufficient stock for "Bumi" (available: 2, requested: 3)`)
	}
	rec := s.do(http.MethodPost, "/v1/transactions/checkout", tok, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec)["message"], "available: 2")

	s.checkout.fn = func(ctx context.Context, userID int64) (*model.Transaction, error) {
		return nil, apperr.Wrap(apperr.Internal, "checkout failed", context.DeadlineExceeded)
	}
	rec = s.do(http.MethodPost, "/v1/transactions/checkout", tok, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal error", decode(t, rec)["message"])
}

func TestAddItemValidation(t *testing.T) {
	s := newServer(t)
	tok := token(t, 9, "user", time.Hour)

	rec := s.do(http.MethodPost, "/v1/cart/items", tok, `{"book_id": 1, "quantity": 0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["errors"].([]any)
	require.Equal(t, "quantity", errs[0].(map[string]any)["field"])

	rec = s.do(http.MethodPost, "/v1/cart/items", tok, `{"book_id": 1, "quantity": 2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, int64(9), s.cart.gotUser)
}

func TestCreateBookRequiresPrice(t *testing.T) {
	s := newServer(t)
	tok := token(t, 1, "admin", time.Hour)

	rec := s.do(http.MethodPost, "/v1/books", tok, `{"title": "Bumi", "author": "Pramoedya", "stock": 3}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["errors"].([]any)
	require.Len(t, errs, 1)
	require.Equal(t, "price", errs[0].(map[string]any)["field"])
	require.Equal(t, "required", errs[0].(map[string]any)["rule"])

	rec = s.do(http.MethodPost, "/v1/books", tok, `{"title": "Bumi", "author": "Pramoedya", "price": "0", "stock": 3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "0.00", decode(t, rec)["price"])
}

func TestAdminOnly(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/v1/books/export", token(t, 7, "user", time.Hour), "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/v1/books/export", token(t, 1, "admin", time.Hour), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "books.xlsx")
}

func TestMetricsRecorded(t *testing.T) {
	s := newServer(t)
	s.do(http.MethodGet, "/v1/books", "", "")

	families, err := s.reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "bookstore_http_requests_total" {
			found = true
			require.Equal(t, "/v1/books", labelValue(f.GetMetric()[0].GetLabel(), "route"))
		}
	}
	require.True(t, found)
}

func labelValue(labels []*dto.LabelPair, name string) string {
	for _, l := range labels {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}
