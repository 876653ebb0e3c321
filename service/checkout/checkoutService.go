// Package checkoutsvc turns a user's cart into a committed order.
//
// Everything between Begin and Commit runs on one pgx.Tx: the cart row is
// locked, book rows are locked FOR UPDATE in ascending id order, stock is
// re-read and decremented under that lock, the ledger row and its items are inserted, the cart lines
// are deleted and an order.created outbox row is written. Any error rolls the
// whole unit back, so callers never observe a partial decrement or an orphan
// order.
package checkoutsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"bookstore/model"
	"bookstore/repository/inventory"
	"bookstore/repository/outbox"
	"bookstore/util/apperr"
	"bookstore/util/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const EventOrderCreated = "order.created"

var ErrEmptyCart = apperr.New(apperr.InvalidRequest, "cart is empty")

// DB is the pool: it starts transactions and serves the post-commit re-read.
type DB interface {
	database.TxBeginner
	database.Querier
}

type CartRepo interface {
	LockByUser(ctx context.Context, tx pgx.Tx, userID int64) (*model.Cart, error)
	Items(ctx context.Context, q database.Querier, cartID int64) ([]model.CartItem, error)
	Clear(ctx context.Context, q database.Querier, cartID int64) (int64, error)
}

type InventoryRepo interface {
	Lock(ctx context.Context, tx pgx.Tx, bookID int64) (*model.BookRef, error)
	Decrement(ctx context.Context, tx pgx.Tx, bookID, amount int64) error
}

type LedgerRepo interface {
	Insert(ctx context.Context, tx pgx.Tx, t *model.Transaction) error
	ByID(ctx context.Context, q database.Querier, userID, id int64) (*model.Transaction, error)
}

type OutboxRepo interface {
	Insert(ctx context.Context, q database.Querier, rec *outbox.Record) error
}

// Publisher delivers a committed outbox record. Failures stay inside the
// publisher; the record remains pending.
type Publisher interface {
	Publish(ctx context.Context, rec outbox.Record)
}

type Metrics interface {
	CheckoutOutcome(outcome string)
}

type Service interface {
	Checkout(ctx context.Context, userID int64) (*model.Transaction, error)
}

type Option func(*service)

func WithOutbox(r OutboxRepo, topic string, p Publisher) Option {
	return func(s *service) { s.outbox, s.topic, s.pub = r, topic, p }
}

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

func WithMetrics(m Metrics) Option { return func(s *service) { s.metrics = m } }

type service struct {
	db      DB
	carts   CartRepo
	inv     InventoryRepo
	ledger  LedgerRepo
	outbox  OutboxRepo
	topic   string
	pub     Publisher
	log     *slog.Logger
	metrics Metrics
}

func New(db DB, carts CartRepo, inv InventoryRepo, ledger LedgerRepo, opts ...Option) Service {
	s := &service{db: db, carts: carts, inv: inv, ledger: ledger, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Checkout(ctx context.Context, userID int64) (*model.Transaction, error) {
	order, rec, err := s.checkout(ctx, userID)
	if err != nil {
		err = s.classify(userID, err)
		s.observe(string(apperr.CodeOf(err)))
		return nil, err
	}
	s.observe("ok")
	s.log.Info("checkout committed", "op", "checkout", "user_id", userID,
		"transaction_id", order.ID, "total_price", order.TotalPrice.StringFixed(2), "items", len(order.Items))

	if rec != nil && s.pub != nil {
		s.pub.Publish(ctx, *rec)
	}

	final, err := s.ledger.ByID(ctx, s.db, userID, order.ID)
	if err != nil || final == nil {
		// The order is committed; hand back what was written.
		s.log.Warn("checkout reload failed", "op", "checkout", "user_id", userID, "transaction_id", order.ID, "err", err)
		return order, nil
	}
	return final, nil
}

func (s *service) checkout(ctx context.Context, userID int64) (*model.Transaction, *outbox.Record, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	// no-op after a successful Commit
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	// The cart lock queues a double-submit behind this tx; the second one
	// then finds the cart cleared.
	cart, err := s.carts.LockByUser(ctx, tx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return nil, nil, ErrEmptyCart
	}
	items, err := s.carts.Items(ctx, tx, cart.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	books, err := s.lockBooks(ctx, tx, items)
	if err != nil {
		return nil, nil, err
	}

	// Cart-time stock and price on items[i].Book are ignored; only the
	// locked rows count.
	need := make(map[int64]int64, len(books))
	total := decimal.Zero
	lines := make([]model.TransactionItem, 0, len(items))
	for _, it := range items {
		b := books[it.BookID]
		need[it.BookID] += it.Quantity
		if b.Stock < need[it.BookID] {
			return nil, nil, apperr.New(apperr.InvalidRequest,
				fmt.Sprintf("insufficient stock for %q (available: %d, requested: %d)", b.Title, b.Stock, need[it.BookID]))
		}
		total = total.Add(b.Price.Mul(decimal.NewFromInt(it.Quantity)))
		lines = append(lines, model.TransactionItem{
			BookID:       it.BookID,
			Quantity:     it.Quantity,
			PricePerItem: b.Price,
			Book:         b,
		})
	}

	for _, id := range sortedKeys(need) {
		if err := s.inv.Decrement(ctx, tx, id, need[id]); err != nil {
			if errors.Is(err, inventory.ErrInsufficientStock) {
				return nil, nil, apperr.New(apperr.InvalidRequest,
					fmt.Sprintf("insufficient stock for %q", books[id].Title))
			}
			return nil, nil, fmt.Errorf("decrement stock of book %d: %w", id, err)
		}
	}

	order := &model.Transaction{UserID: userID, TotalPrice: total, Items: lines}
	if err := s.ledger.Insert(ctx, tx, order); err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	if _, err := s.carts.Clear(ctx, tx, cart.ID); err != nil {
		return nil, nil, fmt.Errorf("clear cart: %w", err)
	}

	var rec *outbox.Record
	if s.outbox != nil {
		rec, err = s.orderEvent(order)
		if err != nil {
			return nil, nil, err
		}
		if err := s.outbox.Insert(ctx, tx, rec); err != nil {
			return nil, nil, fmt.Errorf("insert outbox: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return order, rec, nil
}

// lockBooks takes the row locks in ascending book id so two checkouts over
// overlapping books cannot deadlock.
func (s *service) lockBooks(ctx context.Context, tx pgx.Tx, items []model.CartItem) (map[int64]*model.BookRef, error) {
	ids := make(map[int64]int64, len(items))
	for _, it := range items {
		ids[it.BookID] = 0
	}
	books := make(map[int64]*model.BookRef, len(ids))
	for _, id := range sortedKeys(ids) {
		b, err := s.inv.Lock(ctx, tx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, fmt.Sprintf("book %d no longer exists", id))
		}
		if err != nil {
			return nil, fmt.Errorf("lock book %d: %w", id, err)
		}
		books[id] = b
	}
	return books, nil
}

type orderLine struct {
	BookID       int64  `json:"book_id"`
	Quantity     int64  `json:"quantity"`
	PricePerItem string `json:"price_per_item"`
}

type orderCreated struct {
	EventID       string      `json:"event_id"`
	Type          string      `json:"type"`
	TransactionID int64       `json:"transaction_id"`
	UserID        int64       `json:"user_id"`
	TotalPrice    string      `json:"total_price"`
	CreatedAt     time.Time   `json:"created_at"`
	Items         []orderLine `json:"items"`
}

func (s *service) orderEvent(t *model.Transaction) (*outbox.Record, error) {
	ev := orderCreated{
		EventID:       uuid.NewString(),
		Type:          EventOrderCreated,
		TransactionID: t.ID,
		UserID:        t.UserID,
		TotalPrice:    t.TotalPrice.StringFixed(2),
		CreatedAt:     t.CreatedAt,
	}
	for _, it := range t.Items {
		ev.Items = append(ev.Items, orderLine{BookID: it.BookID, Quantity: it.Quantity, PricePerItem: it.PricePerItem.StringFixed(2)})
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal order event: %w", err)
	}
	return &outbox.Record{
		EventID: ev.EventID,
		Topic:   s.topic,
		Key:     fmt.Sprint(t.UserID),
		Payload: payload,
	}, nil
}

// classify keeps business errors as they are and turns everything else into
// an opaque internal error after logging the cause.
func (s *service) classify(userID int64, err error) error {
	switch apperr.CodeOf(err) {
	case apperr.InvalidRequest, apperr.NotFound:
		s.log.Warn("checkout rejected", "op", "checkout", "user_id", userID, "err", err)
		return err
	}
	s.log.Error("checkout failed", "op", "checkout", "user_id", userID, "err", err)
	return apperr.Wrap(apperr.Internal, "checkout failed", err)
}

func (s *service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.CheckoutOutcome(outcome)
	}
}

func sortedKeys(m map[int64]int64) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
