// Package cartsvc implements per-user cart mutations. Each call checks stock
// on its own; concurrent adds for the same book are not serialized against
// each other. Checkout re-validates under row locks.
package cartsvc

import (
	"context"
	"errors"
	"fmt"

	"bookstore/model"
	"bookstore/util/apperr"
	"bookstore/util/database"

	"github.com/jackc/pgx/v5"
)

type Repo interface {
	FindOrCreate(ctx context.Context, userID int64) (*model.Cart, error)
	Items(ctx context.Context, q database.Querier, cartID int64) ([]model.CartItem, error)
	Item(ctx context.Context, cartID, itemID int64) (*model.CartItem, error)
	ItemByBook(ctx context.Context, cartID, bookID int64) (*model.CartItem, error)
	InsertItem(ctx context.Context, cartID, bookID, qty int64) (*model.CartItem, error)
	SetQuantity(ctx context.Context, cartID, itemID, qty int64) error
	DeleteItem(ctx context.Context, cartID, itemID int64) (int64, error)
	Clear(ctx context.Context, q database.Querier, cartID int64) (int64, error)
}

type BookRepo interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type InventoryRepo interface {
	Stock(ctx context.Context, q database.Querier, bookID int64) (int64, error)
}

type Service interface {
	Get(ctx context.Context, userID int64) (*model.Cart, error)
	AddItem(ctx context.Context, userID, bookID, quantity int64) (*model.CartItem, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID, quantity int64) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
	// Clear reports false when the cart was already empty.
	Clear(ctx context.Context, userID int64) (bool, error)
}

var (
	ErrItemNotFound = apperr.New(apperr.NotFound, "cart item not found in your cart")
	ErrBadQuantity  = apperr.New(apperr.InvalidRequest, "quantity must be at least 1")
)

type service struct {
	db    database.Querier
	r     Repo
	books BookRepo
	inv   InventoryRepo
}

func New(db database.Querier, r Repo, books BookRepo, inv InventoryRepo) Service {
	return &service{db: db, r: r, books: books, inv: inv}
}

func (s *service) Get(ctx context.Context, userID int64) (*model.Cart, error) {
	cart, err := s.r.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Items, err = s.r.Items(ctx, s.db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.TotalPrice = cart.Total()
	return cart, nil
}

func insufficient(b *model.BookRef, want int64) error {
	return apperr.New(apperr.InvalidRequest,
		fmt.Sprintf("insufficient stock for %q (available: %d, requested: %d)", b.Title, b.Stock, want))
}

func (s *service) AddItem(ctx context.Context, userID, bookID, quantity int64) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrBadQuantity
	}
	cart, err := s.r.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	book, err := s.books.Detail(ctx, bookID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && book == nil) {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("book %d not found", bookID))
	}
	if err != nil {
		return nil, err
	}
	ref := &model.BookRef{ID: book.ID, Title: book.Title, Author: book.Author, Price: book.Price, Stock: book.Stock}
	if book.Stock < quantity {
		return nil, insufficient(ref, quantity)
	}

	existing, err := s.r.ItemByBook(ctx, cart.ID, bookID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		merged := existing.Quantity + quantity
		if book.Stock < merged {
			return nil, insufficient(ref, merged)
		}
		if err := s.r.SetQuantity(ctx, cart.ID, existing.ID, merged); err != nil {
			return nil, err
		}
		existing.Quantity = merged
		existing.Book = ref
		return existing, nil
	}

	it, err := s.r.InsertItem(ctx, cart.ID, bookID, quantity)
	if err != nil {
		return nil, err
	}
	it.Book = ref
	return it, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID, quantity int64) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, ErrBadQuantity
	}
	cart, err := s.r.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	it, err := s.r.Item(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrItemNotFound
	}

	stock, err := s.inv.Stock(ctx, s.db, it.BookID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("book %d not found", it.BookID))
	}
	if err != nil {
		return nil, err
	}
	if it.Book != nil {
		it.Book.Stock = stock
	}
	if stock < quantity {
		ref := it.Book
		if ref == nil {
			ref = &model.BookRef{ID: it.BookID, Stock: stock}
		}
		return nil, insufficient(ref, quantity)
	}

	if err := s.r.SetQuantity(ctx, cart.ID, it.ID, quantity); err != nil {
		return nil, err
	}
	it.Quantity = quantity
	return it, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	cart, err := s.r.FindOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	n, err := s.r.DeleteItem(ctx, cart.ID, itemID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID int64) (bool, error) {
	cart, err := s.r.FindOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}
	n, err := s.r.Clear(ctx, s.db, cart.ID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
