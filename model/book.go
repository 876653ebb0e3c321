package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BookRef is the part of a book embedded in cart and order lines.
type BookRef struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Author string          `json:"author"`
	Price  decimal.Decimal `json:"price"`
	Stock  int64           `json:"stock"`
}

// BookPatch carries an admin partial update; nil fields are left untouched.
type BookPatch struct {
	Title  *string
	Author *string
	Price  *decimal.Decimal
	Stock  *int64
}

func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Price == nil && p.Stock == nil
}

type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	LastPage int   `json:"last_page"`
}

func NewPage[T any](data []T, total int64, page, limit int) Page[T] {
	if data == nil {
		data = []T{}
	}
	last := 0
	if limit > 0 {
		last = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{Data: data, Total: total, Page: page, LastPage: last}
}
