package book

import (
	"time"

	"bookstore/model"

	"github.com/shopspring/decimal"
)

// CreateBookReq accepts price as a JSON number or string. Price and Stock
// are pointers so that an omitted field fails "required" instead of
// decoding to zero.
type CreateBookReq struct {
	Title  string           `json:"title" validate:"required,max=255"`
	Author string           `json:"author" validate:"required,max=255"`
	Price  *decimal.Decimal `json:"price" validate:"required"`
	Stock  *int64           `json:"stock" validate:"required,gte=0"`
}

type UpdateBookReq struct {
	Title  *string          `json:"title" validate:"omitempty,max=255"`
	Author *string          `json:"author" validate:"omitempty,max=255"`
	Price  *decimal.Decimal `json:"price"`
	Stock  *int64           `json:"stock" validate:"omitempty,gte=0"`
}

func (r UpdateBookReq) Patch() model.BookPatch {
	return model.BookPatch{Title: r.Title, Author: r.Author, Price: r.Price, Stock: r.Stock}
}

type BookResp struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     string    `json:"price"`
	Stock     int64     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResp(b *model.Book) BookResp {
	return BookResp{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Price:     b.Price.StringFixed(2),
		Stock:     b.Stock,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
