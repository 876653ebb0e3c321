package cart

import (
	"time"

	"bookstore/model"

	"github.com/shopspring/decimal"
)

type AddItemReq struct {
	BookID   int64 `json:"book_id" validate:"required,gt=0"`
	Quantity int64 `json:"quantity" validate:"required,gte=1"`
}

type UpdateItemReq struct {
	Quantity int64 `json:"quantity" validate:"required,gte=1"`
}

type BookResp struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Price  string `json:"price"`
	Stock  int64  `json:"stock"`
}

type ItemResp struct {
	ID       int64     `json:"id"`
	BookID   int64     `json:"book_id"`
	Quantity int64     `json:"quantity"`
	Subtotal string    `json:"subtotal,omitempty"`
	Book     *BookResp `json:"book,omitempty"`
}

type CartResp struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Items      []ItemResp `json:"items"`
	TotalPrice string     `json:"total_price"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toItem(it *model.CartItem) ItemResp {
	out := ItemResp{ID: it.ID, BookID: it.BookID, Quantity: it.Quantity}
	if b := it.Book; b != nil {
		out.Book = &BookResp{ID: b.ID, Title: b.Title, Author: b.Author, Price: b.Price.StringFixed(2), Stock: b.Stock}
		out.Subtotal = b.Price.Mul(decimal.NewFromInt(it.Quantity)).StringFixed(2)
	}
	return out
}

func toCart(c *model.Cart) CartResp {
	items := make([]ItemResp, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, toItem(&c.Items[i]))
	}
	return CartResp{ID: c.ID, UserID: c.UserID, Items: items, TotalPrice: c.TotalPrice.StringFixed(2), CreatedAt: c.CreatedAt}
}
