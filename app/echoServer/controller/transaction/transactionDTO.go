package transaction

import (
	"time"

	"bookstore/model"
)

type BookResp struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type ItemResp struct {
	ID           int64     `json:"id"`
	BookID       int64     `json:"book_id"`
	Quantity     int64     `json:"quantity"`
	PricePerItem string    `json:"price_per_item"`
	Book         *BookResp `json:"book,omitempty"`
}

type TransactionResp struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	TotalPrice string     `json:"total_price"`
	CreatedAt  time.Time  `json:"created_at"`
	Items      []ItemResp `json:"items"`
}

func toResp(t *model.Transaction) TransactionResp {
	items := make([]ItemResp, 0, len(t.Items))
	for _, it := range t.Items {
		ir := ItemResp{ID: it.ID, BookID: it.BookID, Quantity: it.Quantity, PricePerItem: it.PricePerItem.StringFixed(2)}
		if it.Book != nil {
			ir.Book = &BookResp{ID: it.Book.ID, Title: it.Book.Title, Author: it.Book.Author}
		}
		items = append(items, ir)
	}
	return TransactionResp{
		ID:         t.ID,
		UserID:     t.UserID,
		TotalPrice: t.TotalPrice.StringFixed(2),
		CreatedAt:  t.CreatedAt,
		Items:      items,
	}
}
