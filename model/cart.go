package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

type CartItem struct {
	ID       int64    `json:"id"`
	CartID   int64    `json:"cart_id"`
	BookID   int64    `json:"book_id"`
	Quantity int64    `json:"quantity"`
	Book     *BookRef `json:"book,omitempty"`
}

// Total sums live book prices; it is a view, never stored.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		if it.Book == nil {
			continue
		}
		total = total.Add(it.Book.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total
}
