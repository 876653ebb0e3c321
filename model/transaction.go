package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a committed order. Rows are never updated after insert.
type Transaction struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []TransactionItem `json:"items"`
}

type TransactionItem struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	BookID        int64           `json:"book_id"`
	Quantity      int64           `json:"quantity"`
	PricePerItem  decimal.Decimal `json:"price_per_item"`
	Book          *BookRef        `json:"book,omitempty"`
}

func (it TransactionItem) Subtotal() decimal.Decimal {
	return it.PricePerItem.Mul(decimal.NewFromInt(it.Quantity))
}

// SumItems recomputes Σ quantity*price_per_item.
func (t *Transaction) SumItems() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range t.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}
