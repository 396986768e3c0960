package cart

import "github.com/shopspring/decimal"

// Line is a single cart line item as held by the client cart state.
// Price is the list price; SalePrice, when positive, takes precedence.
type Line struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Quantity  int             `json:"quantity"`
}

// EffectivePrice returns the unit price actually charged: the sale price
// when it is greater than zero, otherwise the list price.
func (l Line) EffectivePrice() decimal.Decimal {
	if l.SalePrice.IsPositive() {
		return l.SalePrice
	}
	return l.Price
}

// Subtotal returns quantity × effective unit price for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a snapshot of the shopper's cart.
type Cart struct {
	ID    string `json:"id"`
	Items []Line `json:"items"`
}

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Total sums quantity × effective price over all lines. An empty cart
// totals zero.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Items {
		total = total.Add(l.Subtotal())
	}
	return total
}
