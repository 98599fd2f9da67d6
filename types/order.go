package types

import "fmt"

// Order is a limit order submitted by the trader. Positive quantity buys,
// negative quantity sells.
type Order struct {
	Symbol   Symbol `json:"symbol"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

func NewOrder(symbol Symbol, price, quantity int) Order {
	return Order{
		Symbol:   symbol,
		Price:    price,
		Quantity: quantity,
	}
}

func (o Order) IsBuy() bool {
	return o.Quantity > 0
}

func (o Order) String() string {
	if o.IsBuy() {
		return fmt.Sprintf("(%s, BUY, %d @ %d)", o.Symbol, o.Quantity, o.Price)
	}
	return fmt.Sprintf("(%s, SELL, %d @ %d)", o.Symbol, -o.Quantity, o.Price)
}
