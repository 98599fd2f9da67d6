package types

import (
	"sort"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// OrderDepth holds the resting book for one symbol at one timestamp.
// Both maps are keyed by price. Buy volumes are positive, sell volumes
// negative.
type OrderDepth struct {
	BuyOrders  map[int]int `json:"buy_orders"`
	SellOrders map[int]int `json:"sell_orders"`
}

func NewOrderDepth() *OrderDepth {
	return &OrderDepth{
		BuyOrders:  make(map[int]int),
		SellOrders: make(map[int]int),
	}
}

// BestBid returns the highest price any buyer is resting at.
func (d *OrderDepth) BestBid() (int, bool) {
	best := 0
	found := false
	for price := range d.BuyOrders {
		if !found || price > best {
			best = price
			found = true
		}
	}
	return best, found
}

// BestAsk returns the lowest price any seller is resting at.
func (d *OrderDepth) BestAsk() (int, bool) {
	best := 0
	found := false
	for price := range d.SellOrders {
		if !found || price < best {
			best = price
			found = true
		}
	}
	return best, found
}

// MidPrice is the midpoint of the best bid and ask. The second return is
// false when either side of the book is empty.
func (d *OrderDepth) MidPrice() (decimal.Decimal, bool) {
	bid, okBid := d.BestBid()
	ask, okAsk := d.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(bid + ask)).Div(two), true
}

// SortedBuyPrices returns buy levels best-first (descending).
func (d *OrderDepth) SortedBuyPrices() []int {
	prices := make([]int, 0, len(d.BuyOrders))
	for price := range d.BuyOrders {
		prices = append(prices, price)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(prices)))
	return prices
}

// SortedSellPrices returns sell levels best-first (ascending).
func (d *OrderDepth) SortedSellPrices() []int {
	prices := make([]int, 0, len(d.SellOrders))
	for price := range d.SellOrders {
		prices = append(prices, price)
	}
	sort.Ints(prices)
	return prices
}

// Copy returns a deep copy, so the matcher can consume volume without
// mutating the depth the trader saw.
func (d *OrderDepth) Copy() *OrderDepth {
	cp := NewOrderDepth()
	for price, volume := range d.BuyOrders {
		cp.BuyOrders[price] = volume
	}
	for price, volume := range d.SellOrders {
		cp.SellOrders[price] = volume
	}
	return cp
}
