package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderDepth_BestPrices(t *testing.T) {
	tests := []struct {
		name      string
		buys      map[int]int
		sells     map[int]int
		wantBid   int
		wantBidOk bool
		wantAsk   int
		wantAskOk bool
	}{
		{
			name:      "empty book",
			buys:      map[int]int{},
			sells:     map[int]int{},
			wantBidOk: false,
			wantAskOk: false,
		},
		{
			name:      "one sided",
			buys:      map[int]int{9995: 10, 9998: 5},
			sells:     map[int]int{},
			wantBid:   9998,
			wantBidOk: true,
			wantAskOk: false,
		},
		{
			name:      "two sided",
			buys:      map[int]int{9995: 10, 9998: 5},
			sells:     map[int]int{10002: -5, 10005: -10},
			wantBid:   9998,
			wantBidOk: true,
			wantAsk:   10002,
			wantAskOk: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			depth := &OrderDepth{BuyOrders: tt.buys, SellOrders: tt.sells}

			bid, ok := depth.BestBid()
			if ok != tt.wantBidOk || (ok && bid != tt.wantBid) {
				t.Errorf("BestBid() = %d, %v, want %d, %v", bid, ok, tt.wantBid, tt.wantBidOk)
			}
			ask, ok := depth.BestAsk()
			if ok != tt.wantAskOk || (ok && ask != tt.wantAsk) {
				t.Errorf("BestAsk() = %d, %v, want %d, %v", ask, ok, tt.wantAsk, tt.wantAskOk)
			}
		})
	}
}

func TestOrderDepth_MidPrice(t *testing.T) {
	depth := &OrderDepth{
		BuyOrders:  map[int]int{9998: 5},
		SellOrders: map[int]int{10003: -5},
	}
	mid, ok := depth.MidPrice()
	if !ok {
		t.Fatal("MidPrice() not ok on two-sided book")
	}
	if !mid.Equal(decimal.RequireFromString("10000.5")) {
		t.Errorf("MidPrice() = %s, want 10000.5", mid)
	}

	empty := NewOrderDepth()
	if _, ok := empty.MidPrice(); ok {
		t.Error("MidPrice() ok on empty book")
	}
}

func TestOrderDepth_SortedPrices(t *testing.T) {
	depth := &OrderDepth{
		BuyOrders:  map[int]int{9995: 10, 9998: 5, 9990: 1},
		SellOrders: map[int]int{10005: -10, 10002: -5},
	}

	buys := depth.SortedBuyPrices()
	if len(buys) != 3 || buys[0] != 9998 || buys[2] != 9990 {
		t.Errorf("SortedBuyPrices() = %v, want best first", buys)
	}
	sells := depth.SortedSellPrices()
	if len(sells) != 2 || sells[0] != 10002 {
		t.Errorf("SortedSellPrices() = %v, want best first", sells)
	}
}

func TestOrderDepth_CopyIsDeep(t *testing.T) {
	depth := &OrderDepth{
		BuyOrders:  map[int]int{9998: 5},
		SellOrders: map[int]int{10002: -5},
	}
	cp := depth.Copy()
	cp.BuyOrders[9998] = 1
	delete(cp.SellOrders, 10002)

	if depth.BuyOrders[9998] != 5 {
		t.Error("Copy() shares buy orders with the original")
	}
	if depth.SellOrders[10002] != -5 {
		t.Error("Copy() shares sell orders with the original")
	}
}
