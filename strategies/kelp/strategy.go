// Package kelp market-makes KELP around a rolling mid price: take crossed
// liquidity first, then quote both sides just inside the touch with
// whatever limit headroom is left.
package kelp

import (
	"github.com/shopspring/decimal"

	"prosperitybt/internal/engine"
	"prosperitybt/types"
)

const (
	product = "KELP"
	window  = 5
)

type Handler struct {
	mids []decimal.Decimal
}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) Product() types.Product {
	return product
}

func (h *Handler) Trade(state *types.TradingState, api engine.StrategyAPI) []types.Order {
	depth, ok := state.OrderDepths[product]
	if !ok {
		return nil
	}
	mid, ok := depth.MidPrice()
	if !ok {
		return nil
	}

	h.mids = append(h.mids, mid)
	if len(h.mids) > window {
		h.mids = h.mids[len(h.mids)-window:]
	}
	fair := int(h.fairValue().Round(0).IntPart())

	position := state.PositionOf(product)
	limit := api.Limit(product)
	buyRoom := limit - position
	sellRoom := limit + position

	var orders []types.Order

	// Take whatever crosses fair value.
	if ask, ok := depth.BestAsk(); ok && ask < fair && buyRoom > 0 {
		qty := min(-depth.SellOrders[ask], buyRoom)
		api.Logf("Buying %d %s @ %d", qty, product, ask)
		orders = append(orders, types.NewOrder(product, ask, qty))
		buyRoom -= qty
	}
	if bid, ok := depth.BestBid(); ok && bid > fair && sellRoom > 0 {
		qty := min(depth.BuyOrders[bid], sellRoom)
		api.Logf("Selling %d %s @ %d", qty, product, bid)
		orders = append(orders, types.NewOrder(product, bid, -qty))
		sellRoom -= qty
	}

	// Quote the remainder just inside the touch, never through fair.
	if buyRoom > 0 {
		price := fair - 2
		if bid, ok := depth.BestBid(); ok && bid+1 < fair {
			price = bid + 1
		}
		orders = append(orders, types.NewOrder(product, price, buyRoom))
	}
	if sellRoom > 0 {
		price := fair + 2
		if ask, ok := depth.BestAsk(); ok && ask-1 > fair {
			price = ask - 1
		}
		orders = append(orders, types.NewOrder(product, price, -sellRoom))
	}

	return orders
}

func (h *Handler) fairValue() decimal.Decimal {
	sum := decimal.Zero
	for _, mid := range h.mids {
		sum = sum.Add(mid)
	}
	return sum.Div(decimal.NewFromInt(int64(len(h.mids))))
}
