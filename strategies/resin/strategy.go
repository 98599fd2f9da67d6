// Package resin trades RAINFOREST_RESIN, whose value is anchored around
// 10000 seashells: take any ask below fair and any bid above it, capped by
// the position limit.
package resin

import (
	"prosperitybt/internal/engine"
	"prosperitybt/types"
)

const (
	product   = "RAINFOREST_RESIN"
	fairPrice = 10000
)

type Handler struct{}

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
	position := state.PositionOf(product)
	limit := api.Limit(product)

	var orders []types.Order

	if ask, ok := depth.BestAsk(); ok && ask < fairPrice {
		volume := -depth.SellOrders[ask]
		qty := min(volume, limit-position)
		if qty > 0 {
			api.Logf("Buying %d %s @ %d", qty, product, ask)
			orders = append(orders, types.NewOrder(product, ask, qty))
		}
	}

	if bid, ok := depth.BestBid(); ok && bid > fairPrice {
		volume := depth.BuyOrders[bid]
		qty := min(volume, limit+position)
		if qty > 0 {
			api.Logf("Selling %d %s @ %d", qty, product, bid)
			orders = append(orders, types.NewOrder(product, bid, -qty))
		}
	}

	return orders
}
