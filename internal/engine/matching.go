package engine

import "prosperitybt/types"

// matchAgainstDepth fills an order against the opposing side of the book,
// best levels first. The depth is consumed in place, so pass a copy of the
// snapshot the trader saw. Fills carry SubmissionID on our side of the
// trade and always a positive quantity.
func matchAgainstDepth(ord types.Order, depth *types.OrderDepth, timestamp int64) ([]types.Trade, types.Order) {
	var fills []types.Trade

	if ord.IsBuy() {
		remaining := ord.Quantity
		for _, price := range depth.SortedSellPrices() {
			if price > ord.Price || remaining == 0 {
				break
			}
			available := -depth.SellOrders[price]
			qty := min(available, remaining)
			if qty <= 0 {
				continue
			}
			fills = append(fills, types.NewTrade(ord.Symbol, price, qty, types.SubmissionID, "", timestamp))
			remaining -= qty
			if available == qty {
				delete(depth.SellOrders, price)
			} else {
				depth.SellOrders[price] += qty
			}
		}
		ord.Quantity = remaining
		return fills, ord
	}

	remaining := -ord.Quantity
	for _, price := range depth.SortedBuyPrices() {
		if price < ord.Price || remaining == 0 {
			break
		}
		available := depth.BuyOrders[price]
		qty := min(available, remaining)
		if qty <= 0 {
			continue
		}
		fills = append(fills, types.NewTrade(ord.Symbol, price, qty, "", types.SubmissionID, timestamp))
		remaining -= qty
		if available == qty {
			delete(depth.BuyOrders, price)
		} else {
			depth.BuyOrders[price] -= qty
		}
	}
	ord.Quantity = -remaining
	return fills, ord
}

// matchAgainstTrades fills a resting order against recorded market trades.
// A market trade only fills us when its price strictly beats our limit;
// trading at our own quoted price is assumed to have gone to the bots.
// Each trade's volume can only be used once.
func matchAgainstTrades(ord types.Order, trades []types.Trade, used []int, timestamp int64) ([]types.Trade, types.Order, []int) {
	var fills []types.Trade
	if used == nil {
		used = make([]int, len(trades))
	}

	if ord.IsBuy() {
		remaining := ord.Quantity
		for i, trade := range trades {
			if remaining == 0 {
				break
			}
			if trade.Symbol != ord.Symbol || trade.Price >= ord.Price {
				continue
			}
			available := trade.Quantity - used[i]
			qty := min(available, remaining)
			if qty <= 0 {
				continue
			}
			fills = append(fills, types.NewTrade(ord.Symbol, ord.Price, qty, types.SubmissionID, "", timestamp))
			used[i] += qty
			remaining -= qty
		}
		ord.Quantity = remaining
		return fills, ord, used
	}

	remaining := -ord.Quantity
	for i, trade := range trades {
		if remaining == 0 {
			break
		}
		if trade.Symbol != ord.Symbol || trade.Price <= ord.Price {
			continue
		}
		available := trade.Quantity - used[i]
		qty := min(available, remaining)
		if qty <= 0 {
			continue
		}
		fills = append(fills, types.NewTrade(ord.Symbol, ord.Price, qty, "", types.SubmissionID, timestamp))
		used[i] += qty
		remaining -= qty
	}
	ord.Quantity = -remaining
	return fills, ord, used
}
