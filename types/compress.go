package types

import "sort"

// The web visualizer decodes a compact positional encoding of the state
// rather than full JSON objects. These helpers produce that encoding;
// the log writer serializes it.

// CompressState encodes a state as
// [timestamp, traderData, listings, orderDepths, ownTrades, marketTrades, position, observations].
func CompressState(s *TradingState, traderData string) []any {
	return []any{
		s.Timestamp,
		traderData,
		compressListings(s.Listings),
		compressOrderDepths(s.OrderDepths),
		CompressTrades(s.OwnTrades),
		CompressTrades(s.MarketTrades),
		s.Position,
		compressObservations(s.Observations),
	}
}

// CompressOrders encodes orders as [[symbol, price, quantity], ...].
func CompressOrders(orders map[Symbol][]Order) [][]any {
	compressed := make([][]any, 0)
	for _, symbol := range sortedKeys(orders) {
		for _, order := range orders[symbol] {
			compressed = append(compressed, []any{order.Symbol, order.Price, order.Quantity})
		}
	}
	return compressed
}

// CompressTrades encodes trades as
// [[symbol, price, quantity, buyer, seller, timestamp], ...].
func CompressTrades(trades map[Symbol][]Trade) [][]any {
	compressed := make([][]any, 0)
	for _, symbol := range sortedKeys(trades) {
		for _, trade := range trades[symbol] {
			compressed = append(compressed, []any{
				trade.Symbol,
				trade.Price,
				trade.Quantity,
				trade.Buyer,
				trade.Seller,
				trade.Timestamp,
			})
		}
	}
	return compressed
}

func compressListings(listings map[Symbol]Listing) [][]any {
	compressed := make([][]any, 0, len(listings))
	for _, symbol := range sortedKeys(listings) {
		listing := listings[symbol]
		compressed = append(compressed, []any{listing.Symbol, listing.Product, listing.Denomination})
	}
	return compressed
}

func compressOrderDepths(depths map[Symbol]*OrderDepth) map[Symbol][]any {
	compressed := make(map[Symbol][]any, len(depths))
	for symbol, depth := range depths {
		compressed[symbol] = []any{depth.BuyOrders, depth.SellOrders}
	}
	return compressed
}

func compressObservations(obs *Observation) []any {
	if obs == nil {
		return []any{map[Product]float64{}, map[Product][]float64{}}
	}
	plain := make(map[Product]float64, len(obs.PlainValueObservations))
	for product, value := range obs.PlainValueObservations {
		plain[product] = value.InexactFloat64()
	}
	conversions := make(map[Product][]float64, len(obs.ConversionObservations))
	for product, conv := range obs.ConversionObservations {
		conversions[product] = []float64{
			conv.BidPrice.InexactFloat64(),
			conv.AskPrice.InexactFloat64(),
			conv.TransportFees.InexactFloat64(),
			conv.ExportTariff.InexactFloat64(),
			conv.ImportTariff.InexactFloat64(),
			conv.SugarPrice.InexactFloat64(),
			conv.SunlightIndex.InexactFloat64(),
		}
	}
	return []any{plain, conversions}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
