package types

// TradingState is everything the trader sees at one timestamp: the books,
// the trades since its last invocation, its positions and the observations.
type TradingState struct {
	TraderData   string                 `json:"traderData"`
	Timestamp    int64                  `json:"timestamp"`
	Listings     map[Symbol]Listing     `json:"listings"`
	OrderDepths  map[Symbol]*OrderDepth `json:"order_depths"`
	OwnTrades    map[Symbol][]Trade     `json:"own_trades"`
	MarketTrades map[Symbol][]Trade     `json:"market_trades"`
	Position     map[Product]int        `json:"position"`
	Observations *Observation           `json:"observations"`
}

func NewTradingState(timestamp int64) *TradingState {
	return &TradingState{
		Timestamp:    timestamp,
		Listings:     make(map[Symbol]Listing),
		OrderDepths:  make(map[Symbol]*OrderDepth),
		OwnTrades:    make(map[Symbol][]Trade),
		MarketTrades: make(map[Symbol][]Trade),
		Position:     make(map[Product]int),
	}
}

// PositionOf returns the signed position for a product, zero when flat.
func (s *TradingState) PositionOf(product Product) int {
	return s.Position[product]
}
