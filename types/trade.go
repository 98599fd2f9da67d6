package types

// Trade is a fill that happened on the exchange. Own trades carry
// SubmissionID on our side; market trades are between bots.
type Trade struct {
	Timestamp int64   `json:"timestamp"`
	Buyer     UserID  `json:"buyer"`
	Seller    UserID  `json:"seller"`
	Symbol    Symbol  `json:"symbol"`
	Currency  Product `json:"currency"`
	Price     int     `json:"price"`
	Quantity  int     `json:"quantity"`
}

func NewTrade(symbol Symbol, price, quantity int, buyer, seller UserID, timestamp int64) Trade {
	return Trade{
		Timestamp: timestamp,
		Buyer:     buyer,
		Seller:    seller,
		Symbol:    symbol,
		Currency:  Seashells,
		Price:     price,
		Quantity:  quantity,
	}
}
