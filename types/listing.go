package types

// Symbol identifies a tradable instrument, Product the underlying good.
// On the exchange they are the same string for every listed product.
type Symbol = string

type Product = string

// UserID identifies a trade counterparty. Our own fills carry SubmissionID.
type UserID = string

const SubmissionID UserID = "SUBMISSION"

// Currency all products are denominated in.
const Seashells Product = "SEASHELLS"

type Listing struct {
	Symbol       Symbol  `json:"symbol"`
	Product      Product `json:"product"`
	Denomination Product `json:"denomination"`
}

func NewListing(symbol Symbol, product Product, denomination Product) Listing {
	return Listing{
		Symbol:       symbol,
		Product:      product,
		Denomination: denomination,
	}
}
