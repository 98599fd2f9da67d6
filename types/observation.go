package types

import "github.com/shopspring/decimal"

// ConversionObservation quotes the terms for converting a position via the
// inter-island market, fees included.
type ConversionObservation struct {
	BidPrice      decimal.Decimal `json:"bidPrice"`
	AskPrice      decimal.Decimal `json:"askPrice"`
	TransportFees decimal.Decimal `json:"transportFees"`
	ExportTariff  decimal.Decimal `json:"exportTariff"`
	ImportTariff  decimal.Decimal `json:"importTariff"`
	SugarPrice    decimal.Decimal `json:"sugarPrice"`
	SunlightIndex decimal.Decimal `json:"sunlightIndex"`
}

type Observation struct {
	PlainValueObservations map[Product]decimal.Decimal       `json:"plainValueObservations"`
	ConversionObservations map[Product]ConversionObservation `json:"conversionObservations"`
}

func NewObservation() *Observation {
	return &Observation{
		PlainValueObservations: make(map[Product]decimal.Decimal),
		ConversionObservations: make(map[Product]ConversionObservation),
	}
}
