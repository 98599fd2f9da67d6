package engine

import "prosperitybt/types"

// Config describes one backtest run.
type Config struct {
	Round int
	// Days to replay; empty means every day the data source has.
	Days []int
	// Position limit per product. Orders for products without a limit are
	// cancelled wholesale.
	Limits map[types.Product]int
	// Products settled through conversions rather than the book.
	ConversionProducts []types.Product
	LogPath            string
	ShowProgress       bool
}

func NewConfig(round int, limits map[types.Product]int) *Config {
	return &Config{
		Round:        round,
		Limits:       limits,
		ShowProgress: true,
	}
}
