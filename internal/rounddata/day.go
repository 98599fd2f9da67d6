package rounddata

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"prosperitybt/types"
)

// PriceRow is one product's book snapshot at one timestamp, as recorded in
// the round price data. Empty levels have zero price and volume.
type PriceRow struct {
	Day           int
	Timestamp     int64
	Product       types.Product
	BidPrices     [3]int
	BidVolumes    [3]int
	AskPrices     [3]int
	AskVolumes    [3]int
	MidPrice      decimal.Decimal
	ProfitAndLoss decimal.Decimal
}

// Depth rebuilds the resting book from the recorded levels. Sell volumes
// come out negative, matching the exchange convention.
func (r PriceRow) Depth() *types.OrderDepth {
	depth := types.NewOrderDepth()
	for i := 0; i < 3; i++ {
		if r.BidVolumes[i] > 0 {
			depth.BuyOrders[r.BidPrices[i]] += r.BidVolumes[i]
		}
		if r.AskVolumes[i] > 0 {
			depth.SellOrders[r.AskPrices[i]] -= r.AskVolumes[i]
		}
	}
	return depth
}

// ObservationRow is one conversion quote at one timestamp.
type ObservationRow struct {
	Day         int
	Timestamp   int64
	Product     types.Product
	Observation types.ConversionObservation
}

// Day is one day of round data: ordered price rows, the trades between
// market participants and any conversion observations.
type Day struct {
	Round        int
	Day          int
	Prices       []PriceRow
	Trades       []types.Trade
	Observations []ObservationRow
}

// Timestamps returns the distinct price timestamps of the day in order.
func (d *Day) Timestamps() []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, row := range d.Prices {
		if _, ok := seen[row.Timestamp]; ok {
			continue
		}
		seen[row.Timestamp] = struct{}{}
		out = append(out, row.Timestamp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Source supplies round data to the engine, one Day per data file pair.
type Source interface {
	// LoadRound loads the given days of a round in chronological order.
	// An empty days slice means every day the source has for the round.
	LoadRound(ctx context.Context, round int, days []int) ([]Day, error)
}
