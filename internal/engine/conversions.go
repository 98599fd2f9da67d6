package engine

import (
	"github.com/shopspring/decimal"

	"prosperitybt/types"
)

// applyConversion settles a conversion request against the observation
// quotes. A positive request buys the product back on the conversion market
// (reducing a short), a negative request sells it off (reducing a long).
// Requests are capped at the position's magnitude; a request with no open
// position or no quote is a no-op. Returns the signed quantity converted.
func (p *portfolio) applyConversion(product types.Product, request int, obs *types.Observation) int {
	if request == 0 || obs == nil {
		return 0
	}
	conv, ok := obs.ConversionObservations[product]
	if !ok {
		return 0
	}

	pos := p.positions[product]
	if request > 0 {
		if pos >= 0 {
			return 0
		}
		qty := min(request, -pos)
		unit := conv.AskPrice.Add(conv.TransportFees).Add(conv.ImportTariff)
		p.cash[product] = p.cash[product].Sub(unit.Mul(decimal.NewFromInt(int64(qty))))
		p.positions[product] += qty
		return qty
	}

	if pos <= 0 {
		return 0
	}
	qty := min(-request, pos)
	unit := conv.BidPrice.Sub(conv.TransportFees).Sub(conv.ExportTariff)
	p.cash[product] = p.cash[product].Add(unit.Mul(decimal.NewFromInt(int64(qty))))
	p.positions[product] -= qty
	return -qty
}
