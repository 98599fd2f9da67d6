package engine

import (
	"errors"

	"github.com/shopspring/decimal"

	"prosperitybt/types"
)

var ErrUnknownOwnTrade = errors.New("own trade without a submission side")

// portfolio tracks signed positions and per-product cash flow in seashells.
// PnL for a product is its cash flow plus the position marked at mid.
type portfolio struct {
	cash      map[types.Product]decimal.Decimal
	positions map[types.Product]int
	limits    map[types.Product]int

	// run statistics for the final report
	volume    map[types.Product]int
	fillCount map[types.Product]int
	maxAbsPos map[types.Product]int
}

func newPortfolio(limits map[types.Product]int) *portfolio {
	return &portfolio{
		cash:      make(map[types.Product]decimal.Decimal),
		positions: make(map[types.Product]int),
		limits:    limits,
		volume:    make(map[types.Product]int),
		fillCount: make(map[types.Product]int),
		maxAbsPos: make(map[types.Product]int),
	}
}

// applyOwnTrade books one of our fills: position moves by the signed
// quantity, cash by the opposite value.
func (p *portfolio) applyOwnTrade(t types.Trade) error {
	qty := t.Quantity
	switch {
	case t.Buyer == types.SubmissionID:
		// qty stays positive
	case t.Seller == types.SubmissionID:
		qty = -qty
	default:
		return ErrUnknownOwnTrade
	}

	p.positions[t.Symbol] += qty
	p.cash[t.Symbol] = p.cash[t.Symbol].Sub(decimal.NewFromInt(int64(qty * t.Price)))

	p.volume[t.Symbol] += t.Quantity
	p.fillCount[t.Symbol]++
	if abs := absInt(p.positions[t.Symbol]); abs > p.maxAbsPos[t.Symbol] {
		p.maxAbsPos[t.Symbol] = abs
	}
	return nil
}

// cancelSides decides which sides of an order set must be dropped so the
// product limit cannot be breached even if every order fills. Products
// without a configured limit lose both sides.
func (p *portfolio) cancelSides(product types.Product, orders []types.Order) (dropBuys, dropSells bool) {
	limit, ok := p.limits[product]
	if !ok {
		return true, true
	}

	totalBuy, totalSell := 0, 0
	for _, ord := range orders {
		if ord.IsBuy() {
			totalBuy += ord.Quantity
		} else {
			totalSell += -ord.Quantity
		}
	}

	pos := p.positions[product]
	dropBuys = pos+totalBuy > limit
	dropSells = pos-totalSell < -limit
	return dropBuys, dropSells
}

func (p *portfolio) position(product types.Product) int {
	return p.positions[product]
}

// headroom returns how much of the order could still fill without pushing
// the position past the limit. Products without a limit have none.
func (p *portfolio) headroom(ord types.Order) int {
	limit, ok := p.limits[ord.Symbol]
	if !ok {
		return 0
	}
	if ord.IsBuy() {
		return limit - p.positions[ord.Symbol]
	}
	return limit + p.positions[ord.Symbol]
}

// pnl marks the product's position at mid and adds the cash flow.
func (p *portfolio) pnl(product types.Product, mid decimal.Decimal) decimal.Decimal {
	pos := decimal.NewFromInt(int64(p.positions[product]))
	return p.cash[product].Add(mid.Mul(pos))
}

func (p *portfolio) totalPnL(mids map[types.Product]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for product := range p.cash {
		total = total.Add(p.pnl(product, mids[product]))
	}
	return total
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
