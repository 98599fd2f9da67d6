package engine

import (
	"context"

	"prosperitybt/internal/rounddata"
	"prosperitybt/types"
)

// TraderResult is everything a trader hands back for one timestamp.
type TraderResult struct {
	Orders      map[types.Symbol][]types.Order
	Conversions int
	TraderData  string
}

// Trader is the strategy entry point the engine drives once per timestamp.
type Trader interface {
	Init(api StrategyAPI) error
	Run(state *types.TradingState) TraderResult
}

// StrategyAPI is what a trader may call back into during a run.
type StrategyAPI interface {
	// Logf writes to the sandbox log for the current timestamp. The log is
	// truncated to the exchange budget, so keep it short.
	Logf(format string, args ...any)
	// Limit returns the position limit for a product, 0 when unknown.
	Limit(product types.Product) int
}

type dataSource interface {
	LoadRound(ctx context.Context, round int, days []int) ([]rounddata.Day, error)
}
