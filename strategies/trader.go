package strategies

import (
	"fmt"
	"sort"

	"prosperitybt/internal/engine"
	"prosperitybt/strategies/kelp"
	"prosperitybt/strategies/resin"
	"prosperitybt/types"
)

// ProductHandler trades a single product. The dispatching Trader calls it
// whenever its product has a book at the current timestamp.
type ProductHandler interface {
	Product() types.Product
	Trade(state *types.TradingState, api engine.StrategyAPI) []types.Order
}

// Trader dispatches each listed product to its handler and collects the
// orders into one result.
type Trader struct {
	api      engine.StrategyAPI
	handlers map[types.Product]ProductHandler
}

func NewTrader(handlers ...ProductHandler) *Trader {
	byProduct := make(map[types.Product]ProductHandler, len(handlers))
	for _, h := range handlers {
		byProduct[h.Product()] = h
	}
	return &Trader{handlers: byProduct}
}

func (t *Trader) Init(api engine.StrategyAPI) error {
	t.api = api
	return nil
}

func (t *Trader) Run(state *types.TradingState) engine.TraderResult {
	result := engine.TraderResult{
		Orders: make(map[types.Symbol][]types.Order),
	}

	symbols := make([]types.Symbol, 0, len(state.OrderDepths))
	for symbol := range state.OrderDepths {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		handler, ok := t.handlers[symbol]
		if !ok {
			continue
		}
		if orders := handler.Trade(state, t.api); len(orders) > 0 {
			result.Orders[symbol] = orders
		}
	}
	return result
}

// New resolves a strategy name from the CLI into a trader.
func New(name string) (engine.Trader, error) {
	switch name {
	case "", "combined":
		return NewTrader(resin.New(), kelp.New()), nil
	case "resin":
		return NewTrader(resin.New()), nil
	case "kelp":
		return NewTrader(kelp.New()), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// Names lists the registered strategy names.
func Names() []string {
	return []string{"combined", "resin", "kelp"}
}
