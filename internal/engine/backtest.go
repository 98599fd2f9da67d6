package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"prosperitybt/internal/rounddata"
	"prosperitybt/types"
)

// backtester replays round days against a trader, one timestamp at a time.
type backtester struct {
	cfg       *Config
	trader    Trader
	portfolio *portfolio
	log       *logWriter
	sandbox   *sandboxLogger

	traderData string
	// resting carries the unfilled remainder of last tick's orders; they
	// get one chance against the next tick's market trades, then expire.
	resting map[types.Symbol][]types.Order
	// pendingOwn are our fills since the trader last ran.
	pendingOwn map[types.Symbol][]types.Trade
	prevMarket map[types.Symbol][]types.Trade
	lastMids   map[types.Product]decimal.Decimal
}

func newBacktester(cfg *Config, trader Trader) *backtester {
	return &backtester{
		cfg:        cfg,
		trader:     trader,
		portfolio:  newPortfolio(cfg.Limits),
		log:        newLogWriter(),
		sandbox:    &sandboxLogger{},
		resting:    make(map[types.Symbol][]types.Order),
		pendingOwn: make(map[types.Symbol][]types.Trade),
		prevMarket: make(map[types.Symbol][]types.Trade),
		lastMids:   make(map[types.Product]decimal.Decimal),
	}
}

func (b *backtester) api() StrategyAPI {
	return &strategyAPI{log: b.sandbox, limits: b.cfg.Limits}
}

func (b *backtester) runDays(days []rounddata.Day) error {
	for i := range days {
		if err := b.runDay(&days[i]); err != nil {
			return fmt.Errorf("day %d: %w", days[i].Day, err)
		}
	}
	return nil
}

func (b *backtester) runDay(day *rounddata.Day) error {
	timestamps := day.Timestamps()
	bar := b.initProgressBar(day, len(timestamps))

	pricesByTS := make(map[int64][]rounddata.PriceRow)
	for _, row := range day.Prices {
		pricesByTS[row.Timestamp] = append(pricesByTS[row.Timestamp], row)
	}
	tradesByTS := make(map[int64][]types.Trade)
	for _, trade := range day.Trades {
		tradesByTS[trade.Timestamp] = append(tradesByTS[trade.Timestamp], trade)
	}
	observationsByTS := groupObservations(day)

	for _, ts := range timestamps {
		rows := pricesByTS[ts]
		marketTrades := tradesByTS[ts]

		// Last tick's residual orders meet this tick's market trades.
		b.fillResting(marketTrades, ts)

		state, depths := b.buildState(day, ts, rows, observationsByTS[ts])
		result := b.trader.Run(state)
		b.traderData = result.TraderData

		sandboxMsg, err := b.matchResult(state, result, depths, ts)
		if err != nil {
			return err
		}

		logs := b.sandbox.drain()
		lambdaLog, err := buildLambdaLog(state, result, logs)
		if err != nil {
			return err
		}
		b.log.addSandbox(ts, sandboxMsg, lambdaLog)

		for _, row := range rows {
			b.lastMids[row.Product] = row.MidPrice
			b.log.addActivity(row, b.portfolio.pnl(row.Product, row.MidPrice))
		}
		b.log.addTrades(marketTrades)
		b.prevMarket = groupTrades(marketTrades)

		if bar != nil {
			bar.Add(1)
		}
	}

	// Day boundary: resting orders expire, pending trades reported next day.
	b.resting = make(map[types.Symbol][]types.Order)
	if bar != nil {
		bar.Finish()
	}
	return nil
}

// buildState assembles the trader's view for a timestamp and returns it
// along with a private copy of the depths for the matcher to consume.
func (b *backtester) buildState(day *rounddata.Day, ts int64, rows []rounddata.PriceRow, obs *types.Observation) (*types.TradingState, map[types.Symbol]*types.OrderDepth) {
	state := types.NewTradingState(ts)
	state.TraderData = b.traderData

	depths := make(map[types.Symbol]*types.OrderDepth, len(rows))
	for _, row := range rows {
		depth := row.Depth()
		state.Listings[row.Product] = types.NewListing(row.Product, row.Product, types.Seashells)
		state.OrderDepths[row.Product] = depth
		depths[row.Product] = depth.Copy()
	}

	state.OwnTrades = b.pendingOwn
	state.MarketTrades = b.prevMarket
	b.pendingOwn = make(map[types.Symbol][]types.Trade)

	for product, pos := range b.portfolio.positions {
		if pos != 0 {
			state.Position[product] = pos
		}
	}

	if obs != nil {
		state.Observations = obs
	} else {
		state.Observations = types.NewObservation()
	}
	return state, depths
}

// matchResult enforces limits, matches orders against the book and settles
// conversions. Returns the sandbox message for the timestamp.
func (b *backtester) matchResult(state *types.TradingState, result TraderResult, depths map[types.Symbol]*types.OrderDepth, ts int64) (string, error) {
	var notes []string

	for _, symbol := range sortedSymbols(result.Orders) {
		orders := dropEmpty(result.Orders[symbol])
		dropBuys, dropSells := b.portfolio.cancelSides(symbol, orders)
		if dropBuys {
			notes = append(notes, fmt.Sprintf("Orders for product %s exceeded position limit, buy orders cancelled", symbol))
		}
		if dropSells {
			notes = append(notes, fmt.Sprintf("Orders for product %s exceeded position limit, sell orders cancelled", symbol))
		}

		for _, ord := range orders {
			if (ord.IsBuy() && dropBuys) || (!ord.IsBuy() && dropSells) {
				continue
			}
			depth, ok := depths[symbol]
			if !ok {
				notes = append(notes, fmt.Sprintf("No market data for product %s, order cancelled", symbol))
				continue
			}

			fills, residual := matchAgainstDepth(ord, depth, ts)
			for _, fill := range fills {
				if err := b.portfolio.applyOwnTrade(fill); err != nil {
					return "", err
				}
			}
			b.pendingOwn[symbol] = append(b.pendingOwn[symbol], fills...)
			b.log.addTrades(fills)

			if residual.Quantity != 0 {
				b.resting[symbol] = append(b.resting[symbol], residual)
			}
		}
	}

	if result.Conversions != 0 {
		for _, product := range b.cfg.ConversionProducts {
			if converted := b.portfolio.applyConversion(product, result.Conversions, state.Observations); converted != 0 {
				notes = append(notes, fmt.Sprintf("Converted %d %s", converted, product))
				break
			}
		}
	}

	return strings.Join(notes, "; "), nil
}

// fillResting matches last tick's residual orders against this tick's
// market trades, then drops whatever is still unfilled.
func (b *backtester) fillResting(marketTrades []types.Trade, ts int64) {
	if len(b.resting) == 0 {
		return
	}
	used := make([]int, len(marketTrades))
	for _, symbol := range sortedSymbols(b.resting) {
		for _, ord := range b.resting[symbol] {
			// Conversions may have moved the position since the order was
			// placed, so re-cap against the limit before filling.
			room := b.portfolio.headroom(ord)
			if room <= 0 {
				continue
			}
			if ord.IsBuy() && ord.Quantity > room {
				ord.Quantity = room
			} else if !ord.IsBuy() && -ord.Quantity > room {
				ord.Quantity = -room
			}

			var fills []types.Trade
			fills, _, used = matchAgainstTrades(ord, marketTrades, used, ts)
			for _, fill := range fills {
				if err := b.portfolio.applyOwnTrade(fill); err != nil {
					continue
				}
				b.pendingOwn[symbol] = append(b.pendingOwn[symbol], fill)
			}
			b.log.addTrades(fills)
		}
	}
	b.resting = make(map[types.Symbol][]types.Order)
}

func (b *backtester) initProgressBar(day *rounddata.Day, total int) *progressbar.ProgressBar {
	if !b.cfg.ShowProgress {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription(fmt.Sprintf("Backtesting round %d day %d...", day.Round, day.Day)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func groupTrades(trades []types.Trade) map[types.Symbol][]types.Trade {
	out := make(map[types.Symbol][]types.Trade)
	for _, trade := range trades {
		out[trade.Symbol] = append(out[trade.Symbol], trade)
	}
	return out
}

func groupObservations(day *rounddata.Day) map[int64]*types.Observation {
	out := make(map[int64]*types.Observation)
	for _, row := range day.Observations {
		obs, ok := out[row.Timestamp]
		if !ok {
			obs = types.NewObservation()
			out[row.Timestamp] = obs
		}
		obs.ConversionObservations[row.Product] = row.Observation
	}
	return out
}

// dropEmpty filters into a fresh slice: the input aliases the trader's
// order list, which the log writer still serializes as returned.
func dropEmpty(orders []types.Order) []types.Order {
	out := make([]types.Order, 0, len(orders))
	for _, ord := range orders {
		if ord.Quantity != 0 {
			out = append(out, ord)
		}
	}
	return out
}

func sortedSymbols[V any](m map[types.Symbol]V) []types.Symbol {
	symbols := make([]types.Symbol, 0, len(m))
	for symbol := range m {
		symbols = append(symbols, symbol)
	}
	// deterministic iteration for reproducible runs
	sort.Strings(symbols)
	return symbols
}
