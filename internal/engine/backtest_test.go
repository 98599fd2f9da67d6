package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"prosperitybt/internal/rounddata"
	"prosperitybt/types"
)

type stubSource struct {
	days []rounddata.Day
}

func (s *stubSource) LoadRound(_ context.Context, _ int, _ []int) ([]rounddata.Day, error) {
	return s.days, nil
}

// scriptedTrader replays fixed orders and conversion requests per timestamp
// and records the states it was shown.
type scriptedTrader struct {
	script      map[int64][]types.Order
	conversions map[int64]int
	states      []*types.TradingState
}

func (t *scriptedTrader) Init(api StrategyAPI) error {
	return nil
}

func (t *scriptedTrader) Run(state *types.TradingState) TraderResult {
	t.states = append(t.states, state)
	result := TraderResult{
		Orders:      make(map[types.Symbol][]types.Order),
		Conversions: t.conversions[state.Timestamp],
	}
	for _, ord := range t.script[state.Timestamp] {
		result.Orders[ord.Symbol] = append(result.Orders[ord.Symbol], ord)
	}
	return result
}

func kelpRow(ts int64) rounddata.PriceRow {
	return rounddata.PriceRow{
		Day:        0,
		Timestamp:  ts,
		Product:    "KELP",
		BidPrices:  [3]int{2025, 0, 0},
		BidVolumes: [3]int{10, 0, 0},
		AskPrices:  [3]int{2028, 0, 0},
		AskVolumes: [3]int{7, 0, 0},
		MidPrice:   decimal.RequireFromString("2026.5"),
	}
}

func kelpDay(trades ...types.Trade) rounddata.Day {
	return rounddata.Day{
		Round:  0,
		Day:    0,
		Prices: []rounddata.PriceRow{kelpRow(0), kelpRow(100), kelpRow(200)},
		Trades: trades,
	}
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewConfig(0, map[types.Product]int{"KELP": 50})
	cfg.ShowProgress = false
	cfg.LogPath = filepath.Join(t.TempDir(), "test.log")
	return cfg
}

func TestEngineRun_RoundTrip(t *testing.T) {
	trader := &scriptedTrader{script: map[int64][]types.Order{
		0:   {types.NewOrder("KELP", 2028, 5)},
		100: {types.NewOrder("KELP", 2025, -5)},
	}}
	cfg := testConfig(t)
	eng := New(cfg, trader, &stubSource{days: []rounddata.Day{kelpDay()}})

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(trader.states) != 3 {
		t.Fatalf("trader ran %d times, want 3", len(trader.states))
	}

	// The fill from timestamp 0 shows up in the next state.
	second := trader.states[1]
	if got := second.PositionOf("KELP"); got != 5 {
		t.Errorf("position at ts 100 = %d, want 5", got)
	}
	ownTrades := second.OwnTrades["KELP"]
	if len(ownTrades) != 1 || ownTrades[0].Buyer != types.SubmissionID || ownTrades[0].Price != 2028 {
		t.Errorf("own trades at ts 100 = %v, want one buy @ 2028", ownTrades)
	}

	if len(report.Products) != 1 {
		t.Fatalf("report has %d products, want 1", len(report.Products))
	}
	kelp := report.Products[0]
	if kelp.EndPosition != 0 {
		t.Errorf("end position = %d, want 0", kelp.EndPosition)
	}
	if kelp.Volume != 10 || kelp.Fills != 2 || kelp.MaxPosition != 5 {
		t.Errorf("volume/fills/max = %d/%d/%d, want 10/2/5", kelp.Volume, kelp.Fills, kelp.MaxPosition)
	}
	// Bought 5 @ 2028, sold 5 @ 2025.
	if want := decimal.NewFromInt(-15); !report.TotalPnL.Equal(want) {
		t.Errorf("total PnL = %s, want %s", report.TotalPnL, want)
	}
}

func TestEngineRun_RestingOrderFillsAgainstMarketTrades(t *testing.T) {
	trader := &scriptedTrader{script: map[int64][]types.Order{
		// Below the ask: rests, then meets the ts-100 market trade @ 2024.
		0: {types.NewOrder("KELP", 2026, 10)},
	}}
	day := kelpDay(types.NewTrade("KELP", 2024, 4, "Amir", "Ruby", 100))
	cfg := testConfig(t)
	eng := New(cfg, trader, &stubSource{days: []rounddata.Day{day}})

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	second := trader.states[1]
	if got := second.PositionOf("KELP"); got != 4 {
		t.Errorf("position at ts 100 = %d, want 4", got)
	}
	ownTrades := second.OwnTrades["KELP"]
	if len(ownTrades) != 1 || ownTrades[0].Price != 2026 || ownTrades[0].Quantity != 4 {
		t.Errorf("own trades = %v, want one 4 @ 2026", ownTrades)
	}

	kelp := report.Products[0]
	if kelp.EndPosition != 4 {
		t.Errorf("end position = %d, want 4", kelp.EndPosition)
	}
	// cash -4*2026 marked at mid 2026.5
	if want := decimal.NewFromInt(2); !report.TotalPnL.Equal(want) {
		t.Errorf("total PnL = %s, want %s", report.TotalPnL, want)
	}
}

func TestEngineRun_LimitBreachCancelsSide(t *testing.T) {
	trader := &scriptedTrader{script: map[int64][]types.Order{
		0: {types.NewOrder("KELP", 2028, 60)},
	}}
	cfg := testConfig(t)
	eng := New(cfg, trader, &stubSource{days: []rounddata.Day{kelpDay()}})

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Products) != 0 {
		t.Errorf("expected no product activity, got %v", report.Products)
	}
	if !report.TotalPnL.IsZero() {
		t.Errorf("total PnL = %s, want 0", report.TotalPnL)
	}

	raw, err := os.ReadFile(cfg.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "exceeded position limit") {
		t.Error("sandbox log missing the cancellation note")
	}
}

func TestEngineRun_RestingFillCappedAfterConversion(t *testing.T) {
	// A conversion between placement and the resting fill moves the
	// position, so the fill must be re-capped against the limit: short 10,
	// rest a buy for 60 (projects exactly to the limit), flatten the short
	// via conversion, then meet a 60-lot market trade.
	trader := &scriptedTrader{
		script: map[int64][]types.Order{
			0:   {types.NewOrder("KELP", 2025, -10)},
			100: {types.NewOrder("KELP", 2026, 60)},
		},
		conversions: map[int64]int{100: 10},
	}
	day := kelpDay(types.NewTrade("KELP", 2024, 60, "Amir", "Ruby", 200))
	day.Observations = []rounddata.ObservationRow{{
		Day:       0,
		Timestamp: 100,
		Product:   "KELP",
		Observation: types.ConversionObservation{
			BidPrice: decimal.NewFromInt(2026),
			AskPrice: decimal.NewFromInt(2028),
		},
	}}
	cfg := testConfig(t)
	cfg.ConversionProducts = []types.Product{"KELP"}
	eng := New(cfg, trader, &stubSource{days: []rounddata.Day{day}})

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	last := trader.states[2]
	if got := last.PositionOf("KELP"); got != 50 {
		t.Errorf("position at ts 200 = %d, want 50", got)
	}
	kelp := report.Products[0]
	if kelp.MaxPosition > 50 {
		t.Errorf("max position = %d, breaches limit 50", kelp.MaxPosition)
	}
	if kelp.EndPosition != 50 {
		t.Errorf("end position = %d, want 50", kelp.EndPosition)
	}
}

func TestEngineRun_ZeroQuantityOrderLeavesLogIntact(t *testing.T) {
	trader := &scriptedTrader{script: map[int64][]types.Order{
		0: {types.NewOrder("KELP", 2026, 0), types.NewOrder("KELP", 2026, 5)},
	}}
	cfg := testConfig(t)
	eng := New(cfg, trader, &stubSource{days: []rounddata.Day{kelpDay()}})

	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	raw, err := os.ReadFile(cfg.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	// First sandbox entry sits on the third line, after the header and a
	// blank line.
	lines := strings.Split(string(raw), "\n")
	var entry sandboxEntry
	if err := json.Unmarshal([]byte(lines[2]), &entry); err != nil {
		t.Fatalf("unmarshal sandbox entry %q: %v", lines[2], err)
	}
	var payload []any
	if err := json.Unmarshal([]byte(entry.LambdaLog), &payload); err != nil {
		t.Fatalf("unmarshal lambda log: %v", err)
	}

	// The orders element must carry the trader's list as returned, the
	// zero-quantity order included and nothing duplicated.
	orders, ok := payload[1].([]any)
	if !ok {
		t.Fatalf("payload[1] = %T, want array", payload[1])
	}
	if len(orders) != 2 {
		t.Fatalf("logged %d orders, want 2: %v", len(orders), orders)
	}
	first, second := orders[0].([]any), orders[1].([]any)
	if first[0] != "KELP" || first[1] != float64(2026) || first[2] != float64(0) {
		t.Errorf("first logged order = %v, want [KELP 2026 0]", first)
	}
	if second[2] != float64(5) {
		t.Errorf("second logged order = %v, want quantity 5", second)
	}
}

func TestEngineRun_WritesVisualizerLog(t *testing.T) {
	trader := &scriptedTrader{script: map[int64][]types.Order{
		0: {types.NewOrder("KELP", 2028, 5)},
	}}
	cfg := testConfig(t)
	eng := New(cfg, trader, &stubSource{days: []rounddata.Day{kelpDay()}})

	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	raw, err := os.ReadFile(cfg.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)

	for _, section := range []string{"Sandbox logs:", "Activities log:", "Trade History:"} {
		if !strings.Contains(out, section) {
			t.Errorf("log missing section %q", section)
		}
	}
	if !strings.Contains(out, activitiesHeader) {
		t.Error("log missing activities header")
	}
	if !strings.Contains(out, `"symbol": "KELP"`) {
		t.Error("trade history missing our fill")
	}
}

func TestEngineRun_NoTrader(t *testing.T) {
	cfg := testConfig(t)
	if _, err := New(cfg, nil, &stubSource{}).Run(context.Background()); err != ErrNoTrader {
		t.Errorf("error = %v, want ErrNoTrader", err)
	}
}
