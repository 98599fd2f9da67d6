package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"prosperitybt/internal/rounddata"
	"prosperitybt/types"
)

const activitiesHeader = "day;timestamp;product;" +
	"bid_price_1;bid_volume_1;bid_price_2;bid_volume_2;bid_price_3;bid_volume_3;" +
	"ask_price_1;ask_volume_1;ask_price_2;ask_volume_2;ask_price_3;ask_volume_3;" +
	"mid_price;profit_and_loss"

// sandboxEntry is one line of the log's sandbox section.
type sandboxEntry struct {
	SandboxLog string `json:"sandboxLog"`
	LambdaLog  string `json:"lambdaLog"`
	Timestamp  int64  `json:"timestamp"`
}

// logWriter accumulates a run and writes the three-section log file the web
// visualizer understands: sandbox JSON lines, the activities CSV and the
// trade history. Section order and headers are fixed; the visualizer
// rejects anything else.
type logWriter struct {
	sandbox    []sandboxEntry
	activities []string
	trades     []types.Trade
}

func newLogWriter() *logWriter {
	return &logWriter{}
}

func (w *logWriter) addSandbox(timestamp int64, sandboxLog, lambdaLog string) {
	w.sandbox = append(w.sandbox, sandboxEntry{
		SandboxLog: sandboxLog,
		LambdaLog:  lambdaLog,
		Timestamp:  timestamp,
	})
}

// addActivity records one product row, replacing the recorded
// profit_and_loss with the backtest's own.
func (w *logWriter) addActivity(row rounddata.PriceRow, pnl decimal.Decimal) {
	cols := make([]string, 0, 17)
	cols = append(cols, strconv.Itoa(row.Day), strconv.FormatInt(row.Timestamp, 10), row.Product)
	for i := 0; i < 3; i++ {
		cols = append(cols, levelCols(row.BidPrices[i], row.BidVolumes[i])...)
	}
	for i := 0; i < 3; i++ {
		cols = append(cols, levelCols(row.AskPrices[i], row.AskVolumes[i])...)
	}
	cols = append(cols, row.MidPrice.String(), pnl.String())
	w.activities = append(w.activities, strings.Join(cols, ";"))
}

func (w *logWriter) addTrades(trades []types.Trade) {
	w.trades = append(w.trades, trades...)
}

// WriteFile writes the log, creating parent directories as needed.
func (w *logWriter) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := w.write(bw); err != nil {
		return err
	}
	return bw.Flush()
}

func (w *logWriter) write(out io.Writer) error {
	if _, err := fmt.Fprintf(out, "Sandbox logs:\n\n"); err != nil {
		return err
	}
	for _, entry := range w.sandbox {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal sandbox entry: %w", err)
		}
		if _, err := fmt.Fprintf(out, "%s\n", line); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(out, "\n\nActivities log:\n%s\n", activitiesHeader); err != nil {
		return err
	}
	for _, row := range w.activities {
		if _, err := fmt.Fprintf(out, "%s\n", row); err != nil {
			return err
		}
	}

	trades := append([]types.Trade(nil), w.trades...)
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Timestamp < trades[j].Timestamp })
	history, err := json.MarshalIndent(trades, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trade history: %w", err)
	}
	if trades == nil {
		history = []byte("[]")
	}
	if _, err := fmt.Fprintf(out, "\n\n\nTrade History:\n%s\n", history); err != nil {
		return err
	}
	return nil
}

func levelCols(price, volume int) []string {
	if volume == 0 {
		return []string{"", ""}
	}
	return []string{strconv.Itoa(price), strconv.Itoa(volume)}
}

// buildLambdaLog encodes the trader's view of a timestamp the way the
// exchange sandbox does: a compact JSON array of
// [state, orders, conversions, traderData, logs], with the three free-form
// strings truncated to an equal share of what the log budget leaves over.
func buildLambdaLog(state *types.TradingState, result TraderResult, logs string) (string, error) {
	base, err := marshalCompact([]any{
		types.CompressState(state, ""),
		types.CompressOrders(result.Orders),
		result.Conversions,
		"",
		"",
	})
	if err != nil {
		return "", fmt.Errorf("marshal lambda log: %w", err)
	}

	maxItem := (maxLogLength - len(base)) / 3
	payload := []any{
		types.CompressState(state, truncate(state.TraderData, maxItem)),
		types.CompressOrders(result.Orders),
		result.Conversions,
		truncate(result.TraderData, maxItem),
		truncate(logs, maxItem),
	}
	return marshalCompact(payload)
}

func marshalCompact(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
