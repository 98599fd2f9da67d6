package rounddata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"prosperitybt/types"
)

var (
	ErrNoRoundData       = errors.New("no data files found for round")
	ErrBadPriceRow       = errors.New("malformed price row")
	ErrBadTradeRow       = errors.New("malformed trade row")
	ErrBadObservationRow = errors.New("malformed observation row")
)

// PackSource reads round data packs from disk. A pack directory holds
// prices_round_R_day_D.csv (semicolon separated) and the matching
// trades_round_R_day_D.csv files.
type PackSource struct {
	dir string
}

func NewPackSource(dir string) *PackSource {
	return &PackSource{dir: dir}
}

func (s *PackSource) LoadRound(ctx context.Context, round int, days []int) ([]Day, error) {
	if len(days) == 0 {
		found, err := s.discoverDays(round)
		if err != nil {
			return nil, err
		}
		days = found
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("round %d in %s: %w", round, s.dir, ErrNoRoundData)
	}

	out := make([]Day, len(days))
	g, ctx := errgroup.WithContext(ctx)
	for i, dayNum := range days {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			day, err := s.loadDay(round, dayNum)
			if err != nil {
				return err
			}
			out[i] = *day
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PackSource) discoverDays(round int) ([]int, error) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("prices_round_%d_day_*.csv", round))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	var days []int
	for _, match := range matches {
		name := strings.TrimSuffix(filepath.Base(match), ".csv")
		idx := strings.LastIndex(name, "_")
		if idx < 0 {
			continue
		}
		day, err := strconv.Atoi(name[idx+1:])
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Ints(days)
	return days, nil
}

func (s *PackSource) loadDay(round, dayNum int) (*Day, error) {
	day := &Day{Round: round, Day: dayNum}

	pricesPath := filepath.Join(s.dir, fmt.Sprintf("prices_round_%d_day_%d.csv", round, dayNum))
	prices, err := readPricesFile(pricesPath)
	if err != nil {
		return nil, fmt.Errorf("load round %d day %d: %w", round, dayNum, err)
	}
	day.Prices = prices

	// Not every round ships a trades file for every day.
	tradesPath := filepath.Join(s.dir, fmt.Sprintf("trades_round_%d_day_%d.csv", round, dayNum))
	trades, err := readTradesFile(tradesPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load round %d day %d: %w", round, dayNum, err)
	}
	day.Trades = trades

	// Observations only exist for rounds with conversion products.
	obsPath := filepath.Join(s.dir, fmt.Sprintf("observations_round_%d_day_%d.csv", round, dayNum))
	observations, err := readObservationsFile(obsPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load round %d day %d: %w", round, dayNum, err)
	}
	day.Observations = observations

	return day, nil
}

func readPricesFile(path string) ([]PriceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPrices(f)
}

func readTradesFile(path string) ([]types.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTrades(f)
}

// ReadPrices parses a semicolon-separated prices file:
// day;timestamp;product;bid_price_1..3;bid_volume_1..3 interleaved;
// ask levels likewise;mid_price;profit_and_loss.
func ReadPrices(r io.Reader) ([]PriceRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var rows []PriceRow
	for i, rec := range records[1:] {
		row, err := parsePriceRow(rec)
		if err != nil {
			return nil, fmt.Errorf("prices line %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parsePriceRow(rec []string) (PriceRow, error) {
	if len(rec) < 17 {
		return PriceRow{}, fmt.Errorf("%w: %d fields", ErrBadPriceRow, len(rec))
	}

	day, err := strconv.Atoi(rec[0])
	if err != nil {
		return PriceRow{}, fmt.Errorf("%w: day %q", ErrBadPriceRow, rec[0])
	}
	timestamp, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return PriceRow{}, fmt.Errorf("%w: timestamp %q", ErrBadPriceRow, rec[1])
	}

	row := PriceRow{
		Day:       day,
		Timestamp: timestamp,
		Product:   rec[2],
	}

	// Levels: bid price/volume pairs in columns 3..8, asks in 9..14.
	for i := 0; i < 3; i++ {
		row.BidPrices[i] = parseLevel(rec[3+i*2])
		row.BidVolumes[i] = parseLevel(rec[4+i*2])
		row.AskPrices[i] = parseLevel(rec[9+i*2])
		row.AskVolumes[i] = parseLevel(rec[10+i*2])
	}

	if row.MidPrice, err = parseDecimal(rec[15]); err != nil {
		return PriceRow{}, fmt.Errorf("%w: mid_price %q", ErrBadPriceRow, rec[15])
	}
	if row.ProfitAndLoss, err = parseDecimal(rec[16]); err != nil {
		return PriceRow{}, fmt.Errorf("%w: profit_and_loss %q", ErrBadPriceRow, rec[16])
	}
	return row, nil
}

func readObservationsFile(path string) ([]ObservationRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadObservations(f)
}

// ReadObservations parses a semicolon-separated observations file:
// day;timestamp;product;bidPrice;askPrice;transportFees;exportTariff;
// importTariff;sugarPrice;sunlightIndex.
func ReadObservations(r io.Reader) ([]ObservationRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var rows []ObservationRow
	for i, rec := range records[1:] {
		row, err := parseObservationRow(rec)
		if err != nil {
			return nil, fmt.Errorf("observations line %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseObservationRow(rec []string) (ObservationRow, error) {
	if len(rec) < 10 {
		return ObservationRow{}, fmt.Errorf("%w: %d fields", ErrBadObservationRow, len(rec))
	}
	day, err := strconv.Atoi(rec[0])
	if err != nil {
		return ObservationRow{}, fmt.Errorf("%w: day %q", ErrBadObservationRow, rec[0])
	}
	timestamp, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return ObservationRow{}, fmt.Errorf("%w: timestamp %q", ErrBadObservationRow, rec[1])
	}

	values := make([]decimal.Decimal, 7)
	for i := range values {
		if values[i], err = parseDecimal(rec[3+i]); err != nil {
			return ObservationRow{}, fmt.Errorf("%w: column %d %q", ErrBadObservationRow, 4+i, rec[3+i])
		}
	}

	return ObservationRow{
		Day:       day,
		Timestamp: timestamp,
		Product:   rec[2],
		Observation: types.ConversionObservation{
			BidPrice:      values[0],
			AskPrice:      values[1],
			TransportFees: values[2],
			ExportTariff:  values[3],
			ImportTariff:  values[4],
			SugarPrice:    values[5],
			SunlightIndex: values[6],
		},
	}, nil
}

// ReadTrades parses a semicolon-separated trades file:
// timestamp;buyer;seller;symbol;currency;price;quantity.
func ReadTrades(r io.Reader) ([]types.Trade, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trades: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var trades []types.Trade
	for i, rec := range records[1:] {
		trade, err := parseTradeRow(rec)
		if err != nil {
			return nil, fmt.Errorf("trades line %d: %w", i+2, err)
		}
		trades = append(trades, trade)
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Timestamp < trades[j].Timestamp })
	return trades, nil
}

func parseTradeRow(rec []string) (types.Trade, error) {
	if len(rec) < 7 {
		return types.Trade{}, fmt.Errorf("%w: %d fields", ErrBadTradeRow, len(rec))
	}
	timestamp, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return types.Trade{}, fmt.Errorf("%w: timestamp %q", ErrBadTradeRow, rec[0])
	}
	// Some packs record prices as floats; the exchange quotes whole numbers.
	price, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return types.Trade{}, fmt.Errorf("%w: price %q", ErrBadTradeRow, rec[5])
	}
	quantity, err := strconv.Atoi(rec[6])
	if err != nil {
		return types.Trade{}, fmt.Errorf("%w: quantity %q", ErrBadTradeRow, rec[6])
	}
	currency := rec[4]
	if currency == "" {
		currency = types.Seashells
	}
	return types.Trade{
		Timestamp: timestamp,
		Buyer:     rec[1],
		Seller:    rec[2],
		Symbol:    rec[3],
		Currency:  currency,
		Price:     int(price),
		Quantity:  quantity,
	}, nil
}

// parseLevel reads an optionally-empty integer level column.
func parseLevel(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(v)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
