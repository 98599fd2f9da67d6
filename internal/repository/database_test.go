package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"prosperitybt/internal/rounddata"
	"prosperitybt/types"
)

type mockPriceStore struct {
	rows map[int][]rounddata.PriceRow
	err  error
}

func (m *mockPriceStore) GetPriceRows(_ context.Context, _, day int) ([]rounddata.PriceRow, error) {
	return m.rows[day], m.err
}

type mockTradeStore struct {
	trades map[int][]types.Trade
	err    error
}

func (m *mockTradeStore) GetTrades(_ context.Context, _, day int) ([]types.Trade, error) {
	return m.trades[day], m.err
}

type mockObservationStore struct {
	rows map[int][]rounddata.ObservationRow
}

func (m *mockObservationStore) GetObservations(_ context.Context, _, day int) ([]rounddata.ObservationRow, error) {
	return m.rows[day], nil
}

type mockDayStore struct {
	days []int
	err  error
}

func (m *mockDayStore) GetRoundDays(_ context.Context, _ int) ([]int, error) {
	return m.days, m.err
}

func resinRow(day int, ts int64) rounddata.PriceRow {
	return rounddata.PriceRow{
		Day:        day,
		Timestamp:  ts,
		Product:    "RAINFOREST_RESIN",
		BidPrices:  [3]int{9998, 0, 0},
		BidVolumes: [3]int{5, 0, 0},
		AskPrices:  [3]int{10002, 0, 0},
		AskVolumes: [3]int{5, 0, 0},
		MidPrice:   decimal.NewFromInt(10000),
	}
}

func TestDatabaseLoadRound(t *testing.T) {
	db := Database{
		prices: &mockPriceStore{rows: map[int][]rounddata.PriceRow{
			-1: {resinRow(-1, 0)},
			0:  {resinRow(0, 0), resinRow(0, 100)},
		}},
		trades: &mockTradeStore{trades: map[int][]types.Trade{
			0: {types.NewTrade("RAINFOREST_RESIN", 10000, 3, "Amir", "Ruby", 0)},
		}},
		observations: &mockObservationStore{},
		days:         &mockDayStore{days: []int{-1, 0}},
	}

	days, err := db.LoadRound(context.Background(), 0, nil)
	if err != nil {
		t.Fatalf("LoadRound() error = %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Day != -1 || days[1].Day != 0 {
		t.Errorf("day order = %d, %d", days[0].Day, days[1].Day)
	}
	if len(days[1].Prices) != 2 {
		t.Errorf("day 0 price rows = %d, want 2", len(days[1].Prices))
	}
	if len(days[1].Trades) != 1 {
		t.Errorf("day 0 trades = %d, want 1", len(days[1].Trades))
	}
}

func TestDatabaseLoadRound_ExplicitDaysSkipDiscovery(t *testing.T) {
	db := Database{
		prices: &mockPriceStore{rows: map[int][]rounddata.PriceRow{
			0: {resinRow(0, 0)},
		}},
		trades:       &mockTradeStore{},
		observations: &mockObservationStore{},
		days:         &mockDayStore{err: errors.New("must not be called")},
	}

	days, err := db.LoadRound(context.Background(), 0, []int{0})
	if err != nil {
		t.Fatalf("LoadRound() error = %v", err)
	}
	if len(days) != 1 || days[0].Day != 0 {
		t.Fatalf("days = %v", days)
	}
}

func TestDatabaseLoadRound_RoundNotFound(t *testing.T) {
	db := Database{days: &mockDayStore{}}

	_, err := db.LoadRound(context.Background(), 9, nil)
	if !errors.Is(err, ErrRoundNotFound) {
		t.Errorf("error = %v, want ErrRoundNotFound", err)
	}
}

func TestDatabaseLoadRound_NoPriceRows(t *testing.T) {
	db := Database{
		prices:       &mockPriceStore{},
		trades:       &mockTradeStore{},
		observations: &mockObservationStore{},
		days:         &mockDayStore{days: []int{0}},
	}

	_, err := db.LoadRound(context.Background(), 0, nil)
	if !errors.Is(err, ErrNoPriceRows) {
		t.Errorf("error = %v, want ErrNoPriceRows", err)
	}
}

func TestDatabaseLoadRound_StoreError(t *testing.T) {
	storeErr := errors.New("connection reset")
	db := Database{
		prices: &mockPriceStore{rows: map[int][]rounddata.PriceRow{
			0: {resinRow(0, 0)},
		}},
		trades:       &mockTradeStore{err: storeErr},
		observations: &mockObservationStore{},
		days:         &mockDayStore{days: []int{0}},
	}

	_, err := db.LoadRound(context.Background(), 0, nil)
	if !errors.Is(err, storeErr) {
		t.Errorf("error = %v, want wrapped store error", err)
	}
}
