package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"prosperitybt/internal/rounddata"
	"prosperitybt/types"
)

const getPriceRowsSQL = `
SELECT day, timestamp, product,
       COALESCE(bid_price_1, 0), COALESCE(bid_volume_1, 0),
       COALESCE(bid_price_2, 0), COALESCE(bid_volume_2, 0),
       COALESCE(bid_price_3, 0), COALESCE(bid_volume_3, 0),
       COALESCE(ask_price_1, 0), COALESCE(ask_volume_1, 0),
       COALESCE(ask_price_2, 0), COALESCE(ask_volume_2, 0),
       COALESCE(ask_price_3, 0), COALESCE(ask_volume_3, 0),
       mid_price, COALESCE(profit_and_loss, 0)
FROM prices
WHERE round = $1 AND day = $2
ORDER BY timestamp, product`

const getTradesSQL = `
SELECT timestamp, buyer, seller, symbol, currency, price, quantity
FROM trades
WHERE round = $1 AND day = $2
ORDER BY timestamp`

const getObservationsSQL = `
SELECT day, timestamp, product,
       bid_price, ask_price, transport_fees, export_tariff, import_tariff,
       sugar_price, sunlight_index
FROM observations
WHERE round = $1 AND day = $2
ORDER BY timestamp`

const getRoundDaysSQL = `
SELECT DISTINCT day FROM prices WHERE round = $1 ORDER BY day`

// queries runs the round-data SQL against the pool. It backs every store
// seam on Database.
type queries struct {
	conn *pgxpool.Pool
}

func (q *queries) GetPriceRows(ctx context.Context, round, day int) ([]rounddata.PriceRow, error) {
	rows, err := q.conn.Query(ctx, getPriceRowsSQL, round, day)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var out []rounddata.PriceRow
	for rows.Next() {
		var r rounddata.PriceRow
		err := rows.Scan(
			&r.Day, &r.Timestamp, &r.Product,
			&r.BidPrices[0], &r.BidVolumes[0],
			&r.BidPrices[1], &r.BidVolumes[1],
			&r.BidPrices[2], &r.BidVolumes[2],
			&r.AskPrices[0], &r.AskVolumes[0],
			&r.AskPrices[1], &r.AskVolumes[1],
			&r.AskPrices[2], &r.AskVolumes[2],
			&r.MidPrice, &r.ProfitAndLoss,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *queries) GetTrades(ctx context.Context, round, day int) ([]types.Trade, error) {
	rows, err := q.conn.Query(ctx, getTradesSQL, round, day)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []types.Trade
	for rows.Next() {
		var t types.Trade
		if err := rows.Scan(&t.Timestamp, &t.Buyer, &t.Seller, &t.Symbol, &t.Currency, &t.Price, &t.Quantity); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *queries) GetObservations(ctx context.Context, round, day int) ([]rounddata.ObservationRow, error) {
	rows, err := q.conn.Query(ctx, getObservationsSQL, round, day)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []rounddata.ObservationRow
	for rows.Next() {
		var r rounddata.ObservationRow
		err := rows.Scan(
			&r.Day, &r.Timestamp, &r.Product,
			&r.Observation.BidPrice, &r.Observation.AskPrice,
			&r.Observation.TransportFees, &r.Observation.ExportTariff,
			&r.Observation.ImportTariff, &r.Observation.SugarPrice,
			&r.Observation.SunlightIndex,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *queries) GetRoundDays(ctx context.Context, round int) ([]int, error) {
	rows, err := q.conn.Query(ctx, getRoundDaysSQL, round)
	if err != nil {
		return nil, fmt.Errorf("query round days: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		out = append(out, day)
	}
	return out, rows.Err()
}
