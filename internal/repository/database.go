package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"prosperitybt/internal/rounddata"
	"prosperitybt/types"
)

// Global error declarations.
var (
	ErrRoundNotFound = errors.New("round not found in datasource")
	ErrNoPriceRows   = errors.New("no price rows found in datasource")
)

type priceStore interface {
	GetPriceRows(ctx context.Context, round, day int) ([]rounddata.PriceRow, error)
}

type tradeStore interface {
	GetTrades(ctx context.Context, round, day int) ([]types.Trade, error)
}

type observationStore interface {
	GetObservations(ctx context.Context, round, day int) ([]rounddata.ObservationRow, error)
}

type dayStore interface {
	GetRoundDays(ctx context.Context, round int) ([]int, error)
}

// Database holds the connection pool behind small query seams so tests can
// swap them out.
type Database struct {
	prices       priceStore
	trades       tradeStore
	observations observationStore
	days         dayStore
	conn         *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Numeric columns decode straight into decimals.
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		return Database{}, err
	}

	q := &queries{conn: conn}
	return Database{
		prices:       q,
		trades:       q,
		observations: q,
		days:         q,
		conn:         conn,
	}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}

// LoadRound implements rounddata.Source on top of the round tables.
func (db *Database) LoadRound(ctx context.Context, round int, days []int) ([]rounddata.Day, error) {
	if len(days) == 0 {
		found, err := db.days.GetRoundDays(ctx, round)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("round %d: %w", round, ErrRoundNotFound)
		}
		days = found
	}

	out := make([]rounddata.Day, 0, len(days))
	for _, dayNum := range days {
		day, err := db.loadDay(ctx, round, dayNum)
		if err != nil {
			return nil, fmt.Errorf("round %d day %d: %w", round, dayNum, err)
		}
		out = append(out, *day)
	}
	return out, nil
}

func (db *Database) loadDay(ctx context.Context, round, dayNum int) (*rounddata.Day, error) {
	prices, err := db.prices.GetPriceRows(ctx, round, dayNum)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, ErrNoPriceRows
	}

	trades, err := db.trades.GetTrades(ctx, round, dayNum)
	if err != nil {
		return nil, err
	}
	observations, err := db.observations.GetObservations(ctx, round, dayNum)
	if err != nil {
		return nil, err
	}

	return &rounddata.Day{
		Round:        round,
		Day:          dayNum,
		Prices:       prices,
		Trades:       trades,
		Observations: observations,
	}, nil
}
