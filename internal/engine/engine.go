package engine

import (
	"context"
	"errors"
	"fmt"

	"prosperitybt/internal/rounddata"
)

var (
	ErrNoTrader  = errors.New("no trader configured")
	ErrNoDays    = errors.New("data source returned no days")
	ErrNilConfig = errors.New("nil run config")
)

// Engine wires a data source, a trader and a run config together.
type Engine struct {
	cfg    *Config
	trader Trader
	source dataSource
}

func New(cfg *Config, trader Trader, source rounddata.Source) *Engine {
	return &Engine{
		cfg:    cfg,
		trader: trader,
		source: source,
	}
}

// Run loads the round data, replays it against the trader, writes the log
// file and returns the run report.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if e.cfg == nil {
		return nil, ErrNilConfig
	}
	if e.trader == nil {
		return nil, ErrNoTrader
	}

	days, err := e.source.LoadRound(ctx, e.cfg.Round, e.cfg.Days)
	if err != nil {
		return nil, fmt.Errorf("load round %d: %w", e.cfg.Round, err)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("round %d: %w", e.cfg.Round, ErrNoDays)
	}

	b := newBacktester(e.cfg, e.trader)
	if err := e.trader.Init(b.api()); err != nil {
		return nil, fmt.Errorf("init trader: %w", err)
	}
	if err := b.runDays(days); err != nil {
		return nil, fmt.Errorf("run round %d: %w", e.cfg.Round, err)
	}

	if e.cfg.LogPath != "" {
		if err := b.log.WriteFile(e.cfg.LogPath); err != nil {
			return nil, err
		}
	}

	report := generateReport(e.cfg, b)
	return report, nil
}
