package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"prosperitybt/types"
)

// ProductSummary is one product's line in the run report.
type ProductSummary struct {
	Product     types.Product
	PnL         decimal.Decimal
	Volume      int
	Fills       int
	MaxPosition int
	EndPosition int
}

type Report struct {
	Round    int
	TotalPnL decimal.Decimal
	Products []ProductSummary
	LogPath  string
}

func generateReport(cfg *Config, b *backtester) *Report {
	report := &Report{
		Round:   cfg.Round,
		LogPath: cfg.LogPath,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		report.Products = calcProductSummaries(b.portfolio, b.lastMids)
	}()
	go func() {
		defer wg.Done()
		report.TotalPnL = calcTotalPnL(b.portfolio, b.lastMids)
	}()
	wg.Wait()

	return report
}

func calcProductSummaries(p *portfolio, mids map[types.Product]decimal.Decimal) []ProductSummary {
	products := make([]types.Product, 0, len(p.cash))
	for product := range p.cash {
		products = append(products, product)
	}
	sort.Strings(products)

	summaries := make([]ProductSummary, 0, len(products))
	for _, product := range products {
		summaries = append(summaries, ProductSummary{
			Product:     product,
			PnL:         p.pnl(product, mids[product]),
			Volume:      p.volume[product],
			Fills:       p.fillCount[product],
			MaxPosition: p.maxAbsPos[product],
			EndPosition: p.positions[product],
		})
	}
	return summaries
}

func calcTotalPnL(p *portfolio, mids map[types.Product]decimal.Decimal) decimal.Decimal {
	return p.totalPnL(mids)
}

func (r *Report) Print() {
	fmt.Println("===== Backtest Report =====")
	fmt.Printf("Round:                 %d\n", r.Round)

	fmt.Println("\n-- Per Product --")
	for _, s := range r.Products {
		fmt.Printf("%-22s PnL %s, volume %d, fills %d, max position %d, end position %d\n",
			s.Product+":", s.PnL.StringFixed(2), s.Volume, s.Fills, s.MaxPosition, s.EndPosition)
	}

	fmt.Println("\n-- Total --")
	fmt.Printf("Profit and loss:       %s\n", r.TotalPnL.StringFixed(2))
	if r.LogPath != "" {
		fmt.Printf("Log file:              %s\n", r.LogPath)
	}
	fmt.Println("===========================")
}
