package portfolioService

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/utils"
	"github.com/shopspring/decimal"
)

// FetchHistory fetches the daily close series for every ticker of the batch
// over the requested lookback window. Fetches are mutually independent: a
// failed ticker degrades to an empty series, the batch itself never fails,
// and N tickers always produce exactly N entries.
func (s *PortfolioService) FetchHistory(ctx context.Context, tickers []string, rng model.Range) []model.TickerHistory {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.FetchHistory"

	slog.Debug("FetchHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("tickers", len(tickers)), slog.String("range", string(rng)))
	defer func() {
		slog.Debug("FetchHistory finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	now := time.Now()
	start := rng.Start(now)

	results := make([]model.TickerHistory, len(tickers))

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()

			points, err := s.marketApi.Historical(ctx, ticker, start, now)
			if err != nil {
				slog.Warn(
					"history fetch failed",
					slog.String("rqID", rqID),
					slog.String("op", op),
					slog.String("ticker", ticker),
					slog.String("err", err.Error()),
				)
				points = []model.HistoricalPoint{}
			}

			results[i] = model.TickerHistory{Ticker: ticker, Points: points}
		}(i, ticker)
	}
	wg.Wait()

	return results
}

// ValueSeries derives the date-aligned portfolio value history for the given
// owner filter. The filter is applied to the holding set before aggregation;
// an empty filtered set yields an empty series without issuing any fetch.
func (s *PortfolioService) ValueSeries(ctx context.Context, owner string, rng model.Range) ([]model.ValuePoint, error) {
	s.mu.RLock()
	holdings := s.holdings
	s.mu.RUnlock()

	holdings = FilterByOwner(holdings, owner)
	if len(holdings) == 0 {
		return []model.ValuePoint{}, nil
	}

	histories := s.FetchHistory(ctx, distinctTickers(holdings), rng)

	return BuildValueSeries(holdings, histories), nil
}

// BuildValueSeries accumulates per-ticker close*quantity into a date-keyed
// map carrying both the running total and the per-ticker breakdown, then
// returns the entries sorted ascending by calendar date. Dates missing from
// some ticker's series simply lack that ticker's contribution: no
// interpolation, no forward-fill. Holdings are included for the whole
// fetched window regardless of purchase date (deliberate simplification).
func BuildValueSeries(holdings []model.Holding, histories []model.TickerHistory) []model.ValuePoint {
	qtyByTicker := make(map[string]decimal.Decimal, len(holdings))
	for _, h := range holdings {
		qtyByTicker[h.Ticker] = qtyByTicker[h.Ticker].Add(decimal.NewFromInt(int64(h.Qty)))
	}

	byDate := make(map[string]*model.ValuePoint)

	for _, th := range histories {
		qty, ok := qtyByTicker[th.Ticker]
		if !ok || qty.IsZero() {
			continue
		}

		for _, p := range th.Points {
			day := p.Date.UTC().Truncate(24 * time.Hour)
			key := day.Format("2006-01-02")

			vp, ok := byDate[key]
			if !ok {
				vp = &model.ValuePoint{Date: day, PerTicker: map[string]decimal.Decimal{}}
				byDate[key] = vp
			}

			dayValue := p.Close.Mul(qty)
			vp.TotalValue = vp.TotalValue.Add(dayValue)
			vp.PerTicker[th.Ticker] = vp.PerTicker[th.Ticker].Add(dayValue)
		}
	}

	series := make([]model.ValuePoint, 0, len(byDate))
	for _, vp := range byDate {
		series = append(series, *vp)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series
}
