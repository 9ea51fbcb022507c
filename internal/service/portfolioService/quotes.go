package portfolioService

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/service"
	"github.com/mgupta0995/stockfolio/utils"
)

// chartFallbackDays spans at least one full trading week so the chart
// fallback finds a close across weekends and holidays.
const chartFallbackDays = 7

type quoteStrategy struct {
	name    string
	resolve func(ctx context.Context, ticker string) (model.Quote, error)
}

// ResolveQuote resolves a current quote through the ordered fallback chain:
// direct quote, summary price module, trailing chart. First success wins;
// intermediate failures are logged and swallowed. Resolution never touches
// stored state.
func (s *PortfolioService) ResolveQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ResolveQuote"

	strategies := []quoteStrategy{
		{name: "quote", resolve: s.marketApi.Quote},
		{name: "quoteSummary", resolve: s.marketApi.SummaryQuote},
		{name: "chart", resolve: func(ctx context.Context, ticker string) (model.Quote, error) {
			now := time.Now()
			return s.marketApi.ChartQuote(ctx, ticker, now.AddDate(0, 0, -chartFallbackDays), now)
		}},
	}

	for _, strat := range strategies {
		quote, err := strat.resolve(ctx, ticker)
		if err == nil && !quote.CurrentPrice.IsPositive() {
			err = fmt.Errorf("non-positive price %s", quote.CurrentPrice)
		}

		if err != nil {
			slog.Warn(
				"quote strategy failed",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("ticker", ticker),
				slog.String("strategy", strat.name),
				slog.String("err", err.Error()),
			)
			continue
		}

		return normalizeQuote(quote, ticker), nil
	}

	return model.Quote{}, fmt.Errorf("resolve quote for %s: %w", ticker, service.ErrQuoteUnavailable)
}

// resolveQuotes fans out one resolution per ticker and joins the whole set.
// Tickers whose chain is exhausted are simply absent from the result, which
// keeps "quote unavailable" distinguishable from any price value.
func (s *PortfolioService) resolveQuotes(ctx context.Context, tickers []string) map[string]model.Quote {
	results := make([]*model.Quote, len(tickers))

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			quote, err := s.ResolveQuote(ctx, ticker)
			if err != nil {
				return
			}
			results[i] = &quote
		}(i, ticker)
	}
	wg.Wait()

	// Keyed by the requested ticker: the upstream occasionally rewrites
	// symbols and the merge must line up with the stored holdings.
	quotes := make(map[string]model.Quote, len(tickers))
	for i, q := range results {
		if q != nil {
			quotes[tickers[i]] = *q
		}
	}

	return quotes
}

func normalizeQuote(quote model.Quote, requested string) model.Quote {
	if quote.Ticker == "" {
		quote.Ticker = requested
	}
	if quote.PreviousClose.IsZero() {
		quote.PreviousClose = quote.CurrentPrice
	}
	if quote.DisplayName == "" {
		quote.DisplayName = quote.Ticker
	}
	return quote
}

func distinctTickers(holdings []model.Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.Ticker]; ok {
			continue
		}
		seen[h.Ticker] = struct{}{}
		tickers = append(tickers, h.Ticker)
	}
	return tickers
}
