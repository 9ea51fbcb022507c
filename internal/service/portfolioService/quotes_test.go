package portfolioService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mgupta0995/stockfolio/config"
	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/model/yahooModel"
	"github.com/mgupta0995/stockfolio/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStub = errors.New("stub failure")

type stubMarketApi struct {
	quoteFn      func(ctx context.Context, ticker string) (model.Quote, error)
	summaryFn    func(ctx context.Context, ticker string) (model.Quote, error)
	chartFn      func(ctx context.Context, ticker string, period1, period2 time.Time) (model.Quote, error)
	historicalFn func(ctx context.Context, ticker string, period1, period2 time.Time) ([]model.HistoricalPoint, error)
	searchFn     func(ctx context.Context, query string) ([]yahooModel.SearchQuote, error)
}

func (s *stubMarketApi) Quote(ctx context.Context, ticker string) (model.Quote, error) {
	if s.quoteFn == nil {
		return model.Quote{}, errStub
	}
	return s.quoteFn(ctx, ticker)
}

func (s *stubMarketApi) SummaryQuote(ctx context.Context, ticker string) (model.Quote, error) {
	if s.summaryFn == nil {
		return model.Quote{}, errStub
	}
	return s.summaryFn(ctx, ticker)
}

func (s *stubMarketApi) ChartQuote(ctx context.Context, ticker string, period1, period2 time.Time) (model.Quote, error) {
	if s.chartFn == nil {
		return model.Quote{}, errStub
	}
	return s.chartFn(ctx, ticker, period1, period2)
}

func (s *stubMarketApi) Historical(ctx context.Context, ticker string, period1, period2 time.Time) ([]model.HistoricalPoint, error) {
	if s.historicalFn == nil {
		return nil, errStub
	}
	return s.historicalFn(ctx, ticker, period1, period2)
}

func (s *stubMarketApi) Search(ctx context.Context, query string) ([]yahooModel.SearchQuote, error) {
	if s.searchFn == nil {
		return nil, errStub
	}
	return s.searchFn(ctx, query)
}

func newTestService(api MarketApi) *PortfolioService {
	cfg := &config.Config{DefaultOwner: "Default User"}
	return New(cfg, nil, nil, api, nil, nil)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveQuote_FirstStrategyWins(t *testing.T) {
	api := &stubMarketApi{
		quoteFn: func(ctx context.Context, ticker string) (model.Quote, error) {
			return model.Quote{Ticker: "INFY.NS", CurrentPrice: dec("1500"), PreviousClose: dec("1490"), DisplayName: "Infosys Limited"}, nil
		},
		summaryFn: func(ctx context.Context, ticker string) (model.Quote, error) {
			t.Fatal("summary strategy must not run when the direct quote succeeds")
			return model.Quote{}, nil
		},
	}

	s := newTestService(api)

	quote, err := s.ResolveQuote(context.Background(), "INFY.NS")
	require.NoError(t, err)
	assert.True(t, quote.CurrentPrice.Equal(dec("1500")))
	assert.Equal(t, "Infosys Limited", quote.DisplayName)
}

func TestResolveQuote_FallsThroughToChart(t *testing.T) {
	api := &stubMarketApi{
		chartFn: func(ctx context.Context, ticker string, period1, period2 time.Time) (model.Quote, error) {
			return model.Quote{CurrentPrice: dec("2500")}, nil
		},
	}

	s := newTestService(api)

	quote, err := s.ResolveQuote(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.True(t, quote.CurrentPrice.Equal(dec("2500")))
	assert.Equal(t, "TCS.NS", quote.Ticker)
	assert.True(t, quote.PreviousClose.Equal(dec("2500")), "previous close defaults to current price")
	assert.Equal(t, "TCS.NS", quote.DisplayName)
}

func TestResolveQuote_NonPositivePriceCountsAsFailure(t *testing.T) {
	api := &stubMarketApi{
		quoteFn: func(ctx context.Context, ticker string) (model.Quote, error) {
			return model.Quote{Ticker: ticker, CurrentPrice: decimal.Zero}, nil
		},
		summaryFn: func(ctx context.Context, ticker string) (model.Quote, error) {
			return model.Quote{Ticker: ticker, CurrentPrice: dec("99.5"), PreviousClose: dec("98")}, nil
		},
	}

	s := newTestService(api)

	quote, err := s.ResolveQuote(context.Background(), "SBIN.NS")
	require.NoError(t, err)
	assert.True(t, quote.CurrentPrice.Equal(dec("99.5")))
}

func TestResolveQuote_AllStrategiesExhausted(t *testing.T) {
	s := newTestService(&stubMarketApi{})

	_, err := s.ResolveQuote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrQuoteUnavailable)
}

func TestResolveQuote_RepeatedResolutionIsIdempotent(t *testing.T) {
	api := &stubMarketApi{
		quoteFn: func(ctx context.Context, ticker string) (model.Quote, error) {
			return model.Quote{Ticker: ticker, CurrentPrice: dec("1500"), PreviousClose: dec("1490")}, nil
		},
	}

	s := newTestService(api)

	first, err := s.ResolveQuote(context.Background(), "INFY.NS")
	require.NoError(t, err)

	second, err := s.ResolveQuote(context.Background(), "INFY.NS")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// Resolution never touches the displayed state.
	assert.Empty(t, s.holdings)
	assert.Empty(t, s.quotes)
	assert.True(t, s.lastRefreshed.IsZero())
}

func TestResolveQuotes_KeyedByRequestedTicker(t *testing.T) {
	api := &stubMarketApi{
		quoteFn: func(ctx context.Context, ticker string) (model.Quote, error) {
			if ticker == "BROKEN" {
				return model.Quote{}, errStub
			}
			// Upstream rewrites the symbol; the merge key must stay ours.
			return model.Quote{Ticker: "REWRITTEN", CurrentPrice: dec("10")}, nil
		},
	}

	s := newTestService(api)

	quotes := s.resolveQuotes(context.Background(), []string{"INFY.NS", "BROKEN", "TCS.NS"})

	require.Len(t, quotes, 2)
	assert.Contains(t, quotes, "INFY.NS")
	assert.Contains(t, quotes, "TCS.NS")
	assert.NotContains(t, quotes, "BROKEN")
}

func TestDistinctTickers(t *testing.T) {
	holdings := []model.Holding{
		{Ticker: "INFY.NS"},
		{Ticker: "TCS.NS"},
		{Ticker: "INFY.NS"},
	}

	assert.Equal(t, []string{"INFY.NS", "TCS.NS"}, distinctTickers(holdings))
}
