package yahooApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mgupta0995/stockfolio/config"
	"github.com/mgupta0995/stockfolio/internal/externalApi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, handler http.HandlerFunc) *YahooApi {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.YahooApi.Url = srv.URL
	cfg.API.YahooApi.SearchQuotesCnt = 15

	return New(cfg)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "INFY.NS", r.URL.Query().Get("symbols"))
		w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"INFY.NS","regularMarketPrice":1500.25,"regularMarketPreviousClose":1490.5,"longName":"Infosys Limited"}],"error":null}}`))
	})

	quote, err := api.Quote(context.Background(), "INFY.NS")
	require.NoError(t, err)

	assert.Equal(t, "INFY.NS", quote.Ticker)
	assert.True(t, quote.CurrentPrice.Equal(dec("1500.25")))
	assert.True(t, quote.PreviousClose.Equal(dec("1490.5")))
	assert.Equal(t, "Infosys Limited", quote.DisplayName)
}

func TestQuote_MissingPreviousCloseFallsBackToPrice(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"INFY.NS","regularMarketPrice":1500,"shortName":"Infosys"}],"error":null}}`))
	})

	quote, err := api.Quote(context.Background(), "INFY.NS")
	require.NoError(t, err)

	assert.True(t, quote.PreviousClose.Equal(dec("1500")))
	assert.Equal(t, "Infosys", quote.DisplayName)
}

func TestQuote_EmptyResult(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
	})

	_, err := api.Quote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestQuote_ApiError(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":null,"error":{"code":"Bad Request","description":"Missing symbols"}}}`))
	})

	_, err := api.Quote(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing symbols")
}

func TestSummaryQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/TCS.NS", r.URL.Path)
		assert.Equal(t, "price", r.URL.Query().Get("modules"))
		w.Write([]byte(`{"quoteSummary":{"result":[{"price":{"symbol":"TCS.NS","regularMarketPrice":{"raw":3450.7,"fmt":"3,450.70"},"regularMarketPreviousClose":{"raw":3400.1},"longName":"Tata Consultancy Services Limited"}}],"error":null}}`))
	})

	quote, err := api.SummaryQuote(context.Background(), "TCS.NS")
	require.NoError(t, err)

	assert.Equal(t, "TCS.NS", quote.Ticker)
	assert.True(t, quote.CurrentPrice.Equal(dec("3450.7")))
	assert.True(t, quote.PreviousClose.Equal(dec("3400.1")))
	assert.Equal(t, "Tata Consultancy Services Limited", quote.DisplayName)
}

func TestSummaryQuote_MissingPriceModule(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{}],"error":null}}`))
	})

	_, err := api.SummaryQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestChartQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/SBIN.NS", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"SBIN.NS","chartPreviousClose":805.5},"timestamp":[1756080000,1756166400,1756252800],"indicators":{"quote":[{"open":[800,806,null],"close":[804.2,null,810.9]}]}}],"error":null}}`))
	})

	now := time.Now()
	quote, err := api.ChartQuote(context.Background(), "SBIN.NS", now.AddDate(0, 0, -7), now)
	require.NoError(t, err)

	assert.Equal(t, "SBIN.NS", quote.Ticker)
	assert.True(t, quote.CurrentPrice.Equal(dec("810.9")), "last non-null close becomes the current price")
	assert.True(t, quote.PreviousClose.Equal(dec("805.5")))
}

func TestChartQuote_PreviousCloseFromPriorOpen(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"SBIN.NS"},"timestamp":[1756166400,1756252800],"indicators":{"quote":[{"open":[806,807],"close":[808.5,810.9]}]}}],"error":null}}`))
	})

	now := time.Now()
	quote, err := api.ChartQuote(context.Background(), "SBIN.NS", now.AddDate(0, 0, -7), now)
	require.NoError(t, err)

	assert.True(t, quote.CurrentPrice.Equal(dec("810.9")))
	assert.True(t, quote.PreviousClose.Equal(dec("806")))
}

func TestChartQuote_AllClosesNull(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"HALT.NS"},"timestamp":[1756252800],"indicators":{"quote":[{"open":[null],"close":[null]}]}}],"error":null}}`))
	})

	now := time.Now()
	_, err := api.ChartQuote(context.Background(), "HALT.NS", now.AddDate(0, 0, -7), now)
	assert.ErrorIs(t, err, externalApi.ErrNoData)
}

func TestHistorical(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"INFY.NS"},"timestamp":[1756080000,1756166400,1756252800],"indicators":{"quote":[{"open":[1480,1490,1500],"close":[1485.5,null,1502.25]}]}}],"error":null}}`))
	})

	now := time.Now()
	points, err := api.Historical(context.Background(), "INFY.NS", now.AddDate(0, 0, -30), now)
	require.NoError(t, err)

	require.Len(t, points, 2, "null closes are skipped")
	assert.True(t, points[0].Close.Equal(dec("1485.5")))
	assert.True(t, points[1].Close.Equal(dec("1502.25")))
	assert.True(t, points[0].Date.Before(points[1].Date))
	assert.Equal(t, time.UTC, points[0].Date.Location())
}

func TestHistorical_LengthMismatch(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"INFY.NS"},"timestamp":[1756080000,1756166400],"indicators":{"quote":[{"open":[1480],"close":[1485.5]}]}}],"error":null}}`))
	})

	now := time.Now()
	_, err := api.Historical(context.Background(), "INFY.NS", now.AddDate(0, 0, -30), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")
}

func TestSearch(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "infosys", r.URL.Query().Get("q"))
		assert.Equal(t, "15", r.URL.Query().Get("quotesCount"))
		assert.Equal(t, "0", r.URL.Query().Get("newsCount"))
		w.Write([]byte(`{"quotes":[{"symbol":"INFY.NS","quoteType":"EQUITY","longname":"Infosys Limited","exchDisp":"NSE"},{"symbol":"INFY","quoteType":"EQUITY","shortname":"Infosys","exchange":"NYQ"}]}`))
	})

	quotes, err := api.Search(context.Background(), "infosys")
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, "INFY.NS", *quotes[0].Symbol)
	assert.Equal(t, "Infosys Limited", *quotes[0].LongName)
	assert.Equal(t, "NSE", *quotes[0].ExchDisp)
}
