package yahooApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mgupta0995/stockfolio/config"
	"github.com/mgupta0995/stockfolio/internal/externalApi"
	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/model/yahooModel"
	"github.com/mgupta0995/stockfolio/utils"
	"github.com/shopspring/decimal"
)

type YahooApi struct {
	client *resty.Client
	cfg    *config.Config
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)") // yahoo rejects the default go-resty agent
	return &YahooApi{client: client, cfg: cfg}
}

// Quote fetches a live quote through /v7/finance/quote.
func (a *YahooApi) Quote(ctx context.Context, ticker string) (model.Quote, error) {
	raw := yahooModel.QuoteResponse{}
	err := a.get(ctx, "YahooApi.Quote", "/v7/finance/quote", map[string]string{"symbols": ticker}, &raw)
	if err != nil {
		return model.Quote{}, err
	}

	if raw.QuoteResponse.Error != nil {
		return model.Quote{}, fmt.Errorf("quote request failed: %s", raw.QuoteResponse.Error.Description)
	}

	if len(raw.QuoteResponse.Result) == 0 {
		return model.Quote{}, externalApi.ErrNotFound
	}

	res := raw.QuoteResponse.Result[0]

	price, err := toDecimal(res.RegularMarketPrice)
	if err != nil {
		return model.Quote{}, err
	}

	prevClose, err := toDecimal(res.RegularMarketPreviousClose)
	if err != nil {
		prevClose = price
	}

	return model.Quote{
		Ticker:        res.Symbol,
		CurrentPrice:  price,
		PreviousClose: prevClose,
		DisplayName:   pickName(res.LongName, res.ShortName, res.Symbol),
	}, nil
}

// SummaryQuote fetches /v10/finance/quoteSummary restricted to the price
// module and reshapes it into a quote.
func (a *YahooApi) SummaryQuote(ctx context.Context, ticker string) (model.Quote, error) {
	raw := yahooModel.QuoteSummaryResponse{}
	url := "/v10/finance/quoteSummary/" + ticker
	err := a.get(ctx, "YahooApi.SummaryQuote", url, map[string]string{"modules": "price"}, &raw)
	if err != nil {
		return model.Quote{}, err
	}

	if raw.QuoteSummary.Error != nil {
		return model.Quote{}, fmt.Errorf("quoteSummary request failed: %s", raw.QuoteSummary.Error.Description)
	}

	if len(raw.QuoteSummary.Result) == 0 || raw.QuoteSummary.Result[0].Price == nil {
		return model.Quote{}, externalApi.ErrNotFound
	}

	priceModule := raw.QuoteSummary.Result[0].Price

	price, err := toDecimal(rawValue(priceModule.RegularMarketPrice))
	if err != nil {
		return model.Quote{}, err
	}

	prevClose, err := toDecimal(rawValue(priceModule.RegularMarketPreviousClose))
	if err != nil {
		prevClose = price
	}

	return model.Quote{
		Ticker:        priceModule.Symbol,
		CurrentPrice:  price,
		PreviousClose: prevClose,
		DisplayName:   pickName(priceModule.LongName, priceModule.ShortName, priceModule.Symbol),
	}, nil
}

// ChartQuote derives a quote from the daily chart over [period1, period2]:
// the most recent close becomes the current price, the chart-embedded
// previous close (or the prior day's open) becomes the previous close.
func (a *YahooApi) ChartQuote(ctx context.Context, ticker string, period1, period2 time.Time) (model.Quote, error) {
	res, err := a.chart(ctx, "YahooApi.ChartQuote", ticker, period1, period2)
	if err != nil {
		return model.Quote{}, err
	}

	points, err := chartPoints(res)
	if err != nil {
		return model.Quote{}, err
	}

	if len(points) == 0 {
		return model.Quote{}, externalApi.ErrNoData
	}

	last := points[len(points)-1]

	prevClose, err := toDecimal(res.Meta.ChartPreviousClose)
	if err != nil {
		prevClose = last.close
		if prev := priorOpenOrClose(res, last.index); prev != nil {
			prevClose, err = toDecimal(prev)
			if err != nil {
				prevClose = last.close
			}
		}
	}

	return model.Quote{
		Ticker:        res.Meta.Symbol,
		CurrentPrice:  last.close,
		PreviousClose: prevClose,
		DisplayName:   res.Meta.Symbol,
	}, nil
}

// Historical fetches the daily close series for one ticker over [period1, period2].
func (a *YahooApi) Historical(ctx context.Context, ticker string, period1, period2 time.Time) ([]model.HistoricalPoint, error) {
	res, err := a.chart(ctx, "YahooApi.Historical", ticker, period1, period2)
	if err != nil {
		return nil, err
	}

	points, err := chartPoints(res)
	if err != nil {
		return nil, err
	}

	history := make([]model.HistoricalPoint, 0, len(points))
	for _, p := range points {
		history = append(history, model.HistoricalPoint{Date: p.date, Close: p.close})
	}

	return history, nil
}

// Search issues the free-text instrument search. Results come back raw:
// filtering and ranking policy belongs to the caller.
func (a *YahooApi) Search(ctx context.Context, query string) ([]yahooModel.SearchQuote, error) {
	raw := yahooModel.SearchResponse{}
	params := map[string]string{
		"q":           query,
		"quotesCount": strconv.Itoa(a.cfg.API.YahooApi.SearchQuotesCnt),
		"newsCount":   "0",
	}
	err := a.get(ctx, "YahooApi.Search", "/v1/finance/search", params, &raw)
	if err != nil {
		return nil, err
	}

	return raw.Quotes, nil
}

func (a *YahooApi) chart(ctx context.Context, op, ticker string, period1, period2 time.Time) (yahooModel.ChartResult, error) {
	raw := yahooModel.ChartResponse{}
	url := "/v8/finance/chart/" + ticker
	params := map[string]string{
		"period1":  strconv.FormatInt(period1.Unix(), 10),
		"period2":  strconv.FormatInt(period2.Unix(), 10),
		"interval": "1d",
	}

	err := a.get(ctx, op, url, params, &raw)
	if err != nil {
		return yahooModel.ChartResult{}, err
	}

	if raw.Chart.Error != nil {
		return yahooModel.ChartResult{}, fmt.Errorf("chart request failed: %s", raw.Chart.Error.Description)
	}

	if len(raw.Chart.Result) == 0 {
		return yahooModel.ChartResult{}, externalApi.ErrNotFound
	}

	return raw.Chart.Result[0], nil
}

func (a *YahooApi) get(ctx context.Context, op, url string, params map[string]string, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start request", slog.String("op", op), slog.String("rqID", rqID), slog.String("url", url))

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("op", op), slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	err = json.Unmarshal(resp.Body(), dest)
	if err != nil {
		slog.Error("can't unmarshall YahooApi response", slog.String("op", op), slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("request complete", slog.String("op", op), slog.String("rqID", rqID))

	return nil
}

type chartPoint struct {
	index int
	date  time.Time
	close decimal.Decimal
}

// chartPoints flattens a chart result into dated closes, skipping the null
// slots yahoo emits for halted sessions.
func chartPoints(res yahooModel.ChartResult) ([]chartPoint, error) {
	if len(res.Indicators.Quote) == 0 {
		return nil, externalApi.ErrNoData
	}

	closes := res.Indicators.Quote[0].Close
	if len(closes) != len(res.Timestamp) {
		return nil, fmt.Errorf("chart timestamps and closes length mismatch: %d != %d", len(res.Timestamp), len(closes))
	}

	points := make([]chartPoint, 0, len(closes))
	for i, c := range closes {
		if c == nil {
			continue
		}
		d, err := toDecimal(c)
		if err != nil {
			continue
		}
		points = append(points, chartPoint{
			index: i,
			date:  time.Unix(res.Timestamp[i], 0).UTC().Truncate(24 * time.Hour),
			close: d,
		})
	}

	return points, nil
}

func priorOpenOrClose(res yahooModel.ChartResult, lastIdx int) *float64 {
	if lastIdx <= 0 || len(res.Indicators.Quote) == 0 {
		return nil
	}
	quote := res.Indicators.Quote[0]
	for i := lastIdx - 1; i >= 0; i-- {
		if i < len(quote.Open) && quote.Open[i] != nil {
			return quote.Open[i]
		}
		if i < len(quote.Close) && quote.Close[i] != nil {
			return quote.Close[i]
		}
	}
	return nil
}

func rawValue(rv *yahooModel.RawValue) *float64 {
	if rv == nil {
		return nil
	}
	return rv.Raw
}

func toDecimal(f *float64) (decimal.Decimal, error) {
	if f == nil {
		return decimal.Decimal{}, externalApi.ErrNoData
	}
	if math.IsNaN(*f) || math.IsInf(*f, 0) {
		return decimal.Decimal{}, fmt.Errorf("non-finite value %f", *f)
	}
	return decimal.NewFromFloat(*f), nil
}

func pickName(long, short *string, fallback string) string {
	if long != nil && *long != "" {
		return *long
	}
	if short != nil && *short != "" {
		return *short
	}
	return fallback
}
