package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	holdings    []model.Holding
	addErr      error
	removeErr   error
	quote       model.Quote
	quoteErr    error
	exportLink  string
	exportErr   error
	refreshed   bool
	lastRefresh time.Time
}

func (s *stubService) Holdings(ctx context.Context) []model.Holding { return s.holdings }

func (s *stubService) AddHolding(ctx context.Context, input model.HoldingInput) (model.Holding, error) {
	if s.addErr != nil {
		return model.Holding{}, s.addErr
	}
	return model.Holding{Ticker: input.Ticker, Qty: input.Qty}, nil
}

func (s *stubService) EditHolding(ctx context.Context, holdingID string, upd model.HoldingUpdate) (model.Holding, error) {
	return model.Holding{ID: holdingID}, nil
}

func (s *stubService) RemoveHolding(ctx context.Context, holdingID string) error { return s.removeErr }

func (s *stubService) ResolveQuote(ctx context.Context, ticker string) (model.Quote, error) {
	return s.quote, s.quoteErr
}

func (s *stubService) SearchTickers(ctx context.Context, query string) ([]model.Candidate, error) {
	return []model.Candidate{{Symbol: "INFY.NS"}}, nil
}

func (s *stubService) FetchHistory(ctx context.Context, tickers []string, rng model.Range) []model.TickerHistory {
	histories := make([]model.TickerHistory, 0, len(tickers))
	for _, ticker := range tickers {
		histories = append(histories, model.TickerHistory{Ticker: ticker, Points: []model.HistoricalPoint{}})
	}
	return histories
}

func (s *stubService) Portfolio(ctx context.Context, owner string, rng model.Range) (model.Portfolio, error) {
	return model.Portfolio{Owners: []string{"Default User"}}, nil
}

func (s *stubService) Refresh(ctx context.Context) error {
	s.refreshed = true
	return nil
}

func (s *stubService) LastRefreshed() time.Time { return s.lastRefresh }

func (s *stubService) GenerateReport(ctx context.Context) ([]byte, string, error) {
	return []byte("workbook"), "portfolio_2026-08-28.xlsx", nil
}

func (s *stubService) ExportReport(ctx context.Context) (string, error) {
	return s.exportLink, s.exportErr
}

func doRequest(t *testing.T, svc PortfolioManager, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := NewRouter(NewController(svc))

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetHoldings(t *testing.T) {
	svc := &stubService{holdings: []model.Holding{{Ticker: "INFY.NS", Qty: 10}}}

	rec := doRequest(t, svc, http.MethodGet, "/api/holdings", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var holdings []model.Holding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holdings))
	require.Len(t, holdings, 1)
	assert.Equal(t, "INFY.NS", holdings[0].Ticker)
}

func TestRequestIDPassthrough(t *testing.T) {
	router := NewRouter(NewController(&stubService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "caller-supplied-id", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	router := NewRouter(NewController(&stubService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/holdings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateHolding(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodPost, "/api/holdings", `{"ticker":"INFY.NS","qty":10,"avgCost":"100"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateHolding_InvalidBody(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodPost, "/api/holdings", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHolding_ValidationError(t *testing.T) {
	svc := &stubService{addErr: fmt.Errorf("%w: qty must be >= 1", service.ErrValidation)}

	rec := doRequest(t, svc, http.MethodPost, "/api/holdings", `{"ticker":"INFY.NS","qty":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "qty must be >= 1")
}

func TestCreateHolding_UnresolvableTicker(t *testing.T) {
	svc := &stubService{addErr: fmt.Errorf("resolve quote for NOPE: %w", service.ErrQuoteUnavailable)}

	rec := doRequest(t, svc, http.MethodPost, "/api/holdings", `{"ticker":"NOPE","qty":1}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteHolding_NotFound(t *testing.T) {
	svc := &stubService{removeErr: service.ErrNotFound}

	rec := doRequest(t, svc, http.MethodDelete, "/api/holdings/4f7e9a10-0000-0000-0000-000000000000", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetQuote(t *testing.T) {
	svc := &stubService{quote: model.Quote{Ticker: "INFY.NS", CurrentPrice: decimal.NewFromInt(1500)}}

	rec := doRequest(t, svc, http.MethodGet, "/api/quote/INFY.NS", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestGetQuote_Unavailable(t *testing.T) {
	svc := &stubService{quoteErr: fmt.Errorf("resolve quote for NOPE: %w", service.ErrQuoteUnavailable)}

	rec := doRequest(t, svc, http.MethodGet, "/api/quote/NOPE", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetHistory(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodPost, "/api/history", `{"tickers":["INFY.NS","TCS.NS"],"range":"30d"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var histories []model.TickerHistory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &histories))
	assert.Len(t, histories, 2)
}

func TestGetHistory_NoTickers(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodPost, "/api/history", `{"tickers":[],"range":"30d"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh(t *testing.T) {
	svc := &stubService{lastRefresh: time.Now()}

	rec := doRequest(t, svc, http.MethodPost, "/api/refresh", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.refreshed)
}

func TestDownloadReport(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodGet, "/api/report", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "portfolio_2026-08-28.xlsx")
	assert.Equal(t, "workbook", rec.Body.String())
}

func TestExportReport_Disabled(t *testing.T) {
	svc := &stubService{exportErr: service.ErrCloudStorageDisabled}

	rec := doRequest(t, svc, http.MethodPost, "/api/report/export", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExportReport(t *testing.T) {
	svc := &stubService{exportLink: "https://drive.google.com/file/d/abc/view"}

	rec := doRequest(t, svc, http.MethodPost, "/api/report/export", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://drive.google.com/file/d/abc/view")
}
