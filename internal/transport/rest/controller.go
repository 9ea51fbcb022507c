package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/service"
	"github.com/mgupta0995/stockfolio/utils"
)

type PortfolioManager interface {
	Holdings(ctx context.Context) []model.Holding
	AddHolding(ctx context.Context, input model.HoldingInput) (model.Holding, error)
	EditHolding(ctx context.Context, holdingID string, upd model.HoldingUpdate) (model.Holding, error)
	RemoveHolding(ctx context.Context, holdingID string) error
	ResolveQuote(ctx context.Context, ticker string) (model.Quote, error)
	SearchTickers(ctx context.Context, query string) ([]model.Candidate, error)
	FetchHistory(ctx context.Context, tickers []string, rng model.Range) []model.TickerHistory
	Portfolio(ctx context.Context, owner string, rng model.Range) (model.Portfolio, error)
	Refresh(ctx context.Context) error
	LastRefreshed() time.Time
	GenerateReport(ctx context.Context) (fileBytes []byte, filename string, err error)
	ExportReport(ctx context.Context) (downloadLink string, err error)
}

type Controller struct {
	service PortfolioManager
}

func NewController(service PortfolioManager) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetHoldings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.service.Holdings(r.Context()))
}

func (c *Controller) CreateHolding(w http.ResponseWriter, r *http.Request) {
	var input model.HoldingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(r.Context(), w, fmt.Errorf("%w: invalid request body", service.ErrValidation))
		return
	}

	holding, err := c.service.AddHolding(r.Context(), input)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, holding)
}

func (c *Controller) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	var upd model.HoldingUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(r.Context(), w, fmt.Errorf("%w: invalid request body", service.ErrValidation))
		return
	}

	holding, err := c.service.EditHolding(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, holding)
}

func (c *Controller) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := c.service.RemoveHolding(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetQuote resolves a single live quote. Responses are marked no-store so
// intermediaries never serve a stale price.
func (c *Controller) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := c.service.ResolveQuote(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, quote)
}

func (c *Controller) Search(w http.ResponseWriter, r *http.Request) {
	candidates, err := c.service.SearchTickers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, candidates)
}

type historyRequest struct {
	Tickers []string `json:"tickers"`
	Range   string   `json:"range"`
}

func (c *Controller) GetHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, fmt.Errorf("%w: invalid request body", service.ErrValidation))
		return
	}

	if len(req.Tickers) == 0 {
		writeError(r.Context(), w, fmt.Errorf("%w: tickers are required", service.ErrValidation))
		return
	}

	histories := c.service.FetchHistory(r.Context(), req.Tickers, model.ParseRange(req.Range))
	writeJSON(w, http.StatusOK, histories)
}

func (c *Controller) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	portfolio, err := c.service.Portfolio(r.Context(), q.Get("owner"), model.ParseRange(q.Get("range")))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, portfolio)
}

func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Refresh(r.Context()); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "refreshed",
		"lastRefreshed": c.service.LastRefreshed(),
	})
}

func (c *Controller) DownloadReport(w http.ResponseWriter, r *http.Request) {
	fileBytes, filename, err := c.service.GenerateReport(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fileBytes)
}

func (c *Controller) ExportReport(w http.ResponseWriter, r *http.Request) {
	downloadLink, err := c.service.ExportReport(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"downloadLink": downloadLink})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", slog.String("err", err.Error()))
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, service.ErrQuoteUnavailable):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, service.ErrCloudStorageDisabled):
		status = http.StatusServiceUnavailable
		message = "cloud storage is not configured"
	default:
		slog.Error(
			"unhandled service error",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("err", err.Error()),
		)
	}

	writeJSON(w, status, map[string]string{"error": message})
}
