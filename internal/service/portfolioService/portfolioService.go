package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mgupta0995/stockfolio/config"
	"github.com/mgupta0995/stockfolio/data/repository"
	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/model/yahooModel"
	"github.com/mgupta0995/stockfolio/internal/service"
	"github.com/mgupta0995/stockfolio/utils"
)

type MarketApi interface {
	Quote(ctx context.Context, ticker string) (model.Quote, error)
	SummaryQuote(ctx context.Context, ticker string) (model.Quote, error)
	ChartQuote(ctx context.Context, ticker string, period1, period2 time.Time) (model.Quote, error)
	Historical(ctx context.Context, ticker string, period1, period2 time.Time) ([]model.HistoricalPoint, error)
	Search(ctx context.Context, query string) ([]yahooModel.SearchQuote, error)
}

type Repository interface {
	ListHoldings(ctx context.Context) ([]model.Holding, error)
	CreateHolding(ctx context.Context, input model.HoldingInput) (model.Holding, error)
	UpdateHolding(ctx context.Context, holdingID string, upd model.HoldingUpdate) (model.Holding, error)
	DeleteHolding(ctx context.Context, holdingID string) error
}

type Cache interface {
	GetSearchResults(ctx context.Context, query string) ([]model.Candidate, error)
	SetSearchResults(ctx context.Context, query string, candidates []model.Candidate) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, reports []model.OwnerReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

// PortfolioService owns the in-memory holding set mirrored from the
// repository and enriched with live quotes by reconciliation passes.
// Derivations (snapshot, value series) are pure functions over that state.
type PortfolioService struct {
	cfg             *config.Config
	repo            Repository
	cache           Cache
	marketApi       MarketApi
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage

	// mu guards only the displayed-state swap; every reconciliation pass
	// works on its own local copy (last write wins).
	mu            sync.RWMutex
	holdings      []model.Holding
	quotes        map[string]model.Quote
	lastRefreshed time.Time
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	marketApi MarketApi,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:             cfg,
		repo:            repo,
		cache:           cache,
		marketApi:       marketApi,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
		quotes:          map[string]model.Quote{},
	}
}

// Holdings returns the current enriched holding set, newest first.
func (s *PortfolioService) Holdings(ctx context.Context) []model.Holding {
	s.mu.RLock()
	holdings, quotes := s.holdings, s.quotes
	s.mu.RUnlock()

	return EnrichHoldings(holdings, quotes)
}

func (s *PortfolioService) AddHolding(ctx context.Context, input model.HoldingInput) (model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddHolding"

	slog.Debug("AddHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", input.Ticker))
	defer func() {
		slog.Debug("AddHolding finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", input.Ticker))
	}()

	input, err := s.normalizeInput(input)
	if err != nil {
		return model.Holding{}, err
	}

	// Ticker must resolve to a live quote before anything is persisted.
	if _, err := s.ResolveQuote(ctx, input.Ticker); err != nil {
		slog.Warn("ticker validation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	holding, err := s.repo.CreateHolding(ctx, input)
	if err != nil {
		slog.Error("got error from repo.CreateHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	s.refreshAfterMutation(ctx, op)

	return holding, nil
}

func (s *PortfolioService) EditHolding(ctx context.Context, holdingID string, upd model.HoldingUpdate) (model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.EditHolding"

	slog.Debug("EditHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("holdingID", holdingID))
	defer func() {
		slog.Debug("EditHolding finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("holdingID", holdingID))
	}()

	if err := validateUpdate(upd); err != nil {
		return model.Holding{}, err
	}

	if upd.Ticker != nil {
		ticker := canonicalTicker(*upd.Ticker)
		if ticker == "" {
			return model.Holding{}, fmt.Errorf("%w: ticker is empty", service.ErrValidation)
		}
		upd.Ticker = &ticker

		if _, err := s.ResolveQuote(ctx, ticker); err != nil {
			slog.Warn("ticker validation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.Holding{}, err
		}
	}

	holding, err := s.repo.UpdateHolding(ctx, holdingID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Holding{}, service.ErrNotFound
		}
		slog.Error("got error from repo.UpdateHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	s.refreshAfterMutation(ctx, op)

	return holding, nil
}

func (s *PortfolioService) RemoveHolding(ctx context.Context, holdingID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RemoveHolding"

	slog.Debug("RemoveHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("holdingID", holdingID))
	defer func() {
		slog.Debug("RemoveHolding finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("holdingID", holdingID))
	}()

	err := s.repo.DeleteHolding(ctx, holdingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.refreshAfterMutation(ctx, op)

	return nil
}

// Snapshot derives portfolio metrics for the given owner filter from the
// current state. Pure projection: filtering first, aggregation second.
func (s *PortfolioService) Snapshot(ctx context.Context, owner string) model.PortfolioSnapshot {
	s.mu.RLock()
	holdings, quotes := s.holdings, s.quotes
	s.mu.RUnlock()

	return BuildSnapshot(EnrichHoldings(FilterByOwner(holdings, owner), quotes))
}

// Portfolio bundles the snapshot, the owner list and the value series for
// one dashboard round trip.
func (s *PortfolioService) Portfolio(ctx context.Context, owner string, rng model.Range) (model.Portfolio, error) {
	s.mu.RLock()
	holdings := s.holdings
	lastRefreshed := s.lastRefreshed
	s.mu.RUnlock()

	series, err := s.ValueSeries(ctx, owner, rng)
	if err != nil {
		return model.Portfolio{}, err
	}

	return model.Portfolio{
		PortfolioSnapshot: s.Snapshot(ctx, owner),
		Owners:            Owners(holdings),
		Series:            series,
		LastRefreshed:     lastRefreshed,
	}, nil
}

func (s *PortfolioService) normalizeInput(input model.HoldingInput) (model.HoldingInput, error) {
	input.Ticker = canonicalTicker(input.Ticker)
	if input.Ticker == "" {
		return model.HoldingInput{}, fmt.Errorf("%w: ticker is empty", service.ErrValidation)
	}

	if input.Qty < 1 {
		return model.HoldingInput{}, fmt.Errorf("%w: qty must be >= 1", service.ErrValidation)
	}

	if input.AvgCost.IsNegative() {
		return model.HoldingInput{}, fmt.Errorf("%w: avgCost must be >= 0", service.ErrValidation)
	}

	if input.Owner == "" {
		input.Owner = s.cfg.DefaultOwner
	}

	if input.PurchaseDate.IsZero() {
		input.PurchaseDate = time.Now()
	}

	return input, nil
}

func validateUpdate(upd model.HoldingUpdate) error {
	if upd.Qty != nil && *upd.Qty < 1 {
		return fmt.Errorf("%w: qty must be >= 1", service.ErrValidation)
	}

	if upd.AvgCost != nil && upd.AvgCost.IsNegative() {
		return fmt.Errorf("%w: avgCost must be >= 0", service.ErrValidation)
	}

	if upd.Owner != nil && strings.TrimSpace(*upd.Owner) == "" {
		return fmt.Errorf("%w: owner is empty", service.ErrValidation)
	}

	return nil
}

func canonicalTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
