package portfolioService

import (
	"context"
	"log/slog"
	"time"

	"github.com/mgupta0995/stockfolio/utils"
)

// Refresh runs one full reconciliation pass: re-fetch the authoritative
// holding set, resolve a quote per distinct ticker concurrently, then swap
// the displayed state in one step. Concurrent passes are not coalesced;
// a stale pass may finish after a newer one and overwrite it with slightly
// outdated prices. Accepted: the data is non-critical display state.
func (s *PortfolioService) Refresh(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Refresh"

	slog.Debug("Refresh start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Refresh finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	holdings, err := s.repo.ListHoldings(ctx)
	if err != nil {
		slog.Error("got error from repo.ListHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	quotes := s.resolveQuotes(ctx, distinctTickers(holdings))

	s.mu.Lock()
	s.holdings = holdings
	s.quotes = quotes
	s.lastRefreshed = time.Now()
	s.mu.Unlock()

	slog.Info(
		"holdings reconciled",
		slog.String("rqID", rqID),
		slog.Int("holdings", len(holdings)),
		slog.Int("resolvedQuotes", len(quotes)),
	)

	return nil
}

// LastRefreshed reports when the displayed state was last reconciled.
func (s *PortfolioService) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshed
}

// refreshAfterMutation keeps mutations responsive: the write already
// succeeded, a failed follow-up reconciliation only delays fresh prices
// until the next interval tick.
func (s *PortfolioService) refreshAfterMutation(ctx context.Context, op string) {
	if err := s.Refresh(ctx); err != nil {
		rqID := utils.GetRequestIDFromCtx(ctx)
		slog.Error("refresh after mutation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}
}
