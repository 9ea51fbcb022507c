package portfolioService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/model/yahooModel"
	"github.com/mgupta0995/stockfolio/internal/service"
	"github.com/mgupta0995/stockfolio/utils"
)

// localMarketSuffix biases an unqualified query towards NSE listings: the
// upstream search is a generic global lookup with no market-aware ranking.
const localMarketSuffix = ".NS"

// SearchTickers resolves a free-text query into a ranked, symbol-deduplicated
// candidate list. Ranking is insertion order across the base pass and the
// market-bias passes; disambiguation passes are best-effort and contribute
// nothing on failure.
func (s *PortfolioService) SearchTickers(ctx context.Context, query string) ([]model.Candidate, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.SearchTickers"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", service.ErrValidation)
	}

	slog.Debug("SearchTickers start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		slog.Debug("SearchTickers finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	}()

	if s.cache != nil {
		if cached, err := s.cache.GetSearchResults(ctx, query); err == nil {
			return cached, nil
		}
	}

	raw, err := s.marketApi.Search(ctx, query)
	if err != nil {
		slog.Error("got error from marketApi.Search", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	merger := newCandidateMerger()
	merger.add(raw)

	upper := strings.ToUpper(query)

	// Only unqualified queries get the domestic-market passes.
	if !strings.Contains(query, ".") {
		merger.add(s.bestEffortSearch(ctx, op, query+localMarketSuffix))

		// Bank tickers commonly carry a BANK suffix the user omits
		// (KOTAK vs KOTAKBANK).
		if merger.empty() && !strings.Contains(upper, "BANK") {
			merger.add(s.bestEffortSearch(ctx, op, query+"BANK"+localMarketSuffix))
		}

		// The conglomerate short name alone matches nothing tradable.
		if merger.empty() && upper == "TATA" {
			merger.add(s.bestEffortSearch(ctx, op, "TATA MOTORS"))
		}
	}

	candidates := merger.candidates

	if s.cache != nil {
		if err := s.cache.SetSearchResults(ctx, query, candidates); err != nil {
			slog.Warn("can't cache search results", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	return candidates, nil
}

func (s *PortfolioService) bestEffortSearch(ctx context.Context, op, query string) []yahooModel.SearchQuote {
	rqID := utils.GetRequestIDFromCtx(ctx)

	raw, err := s.marketApi.Search(ctx, query)
	if err != nil {
		slog.Warn(
			"disambiguation search failed",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("query", query),
			slog.String("err", err.Error()),
		)
		return nil
	}

	return raw
}

// candidateMerger filters to tradable instrument types and deduplicates by
// symbol, first occurrence wins.
type candidateMerger struct {
	seen       map[string]struct{}
	candidates []model.Candidate
}

func newCandidateMerger() *candidateMerger {
	return &candidateMerger{
		seen:       map[string]struct{}{},
		candidates: []model.Candidate{},
	}
}

func (m *candidateMerger) add(raw []yahooModel.SearchQuote) {
	for _, q := range raw {
		if q.Symbol == nil || *q.Symbol == "" {
			continue
		}

		if q.QuoteType == nil || (*q.QuoteType != "EQUITY" && *q.QuoteType != "ETF") {
			continue
		}

		if _, ok := m.seen[*q.Symbol]; ok {
			continue
		}
		m.seen[*q.Symbol] = struct{}{}

		m.candidates = append(m.candidates, model.Candidate{
			Symbol:      *q.Symbol,
			DisplayName: searchDisplayName(q),
			Exchange:    searchExchange(q),
		})
	}
}

func (m *candidateMerger) empty() bool {
	return len(m.candidates) == 0
}

func searchDisplayName(q yahooModel.SearchQuote) string {
	if q.LongName != nil && *q.LongName != "" {
		return *q.LongName
	}
	if q.ShortName != nil && *q.ShortName != "" {
		return *q.ShortName
	}
	return *q.Symbol
}

func searchExchange(q yahooModel.SearchQuote) string {
	if q.ExchDisp != nil && *q.ExchDisp != "" {
		return *q.ExchDisp
	}
	if q.Exchange != nil {
		return *q.Exchange
	}
	return ""
}
