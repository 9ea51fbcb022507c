package portfolioService

import (
	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FilterByOwner is a pure projection of the holding set; "All" or an empty
// filter keeps everything.
func FilterByOwner(holdings []model.Holding, owner string) []model.Holding {
	if owner == "" || owner == model.OwnerAll {
		return holdings
	}

	filtered := make([]model.Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.Owner == owner {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// EnrichHoldings merges resolved quotes into the holding set. A holding
// whose ticker has no quote falls back to its own cost basis as a stand-in
// price, so it contributes zero P/L instead of corrupting the totals.
func EnrichHoldings(holdings []model.Holding, quotes map[string]model.Quote) []model.Holding {
	enriched := make([]model.Holding, 0, len(holdings))
	for _, h := range holdings {
		if q, ok := quotes[h.Ticker]; ok {
			h.CurrentPrice = q.CurrentPrice
			h.PreviousClose = q.PreviousClose
			h.Name = q.DisplayName
		} else {
			h.CurrentPrice = h.AvgCost
			h.PreviousClose = h.AvgCost
			h.Name = h.Ticker
		}
		enriched = append(enriched, h)
	}
	return enriched
}

// BuildSnapshot derives per-holding and portfolio-level metrics from an
// enriched holding set. Stateless: recomputed from scratch on every call.
func BuildSnapshot(holdings []model.Holding) model.PortfolioSnapshot {
	snapshot := model.PortfolioSnapshot{
		Holdings: make([]model.HoldingValuation, 0, len(holdings)),
	}

	for _, h := range holdings {
		qty := decimal.NewFromInt(int64(h.Qty))

		marketValue := h.CurrentPrice.Mul(qty)
		investedAmount := h.AvgCost.Mul(qty)
		pl := marketValue.Sub(investedAmount)

		plPercent := decimal.Zero
		if investedAmount.IsPositive() {
			plPercent = pl.Div(investedAmount).Mul(hundred)
		}

		snapshot.Holdings = append(snapshot.Holdings, model.HoldingValuation{
			Holding:        h,
			MarketValue:    marketValue,
			InvestedAmount: investedAmount,
			PL:             pl,
			PLPercent:      plPercent,
		})

		snapshot.TotalCost = snapshot.TotalCost.Add(investedAmount)
		snapshot.TotalValue = snapshot.TotalValue.Add(marketValue)
		snapshot.TodaysPL = snapshot.TodaysPL.Add(h.CurrentPrice.Sub(h.PreviousClose).Mul(qty))
	}

	snapshot.TotalPL = snapshot.TotalValue.Sub(snapshot.TotalCost)

	return snapshot
}

// Owners lists the distinct owners of the holding set in first-seen order.
func Owners(holdings []model.Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	owners := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.Owner]; ok {
			continue
		}
		seen[h.Owner] = struct{}{}
		owners = append(owners, h.Owner)
	}
	return owners
}
