package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type HoldingValuation struct {
	Holding
	MarketValue    decimal.Decimal `json:"marketValue"`
	InvestedAmount decimal.Decimal `json:"investedAmount"`
	PL             decimal.Decimal `json:"pl"`
	PLPercent      decimal.Decimal `json:"plPercent"`
}

// PortfolioSnapshot is derived from {holdings, quotes, owner filter} and
// recomputed on every change of those inputs; it is never stored.
type PortfolioSnapshot struct {
	TotalCost  decimal.Decimal    `json:"totalCost"`
	TotalValue decimal.Decimal    `json:"totalValue"`
	TotalPL    decimal.Decimal    `json:"totalPL"`
	TodaysPL   decimal.Decimal    `json:"todaysPL"`
	Holdings   []HoldingValuation `json:"holdings"`
}

// OwnerReport is one sheet of the exported workbook.
type OwnerReport struct {
	Owner    string
	Snapshot PortfolioSnapshot
}

type Portfolio struct {
	PortfolioSnapshot
	Owners        []string     `json:"owners"`
	Series        []ValuePoint `json:"series"`
	LastRefreshed time.Time    `json:"lastRefreshed"`
}
