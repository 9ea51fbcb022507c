package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OwnerAll is the owner filter value that disables filtering.
const OwnerAll = "All"

type Holding struct {
	ID           string          `json:"id"`
	Ticker       string          `json:"ticker"`
	Qty          int             `json:"qty"`
	AvgCost      decimal.Decimal `json:"avgCost"`
	PurchaseDate time.Time       `json:"purchaseDate"`
	Owner        string          `json:"owner"`
	CreatedAt    time.Time       `json:"createdAt"`

	// Live enrichment, fetched per refresh pass, never persisted.
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	Name          string          `json:"name"`
}

type HoldingInput struct {
	Ticker       string          `json:"ticker"`
	Qty          int             `json:"qty"`
	AvgCost      decimal.Decimal `json:"avgCost"`
	PurchaseDate time.Time       `json:"purchaseDate"`
	Owner        string          `json:"owner"`
}

// HoldingUpdate carries a partial edit: nil fields stay untouched.
type HoldingUpdate struct {
	Ticker       *string          `json:"ticker"`
	Qty          *int             `json:"qty"`
	AvgCost      *decimal.Decimal `json:"avgCost"`
	PurchaseDate *time.Time       `json:"purchaseDate"`
	Owner        *string          `json:"owner"`
}
