package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Range string

const (
	Range7d   Range = "7d"
	Range30d  Range = "30d"
	Range120d Range = "120d"
	Range180d Range = "180d"
)

// ParseRange maps a client-supplied range label to a known lookback window.
// "1mo" is accepted as a legacy alias; anything unknown falls back to 30d.
func ParseRange(s string) Range {
	switch s {
	case "7d":
		return Range7d
	case "30d", "1mo":
		return Range30d
	case "120d":
		return Range120d
	case "180d":
		return Range180d
	default:
		return Range30d
	}
}

func (r Range) Days() int {
	switch r {
	case Range7d:
		return 7
	case Range120d:
		return 120
	case Range180d:
		return 180
	default:
		return 30
	}
}

// Start returns the beginning of the lookback window ending at now.
func (r Range) Start(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.Days())
}

type HistoricalPoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// TickerHistory is one entry of a batch history response. A ticker whose
// fetch failed carries an empty Points slice, never an error.
type TickerHistory struct {
	Ticker string            `json:"ticker"`
	Points []HistoricalPoint `json:"data"`
}

// ValuePoint is one calendar day of the aggregated portfolio value series.
type ValuePoint struct {
	Date       time.Time                  `json:"date"`
	TotalValue decimal.Decimal            `json:"totalValue"`
	PerTicker  map[string]decimal.Decimal `json:"perTicker"`
}
