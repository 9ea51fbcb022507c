package model

import "github.com/shopspring/decimal"

// Quote is a resolved current-price snapshot for one ticker. CurrentPrice is
// always finite and positive: resolvers fail instead of producing zero prices.
type Quote struct {
	Ticker        string          `json:"ticker"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	DisplayName   string          `json:"displayName"`
}

type Candidate struct {
	Symbol      string `json:"symbol"`
	DisplayName string `json:"displayName"`
	Exchange    string `json:"exchange"`
}
