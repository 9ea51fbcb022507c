package yahooModel

// Raw response shapes of the Yahoo finance JSON endpoints. Every field the
// upstream may omit is a pointer; callers nil-check before use.

type ApiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type RawValue struct {
	Raw *float64 `json:"raw"`
	Fmt *string  `json:"fmt"`
}

// /v7/finance/quote

type QuoteResponse struct {
	QuoteResponse struct {
		Result []QuoteResult `json:"result"`
		Error  *ApiError     `json:"error"`
	} `json:"quoteResponse"`
}

type QuoteResult struct {
	Symbol                     string   `json:"symbol"`
	QuoteType                  *string  `json:"quoteType"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	LongName                   *string  `json:"longName"`
	ShortName                  *string  `json:"shortName"`
}

// /v10/finance/quoteSummary

type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummaryResult `json:"result"`
		Error  *ApiError            `json:"error"`
	} `json:"quoteSummary"`
}

type QuoteSummaryResult struct {
	Price *PriceModule `json:"price"`
}

type PriceModule struct {
	Symbol                     string    `json:"symbol"`
	RegularMarketPrice         *RawValue `json:"regularMarketPrice"`
	RegularMarketPreviousClose *RawValue `json:"regularMarketPreviousClose"`
	LongName                   *string   `json:"longName"`
	ShortName                  *string   `json:"shortName"`
}

// /v8/finance/chart

type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ApiError     `json:"error"`
	} `json:"chart"`
}

type ChartResult struct {
	Meta       ChartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []ChartQuote `json:"quote"`
	} `json:"indicators"`
}

type ChartMeta struct {
	Symbol             string   `json:"symbol"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

type ChartQuote struct {
	Open  []*float64 `json:"open"`
	Close []*float64 `json:"close"`
}

// /v1/finance/search

type SearchResponse struct {
	Quotes []SearchQuote `json:"quotes"`
}

type SearchQuote struct {
	Symbol    *string `json:"symbol"`
	QuoteType *string `json:"quoteType"`
	LongName  *string `json:"longname"`
	ShortName *string `json:"shortname"`
	Exchange  *string `json:"exchange"`
	ExchDisp  *string `json:"exchDisp"`
}
