package models

import "time"

// Quote is a point-in-time price reading for a symbol from the external
// market-data provider. Quotes are ephemeral: fetched fresh on each read
// that needs a current price, never persisted per transaction.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent string  `json:"change_percent"`
}

// Candle is one day of OHLCV data from the provider's daily series.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// CompanyProfile holds descriptive company data from the provider.
// Ratio and valuation fields are passed through as provider-formatted
// strings, which may be empty or "None" for some symbols.
type CompanyProfile struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Sector        string `json:"sector"`
	PERatio       string `json:"pe_ratio"`
	MarketCap     string `json:"market_cap"`
	DividendYield string `json:"dividend_yield"`
}
