package services

import (
	"context"

	"stockfolio/internal/models"
	"stockfolio/internal/pagination"
)

// QuoteProvider is the external market-data dependency. Implementations make
// a single attempt per call with a bounded timeout; every failure mode
// (unknown symbol, unreachable upstream, malformed payload) surfaces as
// QUOTE_UNAVAILABLE so callers can decide whether to retry. The portfolio
// engine never does.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetDailySeries(ctx context.Context, symbol string) ([]models.Candle, error)
	GetCompanyOverview(ctx context.Context, symbol string) (*models.CompanyProfile, error)
}

// BuyReceipt summarizes a completed purchase.
type BuyReceipt struct {
	Symbol        string  `json:"symbol"`
	Shares        int64   `json:"shares"`
	PricePerShare float64 `json:"price_per_share"`
	TotalCost     float64 `json:"total_cost"`
}

// SellReceipt summarizes a completed sale. PricePerShare is the quoted price
// at sale time; it is reporting-only and plays no part in lot accounting.
type SellReceipt struct {
	Symbol        string  `json:"symbol"`
	SharesSold    int64   `json:"shares_sold"`
	PricePerShare float64 `json:"price_per_share"`
	TotalValue    float64 `json:"total_value"`
}

// Holding is one symbol's aggregate position joined with its live quote.
type Holding struct {
	Symbol           string  `json:"symbol"`
	Shares           int64   `json:"shares"`
	CurrentPrice     float64 `json:"current_price"`
	CurrentValue     float64 `json:"current_value"`
	AvgPurchasePrice float64 `json:"avg_purchase_price"`
	TotalGainLoss    float64 `json:"total_gain_loss"`
}

// PortfolioValue aggregates value and gain/loss across every holding.
type PortfolioValue struct {
	TotalValue           float64 `json:"total_value"`
	TotalCost            float64 `json:"total_cost"`
	TotalGainLoss        float64 `json:"total_gain_loss"`
	TotalGainLossPercent float64 `json:"total_gain_loss_percent"`
}

// PortfolioServicer defines the contract for the portfolio engine.
type PortfolioServicer interface {
	Buy(ctx context.Context, symbol string, shares int64) (*BuyReceipt, error)
	Sell(ctx context.Context, symbol string, shares int64) (*SellReceipt, error)
	GetPortfolio(ctx context.Context) ([]Holding, error)
	GetPortfolioValue(ctx context.Context) (*PortfolioValue, error)
	ListLots(ctx context.Context, symbol string, page pagination.PageRequest) (*pagination.PageResponse[models.Lot], error)
}

// StockServicer defines the contract for symbol-level market data lookups.
type StockServicer interface {
	GetStockInfo(ctx context.Context, symbol string) (*models.Quote, error)
	GetCompanyInfo(ctx context.Context, symbol string) (*models.CompanyProfile, error)
	GetHistory(ctx context.Context, symbol string) ([]models.Candle, error)
}
