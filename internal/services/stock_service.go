package services

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "stockfolio/internal/errors"
	"stockfolio/internal/logger"
	"stockfolio/internal/models"
)

// stockService serves symbol-level market data and keeps the stocks cache
// table current as a side effect of each successful fetch.
type stockService struct {
	db     *gorm.DB
	quotes QuoteProvider
}

// NewStockService creates a new StockServicer.
func NewStockService(db *gorm.DB, quotes QuoteProvider) StockServicer {
	return &stockService{db: db, quotes: quotes}
}

// GetStockInfo fetches the live quote for a symbol and refreshes the cached
// last price. A cache write failure is logged but does not fail the lookup.
func (s *stockService) GetStockInfo(ctx context.Context, symbol string) (*models.Quote, error) {
	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	stock := models.Stock{
		Symbol:      symbol,
		LastPrice:   quote.Price,
		LastUpdated: time.Now(),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_price", "last_updated"}),
	}).Create(&stock).Error; err != nil {
		logger.Get().Warnw("failed to cache quote", "symbol", symbol, "error", err)
	}

	return quote, nil
}

// GetCompanyInfo fetches the company profile and caches the company name.
func (s *stockService) GetCompanyInfo(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	profile, err := s.quotes.GetCompanyOverview(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Stock{}).
		Where("symbol = ?", symbol).
		Update("company_name", profile.Name).Error; err != nil {
		logger.Get().Warnw("failed to cache company name", "symbol", symbol, "error", err)
	}

	return profile, nil
}

// GetHistory returns the daily OHLCV series for a symbol, newest first.
func (s *stockService) GetHistory(ctx context.Context, symbol string) ([]models.Candle, error) {
	candles, err := s.quotes.GetDailySeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable,
			"Could not fetch historical data for symbol "+symbol)
	}
	return candles, nil
}
