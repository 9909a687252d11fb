package testutil

import (
	"context"
	"sync/atomic"

	apperrors "stockfolio/internal/errors"
	"stockfolio/internal/models"
)

// StubQuotes is an in-memory QuoteProvider for tests. Prices maps symbols to
// quoted prices; any symbol not in the map reports QUOTE_UNAVAILABLE. Set
// Fail to force every call to fail regardless of the map.
type StubQuotes struct {
	Prices map[string]float64
	Fail   bool

	calls atomic.Int64
}

// GetQuote returns the stubbed quote for a symbol.
func (s *StubQuotes) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	s.calls.Add(1)
	if s.Fail {
		return nil, apperrors.ErrQuoteUnavailable
	}
	price, ok := s.Prices[symbol]
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable,
			"Could not fetch data for symbol "+symbol)
	}
	return &models.Quote{Symbol: symbol, Price: price}, nil
}

// GetDailySeries is not stubbed with data; it fails like an unknown symbol
// unless the test overrides the provider entirely.
func (s *StubQuotes) GetDailySeries(_ context.Context, symbol string) ([]models.Candle, error) {
	s.calls.Add(1)
	if s.Fail {
		return nil, apperrors.ErrQuoteUnavailable
	}
	return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable,
		"Could not fetch historical data for symbol "+symbol)
}

// GetCompanyOverview behaves like GetDailySeries.
func (s *StubQuotes) GetCompanyOverview(_ context.Context, symbol string) (*models.CompanyProfile, error) {
	s.calls.Add(1)
	if s.Fail {
		return nil, apperrors.ErrQuoteUnavailable
	}
	return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable,
		"Could not fetch company info for symbol "+symbol)
}

// Calls reports how many provider calls the stub has served.
func (s *StubQuotes) Calls() int64 {
	return s.calls.Load()
}
