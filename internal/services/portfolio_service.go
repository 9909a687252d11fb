package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "stockfolio/internal/errors"
	"stockfolio/internal/ledger"
	"stockfolio/internal/logger"
	"stockfolio/internal/models"
	"stockfolio/internal/pagination"
)

// symbolLocks hands out one mutex per symbol so that check-then-mutate
// sequences on the same symbol serialize while different symbols proceed
// concurrently. Locks are never released from the map; the set of traded
// symbols is small and bounded.
type symbolLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSymbolLocks() *symbolLocks {
	return &symbolLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *symbolLocks) get(symbol string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[symbol] = lock
	}
	return lock
}

// portfolioService implements the portfolio engine: buy appends lots, sell
// consumes them FIFO, and valuation joins stored lots with live quotes.
type portfolioService struct {
	store  ledger.Store
	quotes QuoteProvider
	locks  *symbolLocks
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(store ledger.Store, quotes QuoteProvider) PortfolioServicer {
	return &portfolioService{store: store, quotes: quotes, locks: newSymbolLocks()}
}

func insufficientShares(owned int64, symbol string) error {
	return apperrors.WithMessage(apperrors.ErrInsufficientShares,
		fmt.Sprintf("Not enough shares to sell. You own %d shares of %s", owned, symbol))
}

// validateOrder checks the symbol/shares preconditions shared by Buy and Sell.
func validateOrder(symbol string, shares int64) error {
	if symbol == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid symbol")
	}
	if shares <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Shares must be a positive integer")
	}
	return nil
}

// Buy purchases shares at the current quoted price and appends a new lot.
// One lot per call; lots at the same price are never merged.
func (s *portfolioService) Buy(ctx context.Context, symbol string, shares int64) (*BuyReceipt, error) {
	if err := validateOrder(symbol, shares); err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	lock := s.locks.get(symbol)
	lock.Lock()
	defer lock.Unlock()

	lot, err := s.store.AppendLot(ctx, symbol, shares, quote.Price, time.Now())
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("recorded buy",
		"symbol", symbol,
		"shares", shares,
		"price", quote.Price,
		"lot_id", lot.ID,
	)

	return &BuyReceipt{
		Symbol:        symbol,
		Shares:        shares,
		PricePerShare: quote.Price,
		TotalCost:     quote.Price * float64(shares),
	}, nil
}

// Sell removes shares from the portfolio, consuming the oldest lots first.
// The sufficiency check, the lot read, and the mutation all run under the
// symbol's lock so concurrent sells cannot jointly oversell.
func (s *portfolioService) Sell(ctx context.Context, symbol string, shares int64) (*SellReceipt, error) {
	if err := validateOrder(symbol, shares); err != nil {
		return nil, err
	}

	// Sufficiency is checked before the quote fetch: a caller who does not
	// own enough shares hears that even when the quote upstream is down.
	// This read is advisory; the authoritative re-check runs under the lock.
	owned, err := s.store.TotalShares(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if owned < shares {
		return nil, insufficientShares(owned, symbol)
	}

	// The quoted price only prices the sale report, so fetch it before
	// taking the lock and keep the critical section storage-only.
	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	lock := s.locks.get(symbol)
	lock.Lock()
	defer lock.Unlock()

	owned, err = s.store.TotalShares(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if owned < shares {
		return nil, insufficientShares(owned, symbol)
	}

	lots, err := s.store.LotsForSymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	mutations, err := planReduction(lots, shares)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.store.Apply(ctx, mutations); err != nil {
		return nil, err
	}

	logger.Get().Infow("recorded sell",
		"symbol", symbol,
		"shares", shares,
		"price", quote.Price,
		"lots_touched", len(mutations),
	)

	return &SellReceipt{
		Symbol:        symbol,
		SharesSold:    shares,
		PricePerShare: quote.Price,
		TotalValue:    quote.Price * float64(shares),
	}, nil
}

// GetPortfolio values every symbol with positive holdings at its live quote.
// A quote failure for any symbol aborts the whole call; partial valuations
// are never returned.
func (s *portfolioService) GetPortfolio(ctx context.Context) ([]Holding, error) {
	symbols, err := s.store.SymbolsWithHoldings(ctx)
	if err != nil {
		return nil, err
	}

	holdings := make([]Holding, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := s.quotes.GetQuote(ctx, symbol)
		if err != nil {
			return nil, err
		}

		lots, err := s.store.LotsForSymbol(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if len(lots) == 0 {
			continue
		}

		var shares int64
		var priceSum float64
		for _, lot := range lots {
			shares += lot.Shares
			priceSum += lot.PurchasePrice
		}
		// Plain mean over lots, not weighted by lot size. Kept for parity
		// with the reported figures this service has always produced.
		avgPurchasePrice := priceSum / float64(len(lots))

		holdings = append(holdings, Holding{
			Symbol:           symbol,
			Shares:           shares,
			CurrentPrice:     quote.Price,
			CurrentValue:     quote.Price * float64(shares),
			AvgPurchasePrice: avgPurchasePrice,
			TotalGainLoss:    (quote.Price - avgPurchasePrice) * float64(shares),
		})
	}
	return holdings, nil
}

// GetPortfolioValue aggregates value, cost, and gain/loss across holdings.
func (s *portfolioService) GetPortfolioValue(ctx context.Context) (*PortfolioValue, error) {
	holdings, err := s.GetPortfolio(ctx)
	if err != nil {
		return nil, err
	}

	value := &PortfolioValue{}
	for _, h := range holdings {
		value.TotalValue += h.CurrentValue
		value.TotalCost += h.AvgPurchasePrice * float64(h.Shares)
		value.TotalGainLoss += h.TotalGainLoss
	}
	if value.TotalCost > 0 {
		value.TotalGainLossPercent = value.TotalGainLoss / value.TotalCost * 100
	}
	return value, nil
}

// ListLots returns a page of raw ledger rows for inspection.
func (s *portfolioService) ListLots(ctx context.Context, symbol string, page pagination.PageRequest) (*pagination.PageResponse[models.Lot], error) {
	page.Defaults()

	lots, totalItems, err := s.store.ListLots(ctx, symbol, page)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(lots, page.Page, page.PageSize, totalItems)
	return &result, nil
}
