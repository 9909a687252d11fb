// Package ledger provides durable storage for portfolio lots. It is the only
// package that touches the lots table; the portfolio service composes these
// operations into buy/sell semantics.
package ledger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "stockfolio/internal/errors"
	"stockfolio/internal/models"
	"stockfolio/internal/pagination"
)

// LotMutation describes one change to a lot produced by a FIFO reduction
// plan: either the lot is deleted outright or its share count is lowered
// to NewShares. Delete and NewShares are mutually exclusive.
type LotMutation struct {
	LotID     string
	NewShares int64
	Delete    bool
}

// Store is the persistence interface for portfolio lots.
type Store interface {
	// AppendLot inserts a new lot. Shares must be positive and price
	// non-negative.
	AppendLot(ctx context.Context, symbol string, shares int64, price float64, purchaseDate time.Time) (*models.Lot, error)

	// UpdateLotShares sets the remaining share count on an existing lot.
	// newShares must be positive; use DeleteLot to remove a consumed lot.
	UpdateLotShares(ctx context.Context, lotID string, newShares int64) error

	// DeleteLot removes a lot entirely.
	DeleteLot(ctx context.Context, lotID string) error

	// LotsForSymbol returns all lots for a symbol ordered oldest purchase
	// first. This ordering is what makes sell consumption FIFO.
	LotsForSymbol(ctx context.Context, symbol string) ([]models.Lot, error)

	// TotalShares returns the summed share count across a symbol's lots,
	// or 0 when the symbol has no lots.
	TotalShares(ctx context.Context, symbol string) (int64, error)

	// SymbolsWithHoldings returns the distinct symbols whose summed shares
	// are positive.
	SymbolsWithHoldings(ctx context.Context) ([]string, error)

	// Apply executes a reduction plan in a single transaction. Either every
	// mutation lands or none do.
	Apply(ctx context.Context, mutations []LotMutation) error

	// ListLots returns a page of lots, optionally filtered by symbol,
	// ordered oldest purchase first, along with the unpaged total count.
	ListLots(ctx context.Context, symbol string, page pagination.PageRequest) ([]models.Lot, int64, error)
}

// gormStore is the GORM-backed Store implementation.
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given GORM handle.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) AppendLot(ctx context.Context, symbol string, shares int64, price float64, purchaseDate time.Time) (*models.Lot, error) {
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid symbol")
	}
	if shares <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Shares must be a positive integer")
	}
	if price < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Price must not be negative")
	}

	lot := &models.Lot{
		Symbol:        symbol,
		Shares:        shares,
		PurchasePrice: price,
		PurchaseDate:  purchaseDate,
	}
	if err := s.db.WithContext(ctx).Create(lot).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return lot, nil
}

func (s *gormStore) UpdateLotShares(ctx context.Context, lotID string, newShares int64) error {
	if newShares <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Shares must be a positive integer")
	}

	result := s.db.WithContext(ctx).Model(&models.Lot{}).
		Where("id = ?", lotID).
		Update("shares", newShares)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLotNotFound
	}
	return nil
}

func (s *gormStore) DeleteLot(ctx context.Context, lotID string) error {
	result := s.db.WithContext(ctx).Where("id = ?", lotID).Delete(&models.Lot{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLotNotFound
	}
	return nil
}

func (s *gormStore) LotsForSymbol(ctx context.Context, symbol string) ([]models.Lot, error) {
	var lots []models.Lot
	// created_at breaks ties between lots bought in the same instant.
	if err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("purchase_date ASC, created_at ASC").
		Find(&lots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return lots, nil
}

func (s *gormStore) TotalShares(ctx context.Context, symbol string) (int64, error) {
	var total *int64
	if err := s.db.WithContext(ctx).Model(&models.Lot{}).
		Select("SUM(shares)").
		Where("symbol = ?", symbol).
		Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (s *gormStore) SymbolsWithHoldings(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := s.db.WithContext(ctx).Model(&models.Lot{}).
		Select("symbol").
		Group("symbol").
		Having("SUM(shares) > 0").
		Order("symbol ASC").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return symbols, nil
}

func (s *gormStore) ListLots(ctx context.Context, symbol string, page pagination.PageRequest) ([]models.Lot, int64, error) {
	page.Defaults()

	countQuery := s.db.WithContext(ctx).Model(&models.Lot{})
	listQuery := s.db.WithContext(ctx).Model(&models.Lot{})
	if symbol != "" {
		countQuery = countQuery.Where("symbol = ?", symbol)
		listQuery = listQuery.Where("symbol = ?", symbol)
	}

	var totalItems int64
	if err := countQuery.Count(&totalItems).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	var lots []models.Lot
	if err := listQuery.Order("purchase_date ASC, created_at ASC").
		Scopes(pagination.Paginate(page)).
		Find(&lots).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return lots, totalItems, nil
}

func (s *gormStore) Apply(ctx context.Context, mutations []LotMutation) error {
	if len(mutations) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range mutations {
			if m.Delete {
				result := tx.Where("id = ?", m.LotID).Delete(&models.Lot{})
				if result.Error != nil {
					return apperrors.Wrap(apperrors.ErrStorage, result.Error)
				}
				if result.RowsAffected == 0 {
					return apperrors.ErrLotNotFound
				}
				continue
			}

			result := tx.Model(&models.Lot{}).
				Where("id = ?", m.LotID).
				Update("shares", m.NewShares)
			if result.Error != nil {
				return apperrors.Wrap(apperrors.ErrStorage, result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.ErrLotNotFound
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}
