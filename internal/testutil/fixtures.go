package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"stockfolio/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NextSymbol returns a ticker unique within the test run. The in-memory
// test database is shared process-wide, so tests must not reuse symbols.
func NextSymbol() string {
	return fmt.Sprintf("TST%d", nextID())
}

// CreateTestLot inserts a lot with the given shares and price, dated now.
func CreateTestLot(t *testing.T, db *gorm.DB, symbol string, shares int64, price float64) *models.Lot {
	t.Helper()
	return CreateTestLotAt(t, db, symbol, shares, price, time.Now())
}

// CreateTestLotAt inserts a lot with an explicit purchase date, for tests
// that depend on FIFO ordering.
func CreateTestLotAt(t *testing.T, db *gorm.DB, symbol string, shares int64, price float64, purchaseDate time.Time) *models.Lot {
	t.Helper()

	lot := &models.Lot{
		Symbol:        symbol,
		Shares:        shares,
		PurchasePrice: price,
		PurchaseDate:  purchaseDate,
	}
	if err := db.Create(lot).Error; err != nil {
		t.Fatalf("failed to create test lot: %v", err)
	}
	return lot
}

// CountLots returns the number of surviving lots for a symbol.
func CountLots(t *testing.T, db *gorm.DB, symbol string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Lot{}).Where("symbol = ?", symbol).Count(&count).Error; err != nil {
		t.Fatalf("failed to count lots: %v", err)
	}
	return count
}
