package models

import "time"

// Lot represents one purchase event still (partially) held in the portfolio.
// Every buy creates a new lot; lots are never coalesced. A sell reduces the
// shares of the oldest lots first and deletes any lot it fully consumes, so
// a surviving lot always has Shares > 0. Only Shares ever changes after
// creation; PurchasePrice and PurchaseDate are fixed at buy time.
type Lot struct {
	Base
	Symbol        string    `gorm:"not null;index" json:"symbol"`
	Shares        int64     `gorm:"not null" json:"shares"`
	PurchasePrice float64   `gorm:"not null" json:"purchase_price"`
	PurchaseDate  time.Time `gorm:"not null;index" json:"purchase_date"`
}
