package models

import "time"

// Stock is a write-through cache row for the most recent quote seen for a
// symbol. It exists for inspection and debugging only; the portfolio ledger
// never reads prices back from it.
type Stock struct {
	Symbol      string    `gorm:"primaryKey" json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	LastPrice   float64   `json:"last_price"`
	LastUpdated time.Time `json:"last_updated"`
}
