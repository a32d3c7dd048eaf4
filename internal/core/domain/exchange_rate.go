package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate represents the conversion rate between two currencies effective
// from a given date. Expense submission snapshots the rate effective at the
// submission timestamp; the snapshot is never recomputed.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"` // Primary Key (UUID)
	CompanyID        string          `json:"companyID"`      // FK -> companies.company_id
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}
