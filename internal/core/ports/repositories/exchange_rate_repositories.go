package repositories

import (
	"context"
	"time"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindRateAt retrieves the exchange rate for a currency pair effective at the
	// given instant (the latest rate whose effective date is not after it).
	FindRateAt(ctx context.Context, companyID string, fromCode string, toCode string, at time.Time) (*domain.ExchangeRate, error)

	// ListExchangeRates retrieves all exchange rates configured for a company.
	ListExchangeRates(ctx context.Context, companyID string) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// SaveExchangeRate persists a new exchange rate.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange-rate repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
