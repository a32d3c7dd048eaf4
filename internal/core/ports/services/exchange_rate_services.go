package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// RateSnapshotSvc supplies conversion rates for submission-time snapshots.
type RateSnapshotSvc interface {
	// RateAt returns the rate converting fromCode into toCode effective at the
	// given instant. Returns decimal one when the codes are equal.
	RateAt(ctx context.Context, companyID, fromCode, toCode string, at time.Time) (decimal.Decimal, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rates
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate persists a new exchange rate for the company.
	CreateExchangeRate(ctx context.Context, companyID string, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)
}

// ExchangeRateReaderSvc defines read operations for exchange rates
type ExchangeRateReaderSvc interface {
	// ListExchangeRates retrieves all exchange rates configured for the company.
	ListExchangeRates(ctx context.Context, companyID, requestingUserID string) ([]domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines all exchange-rate service interfaces
type ExchangeRateSvcFacade interface {
	RateSnapshotSvc
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
