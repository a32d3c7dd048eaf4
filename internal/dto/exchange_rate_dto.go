package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
)

// CreateExchangeRateRequest defines data for creating a new exchange rate.
type CreateExchangeRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,iso4217"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,iso4217"`
	Rate             decimal.Decimal `json:"rate" binding:"required"`
	DateEffective    time.Time       `json:"dateEffective" binding:"required"`
}

// ExchangeRateResponse defines data returned for an exchange rate.
type ExchangeRateResponse struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ToExchangeRateResponse converts domain.ExchangeRate to DTO.
func ToExchangeRateResponse(r *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   r.ExchangeRateID,
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		Rate:             r.Rate,
		DateEffective:    r.DateEffective,
		CreatedAt:        r.CreatedAt,
	}
}

// ListExchangeRatesResponse wraps a list of exchange rates.
type ListExchangeRatesResponse struct {
	Rates []ExchangeRateResponse `json:"rates"`
}
