package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// exchangeRateService provides exchange rate lookups and administration.
type exchangeRateService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateRepositoryFacade
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, authorizer portssvc.CompanyAuthorizerSvc) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		BaseService: BaseService{CompanyAuthorizer: authorizer},
		rateRepo:    rateRepo,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// RateAt returns the rate converting fromCode into toCode effective at the
// given instant. The identity pair short-circuits to one so companies do not
// need to configure self-rates.
func (s *exchangeRateService) RateAt(ctx context.Context, companyID, fromCode, toCode string, at time.Time) (decimal.Decimal, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return decimal.Zero, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}

	rate, err := s.rateRepo.FindRateAt(ctx, companyID, fromCode, toCode, at)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: no exchange rate configured for %s/%s", apperrors.ErrValidation, fromCode, toCode)
		}
		return decimal.Zero, fmt.Errorf("failed to look up exchange rate: %w", err)
	}
	return rate.Rate, nil
}

// CreateExchangeRate persists a new exchange rate for the company.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, companyID string, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	now := time.Now()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		CompanyID:        companyID,
		FromCurrencyCode: strings.ToUpper(req.FromCurrencyCode),
		ToCurrencyCode:   strings.ToUpper(req.ToCurrencyCode),
		Rate:             req.Rate,
		DateEffective:    req.DateEffective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}
	return &rate, nil
}

// ListExchangeRates retrieves all exchange rates configured for the company.
func (s *exchangeRateService) ListExchangeRates(ctx context.Context, companyID, requestingUserID string) ([]domain.ExchangeRate, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleEmployee); err != nil {
		return nil, err
	}
	return s.rateRepo.ListExchangeRates(ctx, companyID)
}
