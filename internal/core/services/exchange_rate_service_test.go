package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/services"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// --- Test Suite Setup ---

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      portssvc.ExchangeRateSvcFacade
	companyID    string
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, nil)
	suite.companyID = uuid.NewString()
}

// --- RateAt ---

func (suite *ExchangeRateServiceTestSuite) TestRateAt_IdentityPairIsOne() {
	rate, err := suite.service.RateAt(context.Background(), suite.companyID, "usd", "USD", time.Now())

	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(1).Equal(rate))

	// No repository lookup for the identity pair.
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRateAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRateAt_ReturnsConfiguredRate() {
	ctx := context.Background()
	at := time.Now()
	configured := &domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		CompanyID:        suite.companyID,
		FromCurrencyCode: "EUR",
		ToCurrencyCode:   "USD",
		Rate:             decimal.RequireFromString("1.0845"),
	}

	suite.mockRateRepo.On("FindRateAt", ctx, suite.companyID, "EUR", "USD", at).Return(configured, nil).Once()

	rate, err := suite.service.RateAt(ctx, suite.companyID, "eur", "usd", at)

	suite.Require().NoError(err)
	suite.True(configured.Rate.Equal(rate))

	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestRateAt_MissingRateIsValidationError() {
	ctx := context.Background()
	at := time.Now()

	suite.mockRateRepo.On("FindRateAt", ctx, suite.companyID, "JPY", "USD", at).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.RateAt(ctx, suite.companyID, "JPY", "USD", at)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "JPY/USD")
}

func (suite *ExchangeRateServiceTestSuite) TestRateAt_RejectsBadCurrencyCodes() {
	_, err := suite.service.RateAt(context.Background(), suite.companyID, "EURO", "USD", time.Now())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- CreateExchangeRate ---

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Success() {
	ctx := context.Background()
	creatorID := uuid.NewString()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "eur",
		ToCurrencyCode:   "usd",
		Rate:             decimal.RequireFromString("1.09"),
		DateEffective:    time.Now(),
	}

	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.FromCurrencyCode == "EUR" && r.ToCurrencyCode == "USD"
	})).Return(nil).Once()

	rate, err := suite.service.CreateExchangeRate(ctx, suite.companyID, req, creatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(rate)
	suite.NotEmpty(rate.ExchangeRateID)
	suite.Equal(suite.companyID, rate.CompanyID)
	suite.Equal(creatorID, rate.CreatedBy)

	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_RejectsNonPositiveRate() {
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "EUR",
		ToCurrencyCode:   "USD",
		Rate:             decimal.Zero,
		DateEffective:    time.Now(),
	}

	rate, err := suite.service.CreateExchangeRate(context.Background(), suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_RejectsSamePair() {
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "USD",
		Rate:             decimal.NewFromInt(1),
		DateEffective:    time.Now(),
	}

	rate, err := suite.service.CreateExchangeRate(context.Background(), suite.companyID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
