package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/services"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
	"github.com/xpenseflow/xpenseflow_backend/internal/utils"
)

// --- Test Suite Setup ---

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
}

// --- RegisterUser ---

func (suite *UserServiceTestSuite) TestRegisterUser_Success() {
	ctx := context.Background()
	req := dto.RegisterUserRequest{
		Name:     "Alex Doe",
		Email:    "  Alex@Example.COM ",
		Password: "hunter2hunter2",
	}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "alex@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "alex@example.com" && u.PasswordHash != "" && u.PasswordHash != req.Password
	})).Return(nil).Once()

	user, err := suite.service.RegisterUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.NotEmpty(user.UserID)
	suite.Equal("Alex Doe", user.Name)
	suite.Equal("alex@example.com", user.Email)
	suite.Equal(user.UserID, user.CreatedBy)
	suite.WithinDuration(time.Now(), user.CreatedAt, time.Second)
	suite.True(utils.CheckPasswordHash("hunter2hunter2", user.PasswordHash))

	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestRegisterUser_DuplicateEmail() {
	ctx := context.Background()
	req := dto.RegisterUserRequest{
		Name:     "Alex Doe",
		Email:    "alex@example.com",
		Password: "hunter2hunter2",
	}

	existing := &domain.User{UserID: uuid.NewString(), Email: "alex@example.com"}
	suite.mockUserRepo.On("FindUserByEmail", ctx, "alex@example.com").Return(existing, nil).Once()

	user, err := suite.service.RegisterUser(ctx, req)

	suite.Require().Error(err)
	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

// --- AuthenticateUser ---

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)

	user := &domain.User{UserID: uuid.NewString(), Email: "alex@example.com", PasswordHash: hash}
	suite.mockUserRepo.On("FindUserByEmail", ctx, "alex@example.com").Return(user, nil).Once()

	got, err := suite.service.AuthenticateUser(ctx, "Alex@Example.com", "correct-horse")

	suite.Require().NoError(err)
	suite.Equal(user, got)

	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)

	user := &domain.User{UserID: uuid.NewString(), Email: "alex@example.com", PasswordHash: hash}
	suite.mockUserRepo.On("FindUserByEmail", ctx, "alex@example.com").Return(user, nil).Once()

	got, err := suite.service.AuthenticateUser(ctx, "alex@example.com", "battery-staple")

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownEmailIsForbidden() {
	ctx := context.Background()

	// Unknown accounts and bad passwords are indistinguishable to callers.
	suite.mockUserRepo.On("FindUserByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound).Once()

	got, err := suite.service.AuthenticateUser(ctx, "nobody@example.com", "whatever")

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_DeletedUser() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)

	user := &domain.User{UserID: uuid.NewString(), Email: "alex@example.com", PasswordHash: hash, IsDeleted: true}
	suite.mockUserRepo.On("FindUserByEmail", ctx, "alex@example.com").Return(user, nil).Once()

	got, err := suite.service.AuthenticateUser(ctx, "alex@example.com", "correct-horse")

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- GetUserByID ---

func (suite *UserServiceTestSuite) TestGetUserByID_DeletedUserIsNotFound() {
	ctx := context.Background()
	userID := uuid.NewString()
	user := &domain.User{UserID: userID, IsDeleted: true}

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(user, nil).Once()

	got, err := suite.service.GetUserByID(ctx, userID)

	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
