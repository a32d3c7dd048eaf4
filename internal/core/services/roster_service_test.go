package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/services"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
)

// --- Test Suite Setup ---

type RosterServiceTestSuite struct {
	suite.Suite
	mockCompanyRepo *MockCompanyRepository
	mockUserRepo    *MockUserRepository
	service         portssvc.RosterResolverSvc
	companyID       string
}

func (suite *RosterServiceTestSuite) SetupTest() {
	suite.mockCompanyRepo = new(MockCompanyRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewRosterService(suite.mockCompanyRepo, suite.mockUserRepo)
	suite.companyID = uuid.NewString()
}

func membership(userID, companyID string, role domain.UserCompanyRole, managerID *string) *domain.UserCompany {
	return &domain.UserCompany{
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
		ManagerID: managerID,
		JoinedAt:  time.Now(),
	}
}

// --- Explicit user lists ---

func (suite *RosterServiceTestSuite) TestResolveExplicit_KeepsDeclaredOrder() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorUsers, UserIDs: []string{"u2", "u1", "u3"}}

	for _, id := range []string{"u2", "u1", "u3"} {
		suite.mockCompanyRepo.On("FindUserCompany", ctx, id, suite.companyID).
			Return(membership(id, suite.companyID, domain.RoleEmployee, nil), nil).Once()
	}

	approvers, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, nil)

	suite.Require().NoError(err)
	suite.Equal([]string{"u2", "u1", "u3"}, approvers)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *RosterServiceTestSuite) TestResolveExplicit_SkipsDepartedAndRemoved() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorUsers, UserIDs: []string{"gone", "removed", "active"}}

	suite.mockCompanyRepo.On("FindUserCompany", ctx, "gone", suite.companyID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "removed", suite.companyID).
		Return(membership("removed", suite.companyID, domain.RoleRemoved, nil), nil).Once()
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "active", suite.companyID).
		Return(membership("active", suite.companyID, domain.RoleManager, nil), nil).Once()

	approvers, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, nil)

	suite.Require().NoError(err)
	suite.Equal([]string{"active"}, approvers)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *RosterServiceTestSuite) TestResolveExplicit_Deduplicates() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorUsers, UserIDs: []string{"u1", "u1", "u2"}}

	// Each distinct user is looked up exactly once.
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "u1", suite.companyID).
		Return(membership("u1", suite.companyID, domain.RoleEmployee, nil), nil).Once()
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "u2", suite.companyID).
		Return(membership("u2", suite.companyID, domain.RoleEmployee, nil), nil).Once()

	approvers, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, nil)

	suite.Require().NoError(err)
	suite.Equal([]string{"u1", "u2"}, approvers)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *RosterServiceTestSuite) TestResolveExplicit_AllGoneIsEmptyRoster() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorUsers, UserIDs: []string{"u1", "u2"}}

	suite.mockCompanyRepo.On("FindUserCompany", ctx, "u1", suite.companyID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "u2", suite.companyID).
		Return(membership("u2", suite.companyID, domain.RoleRemoved, nil), nil).Once()

	approvers, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, nil)

	suite.Require().Error(err)
	suite.Nil(approvers)
	suite.ErrorIs(err, apperrors.ErrEmptyRoster)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

// --- Role rosters ---

func (suite *RosterServiceTestSuite) TestResolveRole_ReturnsMembers() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorRole, Role: domain.RoleManager}

	members := []domain.UserCompany{
		*membership("m1", suite.companyID, domain.RoleManager, nil),
		*membership("m2", suite.companyID, domain.RoleManager, nil),
	}
	suite.mockCompanyRepo.On("ListUsersByRole", ctx, suite.companyID, domain.RoleManager).
		Return(members, nil).Once()

	approvers, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, nil)

	suite.Require().NoError(err)
	suite.Equal([]string{"m1", "m2"}, approvers)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *RosterServiceTestSuite) TestResolveRole_NoHoldersIsEmptyRoster() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorRole, Role: domain.RoleAdmin}

	suite.mockCompanyRepo.On("ListUsersByRole", ctx, suite.companyID, domain.RoleAdmin).
		Return([]domain.UserCompany{}, nil).Once()

	_, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrEmptyRoster)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

// --- Manager chains ---

func (suite *RosterServiceTestSuite) TestResolveManagerChain_WalksToTop() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorManagerChain, MaxDepth: 0}
	expense := &domain.Expense{SubmittedBy: "emp"}

	m1 := "m1"
	m2 := "m2"
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "emp", suite.companyID).
		Return(membership("emp", suite.companyID, domain.RoleEmployee, &m1), nil).Once()
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "m1", suite.companyID).
		Return(membership("m1", suite.companyID, domain.RoleManager, &m2), nil).Once()
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "m2", suite.companyID).
		Return(membership("m2", suite.companyID, domain.RoleAdmin, nil), nil).Once()

	approvers, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, expense)

	suite.Require().NoError(err)
	suite.Equal([]string{"m1", "m2"}, approvers)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *RosterServiceTestSuite) TestResolveManagerChain_RespectsMaxDepth() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorManagerChain, MaxDepth: 1}
	expense := &domain.Expense{SubmittedBy: "emp"}

	m1 := "m1"
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "emp", suite.companyID).
		Return(membership("emp", suite.companyID, domain.RoleEmployee, &m1), nil).Once()

	approvers, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, expense)

	suite.Require().NoError(err)
	suite.Equal([]string{"m1"}, approvers)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *RosterServiceTestSuite) TestResolveManagerChain_StopsOnCycle() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorManagerChain, MaxDepth: 0}
	expense := &domain.Expense{SubmittedBy: "emp"}

	// m1 and m2 manage each other; the walk must terminate.
	m1 := "m1"
	m2 := "m2"
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "emp", suite.companyID).
		Return(membership("emp", suite.companyID, domain.RoleEmployee, &m1), nil).Once()
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "m1", suite.companyID).
		Return(membership("m1", suite.companyID, domain.RoleManager, &m2), nil).Once()
	suite.mockCompanyRepo.On("FindUserCompany", ctx, "m2", suite.companyID).
		Return(membership("m2", suite.companyID, domain.RoleManager, &m1), nil).Once()

	approvers, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, expense)

	suite.Require().NoError(err)
	suite.Equal([]string{"m1", "m2"}, approvers)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *RosterServiceTestSuite) TestResolveManagerChain_NoManagerIsEmptyRoster() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorManagerChain}
	expense := &domain.Expense{SubmittedBy: "ceo"}

	suite.mockCompanyRepo.On("FindUserCompany", ctx, "ceo", suite.companyID).
		Return(membership("ceo", suite.companyID, domain.RoleAdmin, nil), nil).Once()

	_, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, expense)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrEmptyRoster)

	suite.mockCompanyRepo.AssertExpectations(suite.T())
}

func (suite *RosterServiceTestSuite) TestResolveManagerChain_RequiresExpense() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorManagerChain}

	_, err := suite.service.ResolveApprovers(ctx, suite.companyID, selector, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Selector validation ---

func (suite *RosterServiceTestSuite) TestResolve_NilSelector() {
	_, err := suite.service.ResolveApprovers(context.Background(), suite.companyID, nil, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RosterServiceTestSuite) TestResolve_UnknownSelectorKind() {
	selector := &domain.ApproverSelector{Kind: "GEOFENCE"}

	_, err := suite.service.ResolveApprovers(context.Background(), suite.companyID, selector, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestRosterServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RosterServiceTestSuite))
}
