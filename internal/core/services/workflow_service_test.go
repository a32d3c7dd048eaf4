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
)

// --- Test Suite Setup ---

type WorkflowServiceTestSuite struct {
	suite.Suite
	mockWorkflowRepo *MockWorkflowRepository
	mockRoster       *MockRosterResolver
	service          portssvc.WorkflowSvcFacade
	companyID        string
	adminID          string
}

func (suite *WorkflowServiceTestSuite) SetupTest() {
	suite.mockWorkflowRepo = new(MockWorkflowRepository)
	suite.mockRoster = new(MockRosterResolver)
	suite.service = services.NewWorkflowService(suite.mockWorkflowRepo, suite.mockRoster, nil)
	suite.companyID = uuid.NewString()
	suite.adminID = uuid.NewString()
}

// --- CreateWorkflow ---

func (suite *WorkflowServiceTestSuite) TestCreateWorkflow_Success() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorUsers, UserIDs: []string{"u1", "u2"}}
	req := dto.CreateWorkflowRequest{
		Name:     "Over 1000",
		Priority: 10,
		Rule: domain.Rule{
			Type:             domain.WorkflowPercentage,
			RequiredPercent:  60,
			EligibleSelector: selector,
		},
	}

	suite.mockRoster.On("ResolveApprovers", ctx, suite.companyID, selector, (*domain.Expense)(nil)).
		Return([]string{"u1", "u2"}, nil).Once()
	suite.mockWorkflowRepo.On("SaveWorkflow", ctx, mock.AnythingOfType("domain.Workflow")).Return(nil).Once()

	workflow, err := suite.service.CreateWorkflow(ctx, suite.companyID, req, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workflow)
	suite.NotEmpty(workflow.WorkflowID)
	suite.Equal(req.Name, workflow.Name)
	suite.Equal(req.Priority, workflow.Priority)
	suite.True(workflow.IsActive)
	suite.Equal(int64(1), workflow.Version)
	suite.Equal(suite.adminID, workflow.CreatedBy)
	suite.WithinDuration(time.Now(), workflow.CreatedAt, time.Second)

	suite.mockRoster.AssertExpectations(suite.T())
	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestCreateWorkflow_InvalidRule() {
	ctx := context.Background()
	req := dto.CreateWorkflowRequest{
		Name: "Broken",
		Rule: domain.Rule{
			Type:             domain.WorkflowPercentage,
			RequiredPercent:  150,
			EligibleSelector: &domain.ApproverSelector{Kind: domain.SelectorUsers, UserIDs: []string{"u1"}},
		},
	}

	workflow, err := suite.service.CreateWorkflow(ctx, suite.companyID, req, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(workflow)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "SaveWorkflow", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestCreateWorkflow_EmptyRosterSelector() {
	ctx := context.Background()
	selector := &domain.ApproverSelector{Kind: domain.SelectorRole, Role: domain.RoleManager}
	req := dto.CreateWorkflowRequest{
		Name: "Managers",
		Rule: domain.Rule{
			Type:             domain.WorkflowPercentage,
			RequiredPercent:  50,
			EligibleSelector: selector,
		},
	}

	// No one holds the manager role; the misconfiguration surfaces at save time.
	suite.mockRoster.On("ResolveApprovers", ctx, suite.companyID, selector, (*domain.Expense)(nil)).
		Return(nil, apperrors.ErrEmptyRoster).Once()

	workflow, err := suite.service.CreateWorkflow(ctx, suite.companyID, req, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(workflow)
	suite.ErrorIs(err, apperrors.ErrEmptyRoster)

	suite.mockWorkflowRepo.AssertNotCalled(suite.T(), "SaveWorkflow", mock.Anything, mock.Anything)
}

func (suite *WorkflowServiceTestSuite) TestCreateWorkflow_ManagerChainSkipsResolution() {
	ctx := context.Background()
	req := dto.CreateWorkflowRequest{
		Name: "Chain of command",
		Rule: domain.Rule{
			Type:             domain.WorkflowPercentage,
			RequiredPercent:  100,
			EligibleSelector: &domain.ApproverSelector{Kind: domain.SelectorManagerChain, MaxDepth: 2},
		},
	}

	// Manager chains depend on the submitter, so no resolution happens here.
	suite.mockWorkflowRepo.On("SaveWorkflow", ctx, mock.AnythingOfType("domain.Workflow")).Return(nil).Once()

	workflow, err := suite.service.CreateWorkflow(ctx, suite.companyID, req, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workflow)

	suite.mockRoster.AssertNotCalled(suite.T(), "ResolveApprovers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

// --- UpdateWorkflow ---

func (suite *WorkflowServiceTestSuite) TestUpdateWorkflow_Success() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	selector := &domain.ApproverSelector{Kind: domain.SelectorUsers, UserIDs: []string{"u1"}}
	req := dto.UpdateWorkflowRequest{
		Name:     "Renamed",
		Priority: 7,
		Rule: domain.Rule{
			Type:             domain.WorkflowSpecificApprover,
			ApproverSelector: selector,
		},
		Version: 3,
	}

	existing := &domain.Workflow{
		WorkflowID: workflowID,
		CompanyID:  suite.companyID,
		Name:       "Old name",
		IsActive:   true,
		Version:    3,
	}

	suite.mockRoster.On("ResolveApprovers", ctx, suite.companyID, selector, (*domain.Expense)(nil)).
		Return([]string{"u1"}, nil).Once()
	suite.mockWorkflowRepo.On("FindWorkflowByID", ctx, suite.companyID, workflowID).Return(existing, nil).Once()
	suite.mockWorkflowRepo.On("UpdateWorkflow", ctx, mock.MatchedBy(func(w domain.Workflow) bool {
		return w.Name == "Renamed" && w.Version == 3
	})).Return(nil).Once()

	workflow, err := suite.service.UpdateWorkflow(ctx, suite.companyID, workflowID, req, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workflow)
	suite.Equal("Renamed", workflow.Name)
	suite.Equal(7, workflow.Priority)
	suite.Equal(int64(4), workflow.Version)
	suite.Equal(suite.adminID, workflow.LastUpdatedBy)

	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestUpdateWorkflow_VersionConflict() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	selector := &domain.ApproverSelector{Kind: domain.SelectorUsers, UserIDs: []string{"u1"}}
	req := dto.UpdateWorkflowRequest{
		Name: "Stale edit",
		Rule: domain.Rule{
			Type:             domain.WorkflowSpecificApprover,
			ApproverSelector: selector,
		},
		Version: 1,
	}

	existing := &domain.Workflow{WorkflowID: workflowID, CompanyID: suite.companyID, Version: 2}

	suite.mockRoster.On("ResolveApprovers", ctx, suite.companyID, selector, (*domain.Expense)(nil)).
		Return([]string{"u1"}, nil).Once()
	suite.mockWorkflowRepo.On("FindWorkflowByID", ctx, suite.companyID, workflowID).Return(existing, nil).Once()
	suite.mockWorkflowRepo.On("UpdateWorkflow", ctx, mock.AnythingOfType("domain.Workflow")).
		Return(apperrors.ErrVersionConflict).Once()

	workflow, err := suite.service.UpdateWorkflow(ctx, suite.companyID, workflowID, req, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(workflow)
	suite.ErrorIs(err, apperrors.ErrVersionConflict)

	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

// --- ToggleWorkflowStatus ---

func (suite *WorkflowServiceTestSuite) TestToggleWorkflowStatus_Flips() {
	ctx := context.Background()
	workflowID := uuid.NewString()
	existing := &domain.Workflow{WorkflowID: workflowID, CompanyID: suite.companyID, IsActive: true}

	suite.mockWorkflowRepo.On("FindWorkflowByID", ctx, suite.companyID, workflowID).Return(existing, nil).Once()
	suite.mockWorkflowRepo.On("ToggleWorkflowStatus", ctx, suite.companyID, workflowID, false, suite.adminID).
		Return(nil).Once()

	workflow, err := suite.service.ToggleWorkflowStatus(ctx, suite.companyID, workflowID, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workflow)
	suite.False(workflow.IsActive)

	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func (suite *WorkflowServiceTestSuite) TestToggleWorkflowStatus_NotFound() {
	ctx := context.Background()
	workflowID := uuid.NewString()

	suite.mockWorkflowRepo.On("FindWorkflowByID", ctx, suite.companyID, workflowID).
		Return(nil, apperrors.ErrNotFound).Once()

	workflow, err := suite.service.ToggleWorkflowStatus(ctx, suite.companyID, workflowID, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(workflow)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.mockWorkflowRepo.AssertExpectations(suite.T())
}

func TestWorkflowServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowServiceTestSuite))
}
