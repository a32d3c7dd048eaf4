package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// Shared mock repositories and services for the service test suites.

// MockWorkflowRepository is a mock type for the WorkflowRepositoryFacade interface
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) FindWorkflowByID(ctx context.Context, companyID string, workflowID string) (*domain.Workflow, error) {
	args := m.Called(ctx, companyID, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) ListWorkflowsByCompany(ctx context.Context, companyID string, activeOnly bool) ([]domain.Workflow, error) {
	args := m.Called(ctx, companyID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Workflow), args.Error(1)
}

func (m *MockWorkflowRepository) SaveWorkflow(ctx context.Context, workflow domain.Workflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *MockWorkflowRepository) UpdateWorkflow(ctx context.Context, workflow domain.Workflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *MockWorkflowRepository) ToggleWorkflowStatus(ctx context.Context, companyID string, workflowID string, isActive bool, updatedBy string) error {
	args := m.Called(ctx, companyID, workflowID, isActive, updatedBy)
	return args.Error(0)
}

// MockExpenseRepository is a mock type for the ExpenseRepositoryWithTx interface
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, companyID string, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, companyID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	args := m.Called(ctx, companyID, limit, nextToken)
	var expenses []domain.Expense
	if args.Get(0) != nil {
		expenses = args.Get(0).([]domain.Expense)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return expenses, token, args.Error(2)
}

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense, record *domain.ApprovalRecord) error {
	args := m.Called(ctx, expense, record)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindApprovalRecordByExpenseID(ctx context.Context, expenseID string) (*domain.ApprovalRecord, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRecord), args.Error(1)
}

func (m *MockExpenseRepository) UpdateApprovalRecord(ctx context.Context, record domain.ApprovalRecord, expenseStatus domain.ExpenseStatus) error {
	args := m.Called(ctx, record, expenseStatus)
	return args.Error(0)
}

func (m *MockExpenseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockExpenseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockExpenseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockCompanyRepository is a mock type for the CompanyRepositoryFacade interface
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListCompaniesByUser(ctx context.Context, userID string) ([]domain.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) AddUserToCompany(ctx context.Context, membership domain.UserCompany) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindUserCompany(ctx context.Context, userID string, companyID string) (*domain.UserCompany, error) {
	args := m.Called(ctx, userID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserCompany), args.Error(1)
}

func (m *MockCompanyRepository) ListUsersByRole(ctx context.Context, companyID string, role domain.UserCompanyRole) ([]domain.UserCompany, error) {
	args := m.Called(ctx, companyID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserCompany), args.Error(1)
}

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// MockExchangeRateRepository is a mock type for the ExchangeRateRepositoryFacade interface
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindRateAt(ctx context.Context, companyID string, fromCode string, toCode string, at time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, companyID, fromCode, toCode, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, companyID string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// MockRosterResolver is a mock type for the RosterResolverSvc interface
type MockRosterResolver struct {
	mock.Mock
}

func (m *MockRosterResolver) ResolveApprovers(ctx context.Context, companyID string, selector *domain.ApproverSelector, expense *domain.Expense) ([]string, error) {
	args := m.Called(ctx, companyID, selector, expense)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockApprovalSvc is a mock type for the ApprovalSvcFacade interface
type MockApprovalSvc struct {
	mock.Mock
}

func (m *MockApprovalSvc) SelectWorkflow(ctx context.Context, companyID string, expense *domain.Expense) (*domain.Workflow, error) {
	args := m.Called(ctx, companyID, expense)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workflow), args.Error(1)
}

func (m *MockApprovalSvc) ResolveApprovers(ctx context.Context, companyID string, selector *domain.ApproverSelector, expense *domain.Expense) ([]string, error) {
	args := m.Called(ctx, companyID, selector, expense)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockApprovalSvc) BuildChain(ctx context.Context, workflow *domain.Workflow, expense *domain.Expense) (*domain.ApprovalRecord, error) {
	args := m.Called(ctx, workflow, expense)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRecord), args.Error(1)
}

func (m *MockApprovalSvc) RecordDecision(ctx context.Context, companyID, expenseID, approverID string, req dto.ProcessExpenseRequest) (*domain.Expense, *domain.ApprovalRecord, error) {
	args := m.Called(ctx, companyID, expenseID, approverID, req)
	var expense *domain.Expense
	if args.Get(0) != nil {
		expense = args.Get(0).(*domain.Expense)
	}
	var record *domain.ApprovalRecord
	if args.Get(1) != nil {
		record = args.Get(1).(*domain.ApprovalRecord)
	}
	return expense, record, args.Error(2)
}

func (m *MockApprovalSvc) TestWorkflow(ctx context.Context, companyID, workflowID string, req dto.TestWorkflowRequest, requestingUserID string) (*dto.TestWorkflowResponse, error) {
	args := m.Called(ctx, companyID, workflowID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TestWorkflowResponse), args.Error(1)
}

// MockRateSnapshot is a mock type for the RateSnapshotSvc interface
type MockRateSnapshot struct {
	mock.Mock
}

func (m *MockRateSnapshot) RateAt(ctx context.Context, companyID, fromCode, toCode string, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID, fromCode, toCode, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockCompanyReader is a mock type for the CompanyReaderSvc interface
type MockCompanyReader struct {
	mock.Mock
}

func (m *MockCompanyReader) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyReader) ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}
