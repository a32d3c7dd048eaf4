package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// expenseService handles expense submission and retrieval. Submission drives
// the whole approval pipeline: rate snapshot, workflow selection, chain build.
type expenseService struct {
	BaseService
	expenseRepo portsrepo.ExpenseRepositoryWithTx
	companySvc  portssvc.CompanyReaderSvc
	rateSvc     portssvc.RateSnapshotSvc
	approvalSvc portssvc.ApprovalSvcFacade
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryWithTx, companySvc portssvc.CompanyReaderSvc, rateSvc portssvc.RateSnapshotSvc, approvalSvc portssvc.ApprovalSvcFacade, authorizer portssvc.CompanyAuthorizerSvc) portssvc.ExpenseSvcFacade {
	return &expenseService{
		BaseService: BaseService{CompanyAuthorizer: authorizer},
		expenseRepo: expenseRepo,
		companySvc:  companySvc,
		rateSvc:     rateSvc,
		approvalSvc: approvalSvc,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// SubmitExpense converts the amount into the company base currency using the
// submission-time rate snapshot, selects the governing workflow and builds the
// approval chain. With no active workflow the expense auto-approves: absence
// of governance must not block money movement.
func (s *expenseService) SubmitExpense(ctx context.Context, companyID string, req dto.CreateExpenseRequest, submitterUserID string) (*domain.Expense, *domain.ApprovalRecord, error) {
	if err := s.AuthorizeUser(ctx, submitterUserID, companyID, domain.RoleEmployee); err != nil {
		return nil, nil, err
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}

	company, err := s.companySvc.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	rate, err := s.rateSvc.RateAt(ctx, companyID, req.CurrencyCode, company.DefaultCurrencyCode, now)
	if err != nil {
		return nil, nil, err
	}

	expenseDate := req.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = now
	}

	expense := domain.Expense{
		ExpenseID:       uuid.NewString(),
		CompanyID:       companyID,
		SubmittedBy:     submitterUserID,
		Description:     req.Description,
		Category:        req.Category,
		Amount:          req.Amount,
		CurrencyCode:    req.CurrencyCode,
		ConvertedAmount: req.Amount.Mul(rate),
		ExchangeRate:    rate,
		ExpenseDate:     expenseDate,
		Status:          domain.ExpensePending,
		ReceiptURL:      req.ReceiptURL,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     submitterUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: submitterUserID,
		},
	}

	workflow, err := s.approvalSvc.SelectWorkflow(ctx, companyID, &expense)
	if err != nil {
		return nil, nil, err
	}

	if workflow == nil {
		// No active workflow governs this company: auto-approve.
		expense.Status = domain.ExpenseApproved
		if err := s.expenseRepo.SaveExpense(ctx, expense, nil); err != nil {
			s.LogError(ctx, err, "Failed to save auto-approved expense", slog.String("expense_id", expense.ExpenseID))
			return nil, nil, fmt.Errorf("failed to save expense: %w", err)
		}
		s.LogInfo(ctx, "Expense auto-approved, no active workflow",
			slog.String("expense_id", expense.ExpenseID),
			slog.String("company_id", companyID))
		return &expense, nil, nil
	}

	record, err := s.approvalSvc.BuildChain(ctx, workflow, &expense)
	if err != nil {
		s.LogError(ctx, err, "Failed to build approval chain",
			slog.String("expense_id", expense.ExpenseID),
			slog.String("workflow_id", workflow.WorkflowID))
		return nil, nil, err
	}

	// Record creation and the pending -> processing transition commit together.
	expense.Status = domain.ExpenseProcessing
	if err := s.expenseRepo.SaveExpense(ctx, expense, record); err != nil {
		s.LogError(ctx, err, "Failed to save expense with approval record", slog.String("expense_id", expense.ExpenseID))
		return nil, nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.LogInfo(ctx, "Expense submitted for approval",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("workflow_id", workflow.WorkflowID),
		slog.Int("eligible_approvers", len(record.EligibleApprovers)))
	return &expense, record, nil
}

// GetExpenseByID retrieves an expense and its approval record.
func (s *expenseService) GetExpenseByID(ctx context.Context, companyID, expenseID, requestingUserID string) (*domain.Expense, *domain.ApprovalRecord, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleEmployee); err != nil {
		return nil, nil, err
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, companyID, expenseID)
	if err != nil {
		return nil, nil, err
	}

	record, err := s.expenseRepo.FindApprovalRecordByExpenseID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return expense, nil, nil
		}
		return nil, nil, err
	}
	return expense, record, nil
}

// ListExpenses retrieves a paginated list of expenses in a company.
func (s *expenseService) ListExpenses(ctx context.Context, companyID, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleEmployee); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	expenses, nextToken, err := s.expenseRepo.ListExpensesByCompany(ctx, companyID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	responses := make([]dto.ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = dto.ToExpenseResponse(&e, nil)
	}
	return &dto.ListExpensesResponse{Expenses: responses, NextToken: nextToken}, nil
}
