package services

import (
	"context"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves an expense and its approval record (nil when no
	// workflow was applied).
	GetExpenseByID(ctx context.Context, companyID, expenseID, requestingUserID string) (*domain.Expense, *domain.ApprovalRecord, error)

	// ListExpenses retrieves a paginated list of expenses in a company.
	ListExpenses(ctx context.Context, companyID, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)
}

// ExpenseWriterSvc defines write operations for expense data
type ExpenseWriterSvc interface {
	// SubmitExpense converts the amount to the company base currency using the
	// rate snapshot, selects the governing workflow, and either builds the
	// approval chain (pending -> processing) or auto-approves when no active
	// workflow matches.
	SubmitExpense(ctx context.Context, companyID string, req dto.CreateExpenseRequest, submitterUserID string) (*domain.Expense, *domain.ApprovalRecord, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
