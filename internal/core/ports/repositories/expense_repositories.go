package repositories

import (
	"context"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves a specific expense by its ID.
	FindExpenseByID(ctx context.Context, companyID string, expenseID string) (*domain.Expense, error)

	// ListExpensesByCompany retrieves a paginated list of expenses for a company
	// using token-based pagination. It returns the expenses, a token for the
	// next page, and an error.
	ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense. When record is non-nil the expense and
	// its approval record are inserted within a single database transaction, so
	// the pending -> processing transition is atomic with record creation.
	SaveExpense(ctx context.Context, expense domain.Expense, record *domain.ApprovalRecord) error
}

// ApprovalRecordReader defines read operations for approval records
type ApprovalRecordReader interface {
	// FindApprovalRecordByExpenseID retrieves the approval record owned by the
	// given expense.
	FindApprovalRecordByExpenseID(ctx context.Context, expenseID string) (*domain.ApprovalRecord, error)
}

// ApprovalRecordWriter defines write operations for approval records
type ApprovalRecordWriter interface {
	// UpdateApprovalRecord persists the record's decisions and result status, and
	// updates the owning expense's status in the same database transaction when
	// the verdict is terminal. The write is conditioned on record.Version being
	// unchanged since load; returns apperrors.ErrVersionConflict when another
	// writer got there first.
	UpdateApprovalRecord(ctx context.Context, record domain.ApprovalRecord, expenseStatus domain.ExpenseStatus) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
	ApprovalRecordReader
	ApprovalRecordWriter
}

// ExpenseRepositoryWithTx extends ExpenseRepositoryFacade with transaction capabilities
type ExpenseRepositoryWithTx interface {
	ExpenseRepositoryFacade
	TransactionManager
}
