package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
)

// --- Expense DTOs ---

// CreateExpenseRequest defines data for submitting a new expense.
type CreateExpenseRequest struct {
	Description  string          `json:"description" binding:"required"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,iso4217"`
	ExpenseDate  time.Time       `json:"expenseDate"`
	ReceiptURL   *string         `json:"receiptURL,omitempty"`
}

// ProcessExpenseRequest defines an approver's decision on an expense.
type ProcessExpenseRequest struct {
	Action  domain.DecisionAction `json:"action" binding:"required,oneof=APPROVE REJECT"`
	Comment string                `json:"comment"`
}

// DecisionResponse defines data returned for a single recorded decision.
type DecisionResponse struct {
	ApproverID string                `json:"approverID"`
	Action     domain.DecisionAction `json:"action"`
	Comment    string                `json:"comment,omitempty"`
	DecidedAt  time.Time             `json:"decidedAt"`
}

// ApprovalRecordResponse defines data returned for an expense's approval record.
type ApprovalRecordResponse struct {
	WorkflowID        string                `json:"workflowID"`
	EligibleApprovers []string              `json:"eligibleApprovers"`
	Decisions         []DecisionResponse    `json:"decisions"`
	ResultStatus      domain.ApprovalStatus `json:"resultStatus"`
}

// ToApprovalRecordResponse converts domain.ApprovalRecord to DTO.
func ToApprovalRecordResponse(r *domain.ApprovalRecord) *ApprovalRecordResponse {
	if r == nil {
		return nil
	}
	decisions := make([]DecisionResponse, len(r.Decisions))
	for i, d := range r.Decisions {
		decisions[i] = DecisionResponse{
			ApproverID: d.ApproverID,
			Action:     d.Action,
			Comment:    d.Comment,
			DecidedAt:  d.DecidedAt,
		}
	}
	return &ApprovalRecordResponse{
		WorkflowID:        r.WorkflowID,
		EligibleApprovers: r.EligibleApprovers,
		Decisions:         decisions,
		ResultStatus:      r.ResultStatus,
	}
}

// ExpenseResponse defines data returned for an expense.
type ExpenseResponse struct {
	ExpenseID       string                  `json:"expenseID"`
	CompanyID       string                  `json:"companyID"`
	SubmittedBy     string                  `json:"submittedBy"`
	Description     string                  `json:"description"`
	Category        string                  `json:"category,omitempty"`
	Amount          decimal.Decimal         `json:"amount"`
	CurrencyCode    string                  `json:"currencyCode"`
	ConvertedAmount decimal.Decimal         `json:"convertedAmount"`
	ExchangeRate    decimal.Decimal         `json:"exchangeRate"`
	ExpenseDate     time.Time               `json:"expenseDate"`
	Status          domain.ExpenseStatus    `json:"status"`
	ReceiptURL      *string                 `json:"receiptURL,omitempty"`
	ApprovalRecord  *ApprovalRecordResponse `json:"approvalRecord,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// ToExpenseResponse converts domain.Expense (and its optional approval record) to DTO.
func ToExpenseResponse(e *domain.Expense, record *domain.ApprovalRecord) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:       e.ExpenseID,
		CompanyID:       e.CompanyID,
		SubmittedBy:     e.SubmittedBy,
		Description:     e.Description,
		Category:        e.Category,
		Amount:          e.Amount,
		CurrencyCode:    e.CurrencyCode,
		ConvertedAmount: e.ConvertedAmount,
		ExchangeRate:    e.ExchangeRate,
		ExpenseDate:     e.ExpenseDate,
		Status:          e.Status,
		ReceiptURL:      e.ReceiptURL,
		ApprovalRecord:  ToApprovalRecordResponse(record),
		CreatedAt:       e.CreatedAt,
	}
}

// ListExpensesParams defines pagination parameters for expense listing.
type ListExpensesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListExpensesResponse wraps a paginated list of expenses.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}
