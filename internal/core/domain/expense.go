package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus indicates the lifecycle state of an expense.
// APPROVED and REJECTED are terminal.
type ExpenseStatus string

const (
	ExpensePending    ExpenseStatus = "PENDING"    // submitted, no workflow applied yet
	ExpenseProcessing ExpenseStatus = "PROCESSING" // approval chain built, awaiting decisions
	ExpenseApproved   ExpenseStatus = "APPROVED"
	ExpenseRejected   ExpenseStatus = "REJECTED"
)

// IsTerminal returns true when no further status transitions are allowed.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseApproved || s == ExpenseRejected
}

// Expense represents a single expense submitted by an employee.
// ConvertedAmount and ExchangeRate are snapshotted at submission time and never
// recomputed, so later rate changes cannot alter an in-flight approval.
type Expense struct {
	ExpenseID       string          `json:"expenseID"` // Primary Key (UUID)
	CompanyID       string          `json:"companyID"` // FK -> companies.company_id
	SubmittedBy     string          `json:"submittedBy"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"` // Amount in the company base currency
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`    // Rate used for the conversion snapshot
	ExpenseDate     time.Time       `json:"expenseDate"`
	Status          ExpenseStatus   `json:"status"`
	ReceiptURL      *string         `json:"receiptURL,omitempty"`
	AuditFields
}
