package domain

import "time"

// Company represents an isolated tenant containing users, workflows and expenses.
type Company struct {
	CompanyID           string `json:"companyID"` // Primary Key (UUID)
	Name                string `json:"name"`
	Country             string `json:"country"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode"` // Base currency for converted amounts (e.g., "USD")
	IsActive            bool   `json:"isActive"`
	AuditFields
}

// UserCompanyRole defines the possible roles a user can have within a company.
type UserCompanyRole string

const (
	RoleAdmin    UserCompanyRole = "ADMIN"
	RoleManager  UserCompanyRole = "MANAGER"
	RoleEmployee UserCompanyRole = "EMPLOYEE"
	RoleRemoved  UserCompanyRole = "REMOVED" // For users who have been removed from the company
)

// UserCompany represents the membership of a User in a Company.
// ManagerID links to the user's direct manager in the same company and drives
// the manager-chain approver selector.
type UserCompany struct {
	UserID    string          `json:"userID"`    // FK -> users.user_id
	UserName  string          `json:"userName"`  // Name of the user
	CompanyID string          `json:"companyID"` // FK -> companies.company_id
	Role      UserCompanyRole `json:"role"`
	ManagerID *string         `json:"managerID"` // FK -> users.user_id, nil for top of chain
	JoinedAt  time.Time       `json:"joinedAt"`
}
