package dto

import (
	"time"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
)

// --- Company DTOs ---

// CreateCompanyRequest defines data for creating a new company.
type CreateCompanyRequest struct {
	Name                string `json:"name" binding:"required"`
	Country             string `json:"country"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode" binding:"required,iso4217"`
}

// CompanyResponse defines data returned for a company.
type CompanyResponse struct {
	CompanyID           string    `json:"companyID"`
	Name                string    `json:"name"`
	Country             string    `json:"country"`
	DefaultCurrencyCode string    `json:"defaultCurrencyCode"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	CreatedBy           string    `json:"createdBy"` // UserID
}

// ToCompanyResponse converts domain.Company to DTO.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:           c.CompanyID,
		Name:                c.Name,
		Country:             c.Country,
		DefaultCurrencyCode: c.DefaultCurrencyCode,
		IsActive:            c.IsActive,
		CreatedAt:           c.CreatedAt,
		CreatedBy:           c.CreatedBy,
	}
}

// ListCompaniesResponse wraps a list of companies.
type ListCompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
}

// ToListCompaniesResponse converts a slice of domain.Company to DTO.
func ToListCompaniesResponse(cs []domain.Company) ListCompaniesResponse {
	list := make([]CompanyResponse, len(cs))
	for i, c := range cs {
		list[i] = ToCompanyResponse(&c)
	}
	return ListCompaniesResponse{Companies: list}
}

// --- Company Membership DTOs ---

// AddUserToCompanyRequest defines data for adding a user to a company.
type AddUserToCompanyRequest struct {
	UserID    string                 `json:"userID" binding:"required"`
	Role      domain.UserCompanyRole `json:"role" binding:"required,oneof=ADMIN MANAGER EMPLOYEE"`
	ManagerID *string                `json:"managerID,omitempty"`
}

// UserCompanyResponse defines data returned about a user's membership.
type UserCompanyResponse struct {
	UserID    string                 `json:"userID"`
	CompanyID string                 `json:"companyID"`
	Role      domain.UserCompanyRole `json:"role"`
	ManagerID *string                `json:"managerID,omitempty"`
	JoinedAt  time.Time              `json:"joinedAt"`
}

// ToUserCompanyResponse converts domain.UserCompany to DTO.
func ToUserCompanyResponse(m *domain.UserCompany) UserCompanyResponse {
	return UserCompanyResponse{
		UserID:    m.UserID,
		CompanyID: m.CompanyID,
		Role:      m.Role,
		ManagerID: m.ManagerID,
		JoinedAt:  m.JoinedAt,
	}
}
