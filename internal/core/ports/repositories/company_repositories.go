package repositories

import (
	"context"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	// FindCompanyByID retrieves a specific company by its ID.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListCompaniesByUser retrieves the companies the user is a member of.
	ListCompaniesByUser(ctx context.Context, userID string) ([]domain.Company, error)
}

// CompanyWriter defines write operations for company data
type CompanyWriter interface {
	// SaveCompany persists a new company.
	SaveCompany(ctx context.Context, company domain.Company) error
}

// CompanyMembershipManager defines operations on company memberships.
type CompanyMembershipManager interface {
	// AddUserToCompany creates a membership for a user in a company.
	AddUserToCompany(ctx context.Context, membership domain.UserCompany) error

	// FindUserCompany retrieves a user's membership in a company.
	FindUserCompany(ctx context.Context, userID string, companyID string) (*domain.UserCompany, error)

	// ListUsersByRole retrieves company members holding the given role, ordered
	// deterministically by join time then user ID.
	ListUsersByRole(ctx context.Context, companyID string, role domain.UserCompanyRole) ([]domain.UserCompany, error)
}

// CompanyRepositoryFacade combines all company-related repository interfaces
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
	CompanyMembershipManager
}
