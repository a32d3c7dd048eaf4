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
)

// companyService provides company and membership operations.
type companyService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
	userRepo    portsrepo.UserRepositoryFacade
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade, userRepo portsrepo.UserRepositoryFacade) portssvc.CompanySvcFacade {
	return &companyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
	}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// roleRank orders roles for authorization checks. Higher ranks satisfy
// requirements for lower ones.
var roleRank = map[domain.UserCompanyRole]int{
	domain.RoleEmployee: 1,
	domain.RoleManager:  2,
	domain.RoleAdmin:    3,
}

func hasRequiredRole(actual, required domain.UserCompanyRole) bool {
	return roleRank[actual] >= roleRank[required]
}

// CreateCompany persists a new company and assigns the creator as admin.
func (s *companyService) CreateCompany(ctx context.Context, name, country, defaultCurrencyCode, creatorUserID string) (*domain.Company, error) {
	now := time.Now()
	company := domain.Company{
		CompanyID:           uuid.NewString(),
		Name:                name,
		Country:             country,
		DefaultCurrencyCode: defaultCurrencyCode,
		IsActive:            true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		s.LogError(ctx, err, "Failed to save company", slog.String("name", name))
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	membership := domain.UserCompany{
		UserID:    creatorUserID,
		CompanyID: company.CompanyID,
		Role:      domain.RoleAdmin,
		JoinedAt:  now,
	}
	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add creator to company", slog.String("company_id", company.CompanyID))
		return nil, fmt.Errorf("failed to add creator to company: %w", err)
	}

	s.LogInfo(ctx, "Company created", slog.String("company_id", company.CompanyID))
	return &company, nil
}

// GetCompanyByID retrieves a specific company by its ID.
func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	return s.companyRepo.FindCompanyByID(ctx, companyID)
}

// ListUserCompanies retrieves companies the user is a member of.
func (s *companyService) ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	return s.companyRepo.ListCompaniesByUser(ctx, userID)
}

// AddUserToCompany adds a user to a company with a specific role and an
// optional direct manager. Only company admins can add members.
func (s *companyService) AddUserToCompany(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.UserCompanyRole, managerID *string) error {
	if err := s.AuthorizeUserAction(ctx, addingUserID, companyID, domain.RoleAdmin); err != nil {
		s.LogError(ctx, err, "User not authorized to add members to company",
			slog.String("adding_user_id", addingUserID),
			slog.String("company_id", companyID))
		return err
	}

	if _, err := s.userRepo.FindUserByID(ctx, targetUserID); err != nil {
		return fmt.Errorf("target user not found: %w", err)
	}

	if managerID != nil {
		// The manager must already be a member, so the chain stays within the company.
		if _, err := s.companyRepo.FindUserCompany(ctx, *managerID, companyID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: manager '%s' is not a member of this company", apperrors.ErrValidation, *managerID)
			}
			return err
		}
	}

	membership := domain.UserCompany{
		UserID:    targetUserID,
		CompanyID: companyID,
		Role:      role,
		ManagerID: managerID,
		JoinedAt:  time.Now(),
	}

	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add user to company",
			slog.String("target_user_id", targetUserID),
			slog.String("company_id", companyID))
		return err
	}

	s.LogInfo(ctx, "User added to company",
		slog.String("target_user_id", targetUserID),
		slog.String("company_id", companyID),
		slog.String("role", string(role)))
	return nil
}

// GetMembership retrieves a user's membership in a company.
func (s *companyService) GetMembership(ctx context.Context, userID, companyID string) (*domain.UserCompany, error) {
	return s.companyRepo.FindUserCompany(ctx, userID, companyID)
}

// AuthorizeUserAction checks if a user has required permissions for a company.
func (s *companyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.UserCompanyRole) error {
	membership, err := s.companyRepo.FindUserCompany(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of company",
				slog.String("user_id", userID),
				slog.String("company_id", companyID))
			return apperrors.ErrForbidden
		}
		return err
	}

	if membership.Role == domain.RoleRemoved || !hasRequiredRole(membership.Role, requiredRole) {
		return apperrors.ErrForbidden
	}
	return nil
}
