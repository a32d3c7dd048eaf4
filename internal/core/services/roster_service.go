package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
)

// rosterService resolves approver selectors against the company directory.
// Resolution is deterministic for a given directory state; the result is
// frozen into the approval record at chain-build time, so later directory
// changes never mutate an in-flight approval.
type rosterService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
	userRepo    portsrepo.UserRepositoryFacade
}

// NewRosterService creates a new roster resolver.
func NewRosterService(companyRepo portsrepo.CompanyRepositoryFacade, userRepo portsrepo.UserRepositoryFacade) portssvc.RosterResolverSvc {
	return &rosterService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
	}
}

var _ portssvc.RosterResolverSvc = (*rosterService)(nil)

// ResolveApprovers returns the concrete, ordered approver identities for the
// selector. Order is deterministic: explicit lists keep their declared order,
// role rosters are ordered by join time then user ID, manager chains follow
// the chain bottom-up.
func (s *rosterService) ResolveApprovers(ctx context.Context, companyID string, selector *domain.ApproverSelector, expense *domain.Expense) ([]string, error) {
	if selector == nil {
		return nil, fmt.Errorf("%w: approver selector is required", apperrors.ErrValidation)
	}

	switch selector.Kind {
	case domain.SelectorUsers:
		return s.resolveExplicit(ctx, companyID, selector.UserIDs)
	case domain.SelectorRole:
		return s.resolveRole(ctx, companyID, selector.Role)
	case domain.SelectorManagerChain:
		if expense == nil {
			return nil, fmt.Errorf("%w: manager chain selector requires an expense", apperrors.ErrValidation)
		}
		return s.resolveManagerChain(ctx, companyID, expense.SubmittedBy, selector.MaxDepth)
	default:
		return nil, fmt.Errorf("%w: unknown selector kind '%s'", apperrors.ErrValidation, selector.Kind)
	}
}

// resolveExplicit validates that every listed user is an active member of the
// company, preserving the declared order.
func (s *rosterService) resolveExplicit(ctx context.Context, companyID string, userIDs []string) ([]string, error) {
	approvers := make([]string, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		membership, err := s.companyRepo.FindUserCompany(ctx, userID, companyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// A listed user who left the company is skipped, not fatal;
				// the roster just shrinks.
				continue
			}
			return nil, fmt.Errorf("failed to resolve approver '%s': %w", userID, err)
		}
		if membership.Role == domain.RoleRemoved {
			continue
		}
		approvers = append(approvers, userID)
	}
	if len(approvers) == 0 {
		return nil, apperrors.ErrEmptyRoster
	}
	return approvers, nil
}

// resolveRole returns every active company member holding the role.
func (s *rosterService) resolveRole(ctx context.Context, companyID string, role domain.UserCompanyRole) ([]string, error) {
	members, err := s.companyRepo.ListUsersByRole(ctx, companyID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list members with role '%s': %w", role, err)
	}
	if len(members) == 0 {
		return nil, apperrors.ErrEmptyRoster
	}
	approvers := make([]string, len(members))
	for i, m := range members {
		approvers[i] = m.UserID
	}
	return approvers, nil
}

// resolveManagerChain walks the submitter's manager links upwards. maxDepth of
// zero walks to the top of the chain. A cycle in the directory terminates the
// walk rather than looping.
func (s *rosterService) resolveManagerChain(ctx context.Context, companyID, submitterID string, maxDepth int) ([]string, error) {
	var approvers []string
	visited := map[string]bool{submitterID: true}

	currentID := submitterID
	for depth := 0; maxDepth == 0 || depth < maxDepth; depth++ {
		membership, err := s.companyRepo.FindUserCompany(ctx, currentID, companyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("failed to walk manager chain at '%s': %w", currentID, err)
		}
		if membership.ManagerID == nil {
			break
		}
		managerID := *membership.ManagerID
		if visited[managerID] {
			break
		}
		visited[managerID] = true
		approvers = append(approvers, managerID)
		currentID = managerID
	}

	if len(approvers) == 0 {
		return nil, apperrors.ErrEmptyRoster
	}
	return approvers, nil
}
