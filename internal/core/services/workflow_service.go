package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// workflowService provides workflow authoring operations. Workflows are
// long-lived company infrastructure; the approval engine only ever reads them
// through snapshots, so edits here never touch in-flight approval records.
type workflowService struct {
	BaseService
	workflowRepo portsrepo.WorkflowRepositoryFacade
	roster       portssvc.RosterResolverSvc
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(workflowRepo portsrepo.WorkflowRepositoryFacade, roster portssvc.RosterResolverSvc, authorizer portssvc.CompanyAuthorizerSvc) portssvc.WorkflowSvcFacade {
	return &workflowService{
		BaseService:  BaseService{CompanyAuthorizer: authorizer},
		workflowRepo: workflowRepo,
		roster:       roster,
	}
}

var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// validateSelectors resolves every selector in the rule tree against the
// current directory so configuration errors surface at save time rather than
// at the first chain build. The resolution result is discarded; rosters are
// only ever frozen per expense.
func (s *workflowService) validateSelectors(ctx context.Context, companyID string, rule *domain.Rule) error {
	if rule == nil {
		return nil
	}
	switch rule.Type {
	case domain.WorkflowPercentage:
		// Manager-chain rosters depend on the submitting employee, so they can
		// only be checked per expense.
		if rule.EligibleSelector.Kind != domain.SelectorManagerChain {
			if _, err := s.roster.ResolveApprovers(ctx, companyID, rule.EligibleSelector, nil); err != nil {
				return err
			}
		}
	case domain.WorkflowSpecificApprover:
		if rule.ApproverSelector.Kind != domain.SelectorManagerChain {
			approvers, err := s.roster.ResolveApprovers(ctx, companyID, rule.ApproverSelector, nil)
			if err != nil {
				return err
			}
			if len(approvers) > 1 {
				return apperrors.ErrAmbiguousApprover
			}
		}
	case domain.WorkflowHybrid:
		if err := s.validateSelectors(ctx, companyID, rule.Primary); err != nil {
			return fmt.Errorf("primary rule: %w", err)
		}
		if err := s.validateSelectors(ctx, companyID, rule.Fallback); err != nil {
			return fmt.Errorf("fallback rule: %w", err)
		}
	}
	return nil
}

// CreateWorkflow validates the rule tree and persists a new workflow.
func (s *workflowService) CreateWorkflow(ctx context.Context, companyID string, req dto.CreateWorkflowRequest, creatorUserID string) (*domain.Workflow, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	if err := req.Rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateSelectors(ctx, companyID, &req.Rule); err != nil {
		return nil, err
	}

	now := time.Now()
	workflow := domain.Workflow{
		WorkflowID: uuid.NewString(),
		CompanyID:  companyID,
		Name:       req.Name,
		Priority:   req.Priority,
		IsActive:   true,
		Rule:       *req.Rule.Clone(),
		Version:    1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.workflowRepo.SaveWorkflow(ctx, workflow); err != nil {
		s.LogError(ctx, err, "Failed to save workflow", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	s.LogInfo(ctx, "Workflow created",
		slog.String("workflow_id", workflow.WorkflowID),
		slog.String("type", string(workflow.Rule.Type)))
	return &workflow, nil
}

// GetWorkflowByID retrieves a specific workflow by its ID.
func (s *workflowService) GetWorkflowByID(ctx context.Context, companyID, workflowID, requestingUserID string) (*domain.Workflow, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleEmployee); err != nil {
		return nil, err
	}
	return s.workflowRepo.FindWorkflowByID(ctx, companyID, workflowID)
}

// ListWorkflows retrieves all workflows for a company.
func (s *workflowService) ListWorkflows(ctx context.Context, companyID, requestingUserID string) ([]domain.Workflow, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleEmployee); err != nil {
		return nil, err
	}
	return s.workflowRepo.ListWorkflowsByCompany(ctx, companyID, false)
}

// UpdateWorkflow edits an existing workflow under optimistic concurrency.
func (s *workflowService) UpdateWorkflow(ctx context.Context, companyID, workflowID string, req dto.UpdateWorkflowRequest, requestingUserID string) (*domain.Workflow, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	if err := req.Rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateSelectors(ctx, companyID, &req.Rule); err != nil {
		return nil, err
	}

	workflow, err := s.workflowRepo.FindWorkflowByID(ctx, companyID, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.Name = req.Name
	workflow.Priority = req.Priority
	workflow.Rule = *req.Rule.Clone()
	workflow.Version = req.Version
	workflow.LastUpdatedAt = time.Now()
	workflow.LastUpdatedBy = requestingUserID

	if err := s.workflowRepo.UpdateWorkflow(ctx, *workflow); err != nil {
		s.LogError(ctx, err, "Failed to update workflow", slog.String("workflow_id", workflowID))
		return nil, err
	}
	workflow.Version++

	s.LogInfo(ctx, "Workflow updated", slog.String("workflow_id", workflowID))
	return workflow, nil
}

// ToggleWorkflowStatus flips the active flag. In-flight approval records hold
// their own rule snapshots, so toggling only affects future selections.
func (s *workflowService) ToggleWorkflowStatus(ctx context.Context, companyID, workflowID, requestingUserID string) (*domain.Workflow, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	workflow, err := s.workflowRepo.FindWorkflowByID(ctx, companyID, workflowID)
	if err != nil {
		return nil, err
	}

	newStatus := !workflow.IsActive
	if err := s.workflowRepo.ToggleWorkflowStatus(ctx, companyID, workflowID, newStatus, requestingUserID); err != nil {
		s.LogError(ctx, err, "Failed to toggle workflow status", slog.String("workflow_id", workflowID))
		return nil, err
	}

	workflow.IsActive = newStatus
	s.LogInfo(ctx, "Workflow status toggled",
		slog.String("workflow_id", workflowID),
		slog.Bool("is_active", newStatus))
	return workflow, nil
}
