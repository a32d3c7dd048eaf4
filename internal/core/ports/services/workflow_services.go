package services

import (
	"context"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// WorkflowReaderSvc defines read operations for workflow data
type WorkflowReaderSvc interface {
	// GetWorkflowByID retrieves a specific workflow by its ID.
	GetWorkflowByID(ctx context.Context, companyID, workflowID, requestingUserID string) (*domain.Workflow, error)

	// ListWorkflows retrieves all workflows for a company.
	ListWorkflows(ctx context.Context, companyID, requestingUserID string) ([]domain.Workflow, error)
}

// WorkflowWriterSvc defines write operations for workflow data
type WorkflowWriterSvc interface {
	// CreateWorkflow validates the rule tree and persists a new workflow.
	CreateWorkflow(ctx context.Context, companyID string, req dto.CreateWorkflowRequest, creatorUserID string) (*domain.Workflow, error)

	// UpdateWorkflow edits an existing workflow under optimistic concurrency.
	UpdateWorkflow(ctx context.Context, companyID, workflowID string, req dto.UpdateWorkflowRequest, requestingUserID string) (*domain.Workflow, error)

	// ToggleWorkflowStatus flips the active flag. Only future workflow selections
	// are affected, never in-flight approval records.
	ToggleWorkflowStatus(ctx context.Context, companyID, workflowID, requestingUserID string) (*domain.Workflow, error)
}

// WorkflowSvcFacade combines all workflow-related service interfaces
type WorkflowSvcFacade interface {
	WorkflowReaderSvc
	WorkflowWriterSvc
}
