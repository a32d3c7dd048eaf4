package repositories

import (
	"context"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
)

// WorkflowReader defines read operations for workflow data
type WorkflowReader interface {
	// FindWorkflowByID retrieves a specific workflow by its ID.
	FindWorkflowByID(ctx context.Context, companyID string, workflowID string) (*domain.Workflow, error)

	// ListWorkflowsByCompany retrieves all workflows for a company, ordered by
	// priority descending then creation time descending.
	ListWorkflowsByCompany(ctx context.Context, companyID string, activeOnly bool) ([]domain.Workflow, error)
}

// WorkflowWriter defines write operations for workflow data
type WorkflowWriter interface {
	// SaveWorkflow persists a new workflow.
	SaveWorkflow(ctx context.Context, workflow domain.Workflow) error

	// UpdateWorkflow updates an existing workflow. The write is conditioned on
	// the version being unchanged since load; returns ErrVersionConflict otherwise.
	UpdateWorkflow(ctx context.Context, workflow domain.Workflow) error

	// ToggleWorkflowStatus flips the active flag, affecting only future workflow
	// selections, never in-flight approval records.
	ToggleWorkflowStatus(ctx context.Context, companyID string, workflowID string, isActive bool, updatedBy string) error
}

// WorkflowRepositoryFacade combines all workflow-related repository interfaces
type WorkflowRepositoryFacade interface {
	WorkflowReader
	WorkflowWriter
}
