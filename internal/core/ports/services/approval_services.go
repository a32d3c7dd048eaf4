package services

import (
	"context"

	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// WorkflowSelectorSvc picks the workflow governing a given expense.
type WorkflowSelectorSvc interface {
	// SelectWorkflow returns the single applicable workflow for the expense, or
	// nil when the company has no active workflow. Selection is deterministic:
	// highest priority wins, ties broken by most recent creation.
	SelectWorkflow(ctx context.Context, companyID string, expense *domain.Expense) (*domain.Workflow, error)
}

// RosterResolverSvc resolves approver selectors against the company directory.
type RosterResolverSvc interface {
	// ResolveApprovers returns the concrete, ordered approver identities for the
	// selector. Returns apperrors.ErrEmptyRoster when a required-non-empty
	// selector yields no approvers.
	ResolveApprovers(ctx context.Context, companyID string, selector *domain.ApproverSelector, expense *domain.Expense) ([]string, error)
}

// ChainBuilderSvc materializes approval records from workflows.
type ChainBuilderSvc interface {
	// BuildChain deep-copies the workflow's rule tree into an immutable snapshot
	// with frozen per-node rosters. It does not persist anything.
	BuildChain(ctx context.Context, workflow *domain.Workflow, expense *domain.Expense) (*domain.ApprovalRecord, error)
}

// DecisionRecorderSvc applies approver decisions to in-flight expenses.
type DecisionRecorderSvc interface {
	// RecordDecision records the approver's decision and re-evaluates the policy,
	// retrying the full load-upsert-evaluate-persist cycle on version conflicts.
	// Returns the updated expense and approval record.
	RecordDecision(ctx context.Context, companyID, expenseID, approverID string, req dto.ProcessExpenseRequest) (*domain.Expense, *domain.ApprovalRecord, error)
}

// WorkflowTesterSvc runs hypothetical decision sequences without persisting.
type WorkflowTesterSvc interface {
	// TestWorkflow builds an in-memory approval chain for the sample expense and
	// replays the hypothetical decisions through the same evaluator the real
	// path uses, returning the predicted status and a per-step trace.
	TestWorkflow(ctx context.Context, companyID, workflowID string, req dto.TestWorkflowRequest, requestingUserID string) (*dto.TestWorkflowResponse, error)
}

// ApprovalSvcFacade combines all approval-engine service interfaces
type ApprovalSvcFacade interface {
	WorkflowSelectorSvc
	RosterResolverSvc
	ChainBuilderSvc
	DecisionRecorderSvc
	WorkflowTesterSvc
}
