package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
)

// --- Workflow DTOs ---

// CreateWorkflowRequest defines data for creating a new approval workflow.
// The rule tree is validated by the service (domain.Rule.Validate), not by
// binding tags, because the union shape depends on the type discriminator.
type CreateWorkflowRequest struct {
	Name     string      `json:"name" binding:"required"`
	Priority int         `json:"priority"`
	Rule     domain.Rule `json:"rule" binding:"required"`
}

// UpdateWorkflowRequest defines data for editing an existing workflow.
// Version carries the optimistic-concurrency counter loaded by the client.
type UpdateWorkflowRequest struct {
	Name     string      `json:"name" binding:"required"`
	Priority int         `json:"priority"`
	Rule     domain.Rule `json:"rule" binding:"required"`
	Version  int64       `json:"version" binding:"required"`
}

// WorkflowResponse defines data returned for a workflow.
type WorkflowResponse struct {
	WorkflowID string      `json:"workflowID"`
	CompanyID  string      `json:"companyID"`
	Name       string      `json:"name"`
	Priority   int         `json:"priority"`
	IsActive   bool        `json:"isActive"`
	Rule       domain.Rule `json:"rule"`
	Version    int64       `json:"version"`
	CreatedAt  time.Time   `json:"createdAt"`
	CreatedBy  string      `json:"createdBy"`
}

// ToWorkflowResponse converts domain.Workflow to DTO.
func ToWorkflowResponse(w *domain.Workflow) WorkflowResponse {
	return WorkflowResponse{
		WorkflowID: w.WorkflowID,
		CompanyID:  w.CompanyID,
		Name:       w.Name,
		Priority:   w.Priority,
		IsActive:   w.IsActive,
		Rule:       w.Rule,
		Version:    w.Version,
		CreatedAt:  w.CreatedAt,
		CreatedBy:  w.CreatedBy,
	}
}

// ListWorkflowsResponse wraps a list of workflows.
type ListWorkflowsResponse struct {
	Workflows []WorkflowResponse `json:"workflows"`
}

// ToListWorkflowsResponse converts a slice of domain.Workflow to DTO.
func ToListWorkflowsResponse(ws []domain.Workflow) ListWorkflowsResponse {
	list := make([]WorkflowResponse, len(ws))
	for i, w := range ws {
		list[i] = ToWorkflowResponse(&w)
	}
	return ListWorkflowsResponse{Workflows: list}
}

// --- Workflow test harness DTOs ---

// SampleExpense describes the synthetic expense a workflow is tested against.
type SampleExpense struct {
	SubmittedBy  string          `json:"submittedBy" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,iso4217"`
}

// HypotheticalDecision is one step of a simulated decision sequence.
type HypotheticalDecision struct {
	ApproverID string                `json:"approverID" binding:"required"`
	Action     domain.DecisionAction `json:"action" binding:"required,oneof=APPROVE REJECT"`
	Comment    string                `json:"comment"`
}

// TestWorkflowRequest defines the input of the workflow test harness.
type TestWorkflowRequest struct {
	SampleExpense SampleExpense          `json:"sampleExpense" binding:"required"`
	Decisions     []HypotheticalDecision `json:"decisions" binding:"dive"`
}

// TestWorkflowStep is the trace entry for one simulated decision.
type TestWorkflowStep struct {
	Step       int                   `json:"step"`
	ApproverID string                `json:"approverID"`
	Action     domain.DecisionAction `json:"action"`
	Accepted   bool                  `json:"accepted"` // false when the decision was rejected (not eligible / already resolved)
	Reason     string                `json:"reason,omitempty"`
	Status     domain.ApprovalStatus `json:"status"` // verdict after this step
}

// TestWorkflowResponse defines the output of the workflow test harness.
type TestWorkflowResponse struct {
	PredictedStatus   domain.ApprovalStatus `json:"predictedStatus"`
	EligibleApprovers []string              `json:"eligibleApprovers"`
	Steps             []TestWorkflowStep    `json:"steps"`
}
