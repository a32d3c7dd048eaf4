package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
)

// maxDecisionRetries bounds the optimistic-concurrency retry loop for a single
// decision request. Conflicts are rare (two approvers racing on one expense),
// so a small bound suffices; exhaustion surfaces as a transient error.
const maxDecisionRetries = 3

// approvalService is the approval workflow resolution engine: it selects the
// governing workflow for an expense, freezes the policy and roster into an
// approval record, and evaluates approver decisions until a terminal verdict.
type approvalService struct {
	BaseService
	workflowRepo portsrepo.WorkflowRepositoryFacade
	expenseRepo  portsrepo.ExpenseRepositoryWithTx
	roster       portssvc.RosterResolverSvc
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(workflowRepo portsrepo.WorkflowRepositoryFacade, expenseRepo portsrepo.ExpenseRepositoryWithTx, roster portssvc.RosterResolverSvc, authorizer portssvc.CompanyAuthorizerSvc) portssvc.ApprovalSvcFacade {
	return &approvalService{
		BaseService:  BaseService{CompanyAuthorizer: authorizer},
		workflowRepo: workflowRepo,
		expenseRepo:  expenseRepo,
		roster:       roster,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// SelectWorkflow returns the single applicable workflow for the expense, or
// nil when the company has no active workflow. Highest priority wins; among
// equal priorities the most recently created workflow is chosen, giving a
// deterministic total order.
func (s *approvalService) SelectWorkflow(ctx context.Context, companyID string, expense *domain.Expense) (*domain.Workflow, error) {
	workflows, err := s.workflowRepo.ListWorkflowsByCompany(ctx, companyID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list active workflows: %w", err)
	}
	if len(workflows) == 0 {
		return nil, nil
	}

	selected := workflows[0]
	for _, w := range workflows[1:] {
		if w.Priority > selected.Priority ||
			(w.Priority == selected.Priority && w.CreatedAt.After(selected.CreatedAt)) {
			selected = w
		}
	}
	return &selected, nil
}

// ResolveApprovers delegates to the roster resolver.
func (s *approvalService) ResolveApprovers(ctx context.Context, companyID string, selector *domain.ApproverSelector, expense *domain.Expense) ([]string, error) {
	return s.roster.ResolveApprovers(ctx, companyID, selector, expense)
}

// snapshotRule deep-copies a rule node into its frozen form, resolving its
// selector against the current directory. The snapshot holds plain identities
// only; no reference to the live workflow or selector survives.
func (s *approvalService) snapshotRule(ctx context.Context, companyID string, rule *domain.Rule, expense *domain.Expense) (*domain.RuleSnapshot, error) {
	if rule == nil {
		return nil, nil
	}
	switch rule.Type {
	case domain.WorkflowPercentage:
		approvers, err := s.roster.ResolveApprovers(ctx, companyID, rule.EligibleSelector, expense)
		if err != nil {
			return nil, err
		}
		return &domain.RuleSnapshot{
			Type:            domain.WorkflowPercentage,
			RequiredPercent: rule.RequiredPercent,
			Approvers:       approvers,
		}, nil
	case domain.WorkflowSpecificApprover:
		approvers, err := s.roster.ResolveApprovers(ctx, companyID, rule.ApproverSelector, expense)
		if err != nil {
			return nil, err
		}
		if len(approvers) > 1 {
			return nil, apperrors.ErrAmbiguousApprover
		}
		return &domain.RuleSnapshot{
			Type:      domain.WorkflowSpecificApprover,
			Approvers: approvers,
		}, nil
	case domain.WorkflowHybrid:
		primary, err := s.snapshotRule(ctx, companyID, rule.Primary, expense)
		if err != nil {
			return nil, fmt.Errorf("primary rule: %w", err)
		}
		fallback, err := s.snapshotRule(ctx, companyID, rule.Fallback, expense)
		if err != nil {
			return nil, fmt.Errorf("fallback rule: %w", err)
		}
		return &domain.RuleSnapshot{
			Type:     domain.WorkflowHybrid,
			Primary:  primary,
			Fallback: fallback,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown workflow type '%s'", apperrors.ErrValidation, rule.Type)
	}
}

// collectApprovers flattens a snapshot tree into the ordered union of its node
// rosters, deduplicated in encounter order.
func collectApprovers(snapshot *domain.RuleSnapshot, seen map[string]bool, out []string) []string {
	if snapshot == nil {
		return out
	}
	for _, id := range snapshot.Approvers {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	out = collectApprovers(snapshot.Primary, seen, out)
	return collectApprovers(snapshot.Fallback, seen, out)
}

// BuildChain materializes the immutable approval record for the expense. It
// does not persist anything; the expense service saves expense and record in
// one database transaction.
func (s *approvalService) BuildChain(ctx context.Context, workflow *domain.Workflow, expense *domain.Expense) (*domain.ApprovalRecord, error) {
	snapshot, err := s.snapshotRule(ctx, expense.CompanyID, &workflow.Rule, expense)
	if err != nil {
		return nil, err
	}

	eligible := collectApprovers(snapshot, make(map[string]bool), nil)
	now := time.Now()
	record := &domain.ApprovalRecord{
		ApprovalRecordID:  uuid.NewString(),
		ExpenseID:         expense.ExpenseID,
		WorkflowID:        workflow.WorkflowID,
		RuleSnapshot:      *snapshot,
		EligibleApprovers: eligible,
		Decisions:         []domain.Decision{},
		ResultStatus:      domain.ApprovalPending,
		Version:           1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     expense.SubmittedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: expense.SubmittedBy,
		},
	}
	return record, nil
}

// RecordDecision applies one approver decision under optimistic concurrency.
// The full load-upsert-evaluate-persist cycle restarts on a version conflict,
// so the final verdict is always computed from a decision set reflecting every
// accepted write.
func (s *approvalService) RecordDecision(ctx context.Context, companyID, expenseID, approverID string, req dto.ProcessExpenseRequest) (*domain.Expense, *domain.ApprovalRecord, error) {
	var lastErr error
	for attempt := 0; attempt < maxDecisionRetries; attempt++ {
		expense, record, err := s.applyDecision(ctx, companyID, expenseID, approverID, req)
		if err == nil {
			return expense, record, nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) {
			return nil, nil, err
		}
		lastErr = err
		s.LogDebug(ctx, "Decision write lost optimistic-concurrency race, retrying",
			slog.String("expense_id", expenseID),
			slog.Int("attempt", attempt+1))
	}
	return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to record decision after retries", lastErr)
}

func (s *approvalService) applyDecision(ctx context.Context, companyID, expenseID, approverID string, req dto.ProcessExpenseRequest) (*domain.Expense, *domain.ApprovalRecord, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, companyID, expenseID)
	if err != nil {
		return nil, nil, err
	}
	if expense.Status.IsTerminal() {
		return nil, nil, apperrors.ErrAlreadyResolved
	}

	record, err := s.expenseRepo.FindApprovalRecordByExpenseID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// An expense without a record was auto-approved or never processed;
			// either way there is nothing to decide on.
			return nil, nil, apperrors.ErrAlreadyResolved
		}
		return nil, nil, err
	}
	if record.ResultStatus.IsTerminal() {
		return nil, nil, apperrors.ErrAlreadyResolved
	}
	if !record.IsEligible(approverID) {
		return nil, nil, apperrors.ErrNotEligibleApprover
	}

	record.UpsertDecision(domain.Decision{
		ApproverID: approverID,
		Action:     req.Action,
		Comment:    req.Comment,
		DecidedAt:  time.Now(),
	})

	verdict := record.Evaluate()
	record.ResultStatus = verdict
	record.LastUpdatedAt = time.Now()
	record.LastUpdatedBy = approverID

	expenseStatus := domain.ExpenseProcessing
	switch verdict {
	case domain.ApprovalApproved:
		expenseStatus = domain.ExpenseApproved
	case domain.ApprovalRejected:
		expenseStatus = domain.ExpenseRejected
	}

	if err := s.expenseRepo.UpdateApprovalRecord(ctx, *record, expenseStatus); err != nil {
		return nil, nil, err
	}
	record.Version++
	expense.Status = expenseStatus

	if verdict.IsTerminal() {
		s.LogInfo(ctx, "Expense approval resolved",
			slog.String("expense_id", expenseID),
			slog.String("deciding_approver", approverID),
			slog.String("verdict", string(verdict)))
	}
	return expense, record, nil
}

// TestWorkflow runs the chain builder and decision evaluator against a
// synthetic expense entirely in memory. It shares the snapshot and evaluation
// code with the real path, so its verdicts match what a real submission with
// the same inputs would produce.
func (s *approvalService) TestWorkflow(ctx context.Context, companyID, workflowID string, req dto.TestWorkflowRequest, requestingUserID string) (*dto.TestWorkflowResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	workflow, err := s.workflowRepo.FindWorkflowByID(ctx, companyID, workflowID)
	if err != nil {
		return nil, err
	}

	sample := &domain.Expense{
		ExpenseID:    uuid.NewString(),
		CompanyID:    companyID,
		SubmittedBy:  req.SampleExpense.SubmittedBy,
		Amount:       req.SampleExpense.Amount,
		CurrencyCode: req.SampleExpense.CurrencyCode,
		Status:       domain.ExpensePending,
	}

	record, err := s.BuildChain(ctx, workflow, sample)
	if err != nil {
		return nil, err
	}

	steps := make([]dto.TestWorkflowStep, 0, len(req.Decisions))
	for i, d := range req.Decisions {
		step := dto.TestWorkflowStep{
			Step:       i + 1,
			ApproverID: d.ApproverID,
			Action:     d.Action,
		}
		switch {
		case record.ResultStatus.IsTerminal():
			step.Accepted = false
			step.Reason = "approval already resolved"
		case !record.IsEligible(d.ApproverID):
			step.Accepted = false
			step.Reason = "not an eligible approver"
		default:
			record.UpsertDecision(domain.Decision{
				ApproverID: d.ApproverID,
				Action:     d.Action,
				Comment:    d.Comment,
				DecidedAt:  time.Now(),
			})
			record.ResultStatus = record.Evaluate()
			step.Accepted = true
		}
		step.Status = record.ResultStatus
		steps = append(steps, step)
	}

	return &dto.TestWorkflowResponse{
		PredictedStatus:   record.ResultStatus,
		EligibleApprovers: record.EligibleApprovers,
		Steps:             steps,
	}, nil
}
