package domain

import "time"

// ApprovalStatus is the verdict of a rule evaluation.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// IsTerminal returns true for verdicts that end the approval irreversibly.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// DecisionAction is what an approver did.
type DecisionAction string

const (
	ActionApprove DecisionAction = "APPROVE"
	ActionReject  DecisionAction = "REJECT"
)

// Decision is a single approver's verdict on an expense. At most one decision
// per approver is kept; a later decision by the same approver replaces the
// earlier one.
type Decision struct {
	ApproverID string         `json:"approverID"`
	Action     DecisionAction `json:"action"`
	Comment    string         `json:"comment,omitempty"`
	DecidedAt  time.Time      `json:"decidedAt"`
}

// RuleSnapshot is the immutable, per-expense instantiation of a workflow rule
// tree. Each node carries the approver roster resolved for it at chain-build
// time; the snapshot never references the live Workflow entity, so workflow
// edits after selection cannot affect in-flight expenses.
type RuleSnapshot struct {
	Type            WorkflowType  `json:"type"`
	RequiredPercent int           `json:"requiredPercent,omitempty"`
	Approvers       []string      `json:"approvers,omitempty"` // frozen roster for this node
	Primary         *RuleSnapshot `json:"primary,omitempty"`
	Fallback        *RuleSnapshot `json:"fallback,omitempty"`
}

// Evaluate computes the verdict of the snapshot against the full current
// decision set, keyed by approver ID. It is a pure function: the same snapshot
// and decisions always produce the same verdict.
func (s *RuleSnapshot) Evaluate(decisions map[string]DecisionAction) ApprovalStatus {
	if s == nil {
		return ApprovalPending
	}
	switch s.Type {
	case WorkflowPercentage:
		return s.evaluatePercentage(decisions)
	case WorkflowSpecificApprover:
		return s.evaluateSpecificApprover(decisions)
	case WorkflowHybrid:
		// OR-composition: primary has precedence, but either sub-rule can
		// independently produce the terminal verdict.
		if verdict := s.Primary.Evaluate(decisions); verdict.IsTerminal() {
			return verdict
		}
		if verdict := s.Fallback.Evaluate(decisions); verdict.IsTerminal() {
			return verdict
		}
		return ApprovalPending
	default:
		return ApprovalPending
	}
}

// evaluatePercentage approves once approvals reach the quorum and rejects as
// soon as the quorum is mathematically unreachable, so an expense never waits
// on approvers who can no longer change the outcome. Integer arithmetic avoids
// float rounding at the threshold boundary.
func (s *RuleSnapshot) evaluatePercentage(decisions map[string]DecisionAction) ApprovalStatus {
	eligible := len(s.Approvers)
	if eligible == 0 {
		return ApprovalPending
	}

	approvals, rejections := 0, 0
	for _, approverID := range s.Approvers {
		switch decisions[approverID] {
		case ActionApprove:
			approvals++
		case ActionReject:
			rejections++
		}
	}

	if approvals*100 >= s.RequiredPercent*eligible {
		return ApprovalApproved
	}
	// Even if every undecided approver approved, the quorum cannot be met.
	if (eligible-rejections)*100 < s.RequiredPercent*eligible {
		return ApprovalRejected
	}
	return ApprovalPending
}

// evaluateSpecificApprover treats only the designated approver's decision as
// authoritative; decisions recorded by coincidentally-eligible approvers do not
// move the verdict.
func (s *RuleSnapshot) evaluateSpecificApprover(decisions map[string]DecisionAction) ApprovalStatus {
	if len(s.Approvers) == 0 {
		return ApprovalPending
	}
	switch decisions[s.Approvers[0]] {
	case ActionApprove:
		return ApprovalApproved
	case ActionReject:
		return ApprovalRejected
	default:
		return ApprovalPending
	}
}

// Clone returns a deep copy of the snapshot tree.
func (s *RuleSnapshot) Clone() *RuleSnapshot {
	if s == nil {
		return nil
	}
	cp := &RuleSnapshot{
		Type:            s.Type,
		RequiredPercent: s.RequiredPercent,
		Primary:         s.Primary.Clone(),
		Fallback:        s.Fallback.Clone(),
	}
	if s.Approvers != nil {
		cp.Approvers = make([]string, len(s.Approvers))
		copy(cp.Approvers, s.Approvers)
	}
	return cp
}

// ApprovalRecord is the frozen, per-expense instantiation of a workflow's
// policy plus its resolved approver roster and accumulated decisions. Created
// exactly once per expense and owned by it; immutable except for Decisions and
// the derived ResultStatus.
type ApprovalRecord struct {
	ApprovalRecordID  string         `json:"approvalRecordID"` // Primary Key (UUID)
	ExpenseID         string         `json:"expenseID"`        // FK -> expenses.expense_id
	WorkflowID        string         `json:"workflowID"`       // Workflow the snapshot was taken from
	RuleSnapshot      RuleSnapshot   `json:"ruleSnapshot"`
	EligibleApprovers []string       `json:"eligibleApprovers"` // Ordered union of all node rosters
	Decisions         []Decision     `json:"decisions"`
	ResultStatus      ApprovalStatus `json:"resultStatus"`
	Version           int64          `json:"version"` // Optimistic concurrency counter
	AuditFields
}

// IsEligible reports whether the user is part of the frozen roster.
func (r *ApprovalRecord) IsEligible(userID string) bool {
	for _, id := range r.EligibleApprovers {
		if id == userID {
			return true
		}
	}
	return false
}

// UpsertDecision records a decision, replacing any earlier decision by the same
// approver (last-writer rule).
func (r *ApprovalRecord) UpsertDecision(d Decision) {
	for i, existing := range r.Decisions {
		if existing.ApproverID == d.ApproverID {
			r.Decisions[i] = d
			return
		}
	}
	r.Decisions = append(r.Decisions, d)
}

// DecisionByApprover returns the decision cast by the given approver, if any.
func (r *ApprovalRecord) DecisionByApprover(approverID string) (Decision, bool) {
	for _, d := range r.Decisions {
		if d.ApproverID == approverID {
			return d, true
		}
	}
	return Decision{}, false
}

// Evaluate recomputes the verdict from the full current decision set.
func (r *ApprovalRecord) Evaluate() ApprovalStatus {
	decisionsByApprover := make(map[string]DecisionAction, len(r.Decisions))
	for _, d := range r.Decisions {
		decisionsByApprover[d.ApproverID] = d.Action
	}
	return r.RuleSnapshot.Evaluate(decisionsByApprover)
}
