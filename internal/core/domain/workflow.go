package domain

import (
	"fmt"

	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
)

// WorkflowType discriminates the rule union of a workflow.
type WorkflowType string

const (
	WorkflowPercentage       WorkflowType = "PERCENTAGE"
	WorkflowSpecificApprover WorkflowType = "SPECIFIC_APPROVER"
	WorkflowHybrid           WorkflowType = "HYBRID"
)

// SelectorKind discriminates how an approver roster is derived.
type SelectorKind string

const (
	SelectorUsers        SelectorKind = "USERS"         // explicit list of user IDs
	SelectorRole         SelectorKind = "ROLE"          // every company member holding a role
	SelectorManagerChain SelectorKind = "MANAGER_CHAIN" // the requester's manager chain, walked upwards
)

// ApproverSelector declares how to derive the concrete approver identities for a
// rule. Resolution happens once per expense at chain-build time; the result is
// frozen into the approval record.
type ApproverSelector struct {
	Kind     SelectorKind    `json:"kind"`
	UserIDs  []string        `json:"userIDs,omitempty"`  // SelectorUsers
	Role     UserCompanyRole `json:"role,omitempty"`     // SelectorRole
	MaxDepth int             `json:"maxDepth,omitempty"` // SelectorManagerChain; 0 means walk to the top
}

// Validate checks that the selector is structurally sound.
func (s *ApproverSelector) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: approver selector is required", apperrors.ErrValidation)
	}
	switch s.Kind {
	case SelectorUsers:
		if len(s.UserIDs) == 0 {
			return fmt.Errorf("%w: user selector requires at least one user ID", apperrors.ErrValidation)
		}
	case SelectorRole:
		if s.Role == "" {
			return fmt.Errorf("%w: role selector requires a role", apperrors.ErrValidation)
		}
	case SelectorManagerChain:
		if s.MaxDepth < 0 {
			return fmt.Errorf("%w: manager chain depth cannot be negative", apperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown selector kind '%s'", apperrors.ErrValidation, s.Kind)
	}
	return nil
}

// Clone returns a deep copy of the selector.
func (s *ApproverSelector) Clone() *ApproverSelector {
	if s == nil {
		return nil
	}
	cp := *s
	if s.UserIDs != nil {
		cp.UserIDs = make([]string, len(s.UserIDs))
		copy(cp.UserIDs, s.UserIDs)
	}
	return &cp
}

// Rule is the tagged union describing a workflow's approval policy. Exactly the
// fields matching Type are populated:
//   - WorkflowPercentage: RequiredPercent and EligibleSelector
//   - WorkflowSpecificApprover: ApproverSelector (must resolve to one identity)
//   - WorkflowHybrid: Primary and Fallback (each percentage or specific, never hybrid)
type Rule struct {
	Type             WorkflowType      `json:"type"`
	RequiredPercent  int               `json:"requiredPercent,omitempty"`
	EligibleSelector *ApproverSelector `json:"eligibleSelector,omitempty"`
	ApproverSelector *ApproverSelector `json:"approverSelector,omitempty"`
	Primary          *Rule             `json:"primary,omitempty"`
	Fallback         *Rule             `json:"fallback,omitempty"`
}

// Validate checks the rule tree. Nested rules of a hybrid may not themselves be
// hybrid, so the tree is at most two levels deep.
func (r *Rule) Validate() error {
	return r.validate(false)
}

func (r *Rule) validate(nested bool) error {
	if r == nil {
		return fmt.Errorf("%w: rule is required", apperrors.ErrValidation)
	}
	switch r.Type {
	case WorkflowPercentage:
		if r.RequiredPercent < 1 || r.RequiredPercent > 100 {
			return fmt.Errorf("%w: required percent must be between 1 and 100, got %d", apperrors.ErrValidation, r.RequiredPercent)
		}
		if err := r.EligibleSelector.Validate(); err != nil {
			return err
		}
	case WorkflowSpecificApprover:
		if err := r.ApproverSelector.Validate(); err != nil {
			return err
		}
		if r.ApproverSelector.Kind == SelectorUsers && len(r.ApproverSelector.UserIDs) != 1 {
			return fmt.Errorf("%w: specific approver selector must name exactly one user", apperrors.ErrValidation)
		}
	case WorkflowHybrid:
		if nested {
			return fmt.Errorf("%w: hybrid rules cannot be nested", apperrors.ErrValidation)
		}
		if err := r.Primary.validate(true); err != nil {
			return fmt.Errorf("primary rule: %w", err)
		}
		if err := r.Fallback.validate(true); err != nil {
			return fmt.Errorf("fallback rule: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown workflow type '%s'", apperrors.ErrValidation, r.Type)
	}
	return nil
}

// Clone returns a deep copy of the rule tree, breaking any aliasing with the
// live workflow entity.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	return &Rule{
		Type:             r.Type,
		RequiredPercent:  r.RequiredPercent,
		EligibleSelector: r.EligibleSelector.Clone(),
		ApproverSelector: r.ApproverSelector.Clone(),
		Primary:          r.Primary.Clone(),
		Fallback:         r.Fallback.Clone(),
	}
}

// Workflow is a named, prioritized approval policy scoped to a company.
// Long-lived infrastructure, mutated only through admin edits and toggling.
type Workflow struct {
	WorkflowID string       `json:"workflowID"` // Primary Key (UUID)
	CompanyID  string       `json:"companyID"`  // FK -> companies.company_id
	Name       string       `json:"name"`
	Priority   int          `json:"priority"` // Higher wins at selection time
	IsActive   bool         `json:"isActive"`
	Rule       Rule         `json:"rule"`
	Version    int64        `json:"version"` // Optimistic concurrency counter for admin edits
	AuditFields
}
