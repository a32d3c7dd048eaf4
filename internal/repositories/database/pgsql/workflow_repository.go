package pgsql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
)

type PgxWorkflowRepository struct {
	BaseRepository
}

// newPgxWorkflowRepository creates a new repository for workflow data.
func newPgxWorkflowRepository(pool *pgxpool.Pool) portsrepo.WorkflowRepositoryFacade {
	return &PgxWorkflowRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxWorkflowRepository implements portsrepo.WorkflowRepositoryFacade
var _ portsrepo.WorkflowRepositoryFacade = (*PgxWorkflowRepository)(nil)

var FULL_WORKFLOW_SELECT_QUERY = `
SELECT
	w.workflow_id, w.company_id, w.name, w.priority, w.is_active, w.rule, w.version,
	w.created_at, w.created_by, w.last_updated_at, w.last_updated_by
FROM workflows w
`

// getWorkflows runs the full workflow select with the given filter. The rule
// column is JSONB and is decoded explicitly.
func (r *PgxWorkflowRepository) getWorkflows(ctx context.Context, filterQuery string, args ...any) ([]domain.Workflow, error) {
	query := FULL_WORKFLOW_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query workflows", err)
	}
	defer rows.Close()

	var workflows []domain.Workflow
	for rows.Next() {
		var w domain.Workflow
		var ruleJSON []byte
		if err := rows.Scan(
			&w.WorkflowID,
			&w.CompanyID,
			&w.Name,
			&w.Priority,
			&w.IsActive,
			&ruleJSON,
			&w.Version,
			&w.CreatedAt,
			&w.CreatedBy,
			&w.LastUpdatedAt,
			&w.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan workflow row", err)
		}
		if err := json.Unmarshal(ruleJSON, &w.Rule); err != nil {
			return nil, apperrors.NewAppError(500, "failed to decode workflow rule "+w.WorkflowID, err)
		}
		workflows = append(workflows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate workflow rows", err)
	}
	return workflows, nil
}

func (r *PgxWorkflowRepository) FindWorkflowByID(ctx context.Context, companyID string, workflowID string) (*domain.Workflow, error) {
	query := `WHERE w.company_id = $1 AND w.workflow_id = $2`
	workflows, err := r.getWorkflows(ctx, query, companyID, workflowID)
	if err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &workflows[0], nil
}

func (r *PgxWorkflowRepository) ListWorkflowsByCompany(ctx context.Context, companyID string, activeOnly bool) ([]domain.Workflow, error) {
	query := `WHERE w.company_id = $1`
	if activeOnly {
		query += ` AND w.is_active = true`
	}
	// Priority then recency: the ordering workflow selection relies on.
	query += ` ORDER BY w.priority DESC, w.created_at DESC, w.workflow_id;`
	return r.getWorkflows(ctx, query, companyID)
}

func (r *PgxWorkflowRepository) SaveWorkflow(ctx context.Context, workflow domain.Workflow) error {
	ruleJSON, err := json.Marshal(workflow.Rule)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode workflow rule", err)
	}

	query := `
		INSERT INTO workflows (
			workflow_id, company_id, name, priority, is_active, rule, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = r.Pool.Exec(ctx, query,
		workflow.WorkflowID,
		workflow.CompanyID,
		workflow.Name,
		workflow.Priority,
		workflow.IsActive,
		ruleJSON,
		1,
		workflow.CreatedAt,
		workflow.CreatedBy,
		workflow.LastUpdatedAt,
		workflow.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("workflow ID " + workflow.WorkflowID + " already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationError("company does not exist")
			}
		}
		return apperrors.NewAppError(500, "failed to save workflow "+workflow.WorkflowID, err)
	}
	return nil
}

func (r *PgxWorkflowRepository) UpdateWorkflow(ctx context.Context, workflow domain.Workflow) error {
	ruleJSON, err := json.Marshal(workflow.Rule)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode workflow rule", err)
	}

	query := `
		UPDATE workflows
		SET name = $1, priority = $2, rule = $3,
			last_updated_at = $4, last_updated_by = $5, version = version + 1
		WHERE company_id = $6 AND workflow_id = $7 AND version = $8;
	`
	result, err := r.Pool.Exec(ctx, query,
		workflow.Name,
		workflow.Priority,
		ruleJSON,
		workflow.LastUpdatedAt,
		workflow.LastUpdatedBy,
		workflow.CompanyID,
		workflow.WorkflowID,
		workflow.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update workflow "+workflow.WorkflowID, err)
	}
	if result.RowsAffected() == 0 {
		// Either the workflow is gone or another admin edited it first.
		if _, findErr := r.FindWorkflowByID(ctx, workflow.CompanyID, workflow.WorkflowID); findErr != nil {
			return findErr
		}
		return apperrors.ErrVersionConflict
	}
	return nil
}

func (r *PgxWorkflowRepository) ToggleWorkflowStatus(ctx context.Context, companyID string, workflowID string, isActive bool, updatedBy string) error {
	query := `
		UPDATE workflows
		SET is_active = $1, last_updated_at = NOW(), last_updated_by = $2, version = version + 1
		WHERE company_id = $3 AND workflow_id = $4;
	`
	result, err := r.Pool.Exec(ctx, query, isActive, updatedBy, companyID, workflowID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to toggle workflow "+workflowID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
