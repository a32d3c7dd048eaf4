package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
	"github.com/xpenseflow/xpenseflow_backend/internal/utils/pagination"
)

type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for expense and approval
// record data. The two live in one repository because they share a lifecycle
// and several writes must span both tables atomically.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryWithTx {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryWithTx
var _ portsrepo.ExpenseRepositoryWithTx = (*PgxExpenseRepository)(nil)

var FULL_EXPENSE_SELECT_QUERY = `
SELECT
	e.expense_id, e.company_id, e.submitted_by, e.description, e.category,
	e.amount, e.currency_code, e.converted_amount, e.exchange_rate,
	e.expense_date, e.status, e.receipt_url,
	e.created_at, e.created_by, e.last_updated_at, e.last_updated_by
FROM expenses e
`

func (r *PgxExpenseRepository) getExpenses(ctx context.Context, filterQuery string, args ...any) ([]domain.Expense, error) {
	query := FULL_EXPENSE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expenses", err)
	}
	defer rows.Close()
	expenses, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Expense])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Expense{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect expense rows", err)
	}
	return expenses, nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, companyID string, expenseID string) (*domain.Expense, error) {
	query := `WHERE e.company_id = $1 AND e.expense_id = $2`
	expenses, err := r.getExpenses(ctx, query, companyID, expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &expenses[0], nil
}

func (r *PgxExpenseRepository) ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	filter := `WHERE e.company_id = $1`
	args := []any{companyID}

	if nextToken != nil && *nextToken != "" {
		createdAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		filter += ` AND (e.created_at, e.expense_id) < ($2, $3)`
		args = append(args, createdAt, lastID)
	}

	// Fetch one extra row to detect whether another page exists.
	filter += fmt.Sprintf(` ORDER BY e.created_at DESC, e.expense_id DESC LIMIT %d;`, limit+1)

	expenses, err := r.getExpenses(ctx, filter, args...)
	if err != nil {
		return nil, nil, err
	}

	var token *string
	if len(expenses) > limit {
		expenses = expenses[:limit]
		last := expenses[limit-1]
		t := pagination.EncodeToken(last.CreatedAt, last.ExpenseID)
		token = &t
	}
	return expenses, token, nil
}

// SaveExpense inserts the expense row and, when a record is given, the approval
// record row inside the same transaction. The caller sets the expense status
// before calling; the two rows either both appear or neither does.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense, record *domain.ApprovalRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	insertExpense := `
		INSERT INTO expenses (
			expense_id, company_id, submitted_by, description, category,
			amount, currency_code, converted_amount, exchange_rate,
			expense_date, status, receipt_url,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, insertExpense,
		expense.ExpenseID,
		expense.CompanyID,
		expense.SubmittedBy,
		expense.Description,
		expense.Category,
		expense.Amount,
		expense.CurrencyCode,
		expense.ConvertedAmount,
		expense.ExchangeRate,
		expense.ExpenseDate,
		expense.Status,
		expense.ReceiptURL,
		expense.CreatedAt,
		expense.CreatedBy,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("expense ID " + expense.ExpenseID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save expense "+expense.ExpenseID, err)
	}

	if record != nil {
		if err := r.insertApprovalRecord(ctx, tx, *record); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxExpenseRepository) insertApprovalRecord(ctx context.Context, tx pgx.Tx, record domain.ApprovalRecord) error {
	snapshotJSON, err := json.Marshal(record.RuleSnapshot)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode rule snapshot", err)
	}
	approversJSON, err := json.Marshal(record.EligibleApprovers)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode eligible approvers", err)
	}
	decisionsJSON, err := json.Marshal(record.Decisions)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode decisions", err)
	}

	query := `
		INSERT INTO approval_records (
			approval_record_id, expense_id, workflow_id, rule_snapshot,
			eligible_approvers, decisions, result_status, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, query,
		record.ApprovalRecordID,
		record.ExpenseID,
		record.WorkflowID,
		snapshotJSON,
		approversJSON,
		decisionsJSON,
		record.ResultStatus,
		record.Version,
		record.CreatedAt,
		record.CreatedBy,
		record.LastUpdatedAt,
		record.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on expense_id
			return apperrors.NewConflictError("approval record for expense " + record.ExpenseID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save approval record "+record.ApprovalRecordID, err)
	}
	return nil
}

func (r *PgxExpenseRepository) FindApprovalRecordByExpenseID(ctx context.Context, expenseID string) (*domain.ApprovalRecord, error) {
	query := `
		SELECT
			ar.approval_record_id, ar.expense_id, ar.workflow_id, ar.rule_snapshot,
			ar.eligible_approvers, ar.decisions, ar.result_status, ar.version,
			ar.created_at, ar.created_by, ar.last_updated_at, ar.last_updated_by
		FROM approval_records ar
		WHERE ar.expense_id = $1;
	`
	var record domain.ApprovalRecord
	var snapshotJSON, approversJSON, decisionsJSON []byte
	err := r.Pool.QueryRow(ctx, query, expenseID).Scan(
		&record.ApprovalRecordID,
		&record.ExpenseID,
		&record.WorkflowID,
		&snapshotJSON,
		&approversJSON,
		&decisionsJSON,
		&record.ResultStatus,
		&record.Version,
		&record.CreatedAt,
		&record.CreatedBy,
		&record.LastUpdatedAt,
		&record.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find approval record for expense "+expenseID, err)
	}

	if err := json.Unmarshal(snapshotJSON, &record.RuleSnapshot); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode rule snapshot for expense "+expenseID, err)
	}
	if err := json.Unmarshal(approversJSON, &record.EligibleApprovers); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode eligible approvers for expense "+expenseID, err)
	}
	if err := json.Unmarshal(decisionsJSON, &record.Decisions); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode decisions for expense "+expenseID, err)
	}
	return &record, nil
}

// UpdateApprovalRecord writes the record's decisions and verdict, conditioned
// on the version loaded by the caller, and moves the owning expense to its new
// status in the same transaction. Zero rows affected means a concurrent writer
// won the race; the caller reloads and retries.
func (r *PgxExpenseRepository) UpdateApprovalRecord(ctx context.Context, record domain.ApprovalRecord, expenseStatus domain.ExpenseStatus) error {
	decisionsJSON, err := json.Marshal(record.Decisions)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode decisions", err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	updateRecord := `
		UPDATE approval_records
		SET decisions = $1, result_status = $2,
			last_updated_at = $3, last_updated_by = $4, version = version + 1
		WHERE approval_record_id = $5 AND version = $6;
	`
	result, err := tx.Exec(ctx, updateRecord,
		decisionsJSON,
		record.ResultStatus,
		record.LastUpdatedAt,
		record.LastUpdatedBy,
		record.ApprovalRecordID,
		record.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update approval record "+record.ApprovalRecordID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrVersionConflict
	}

	if expenseStatus.IsTerminal() {
		updateExpense := `
			UPDATE expenses
			SET status = $1, last_updated_at = $2, last_updated_by = $3
			WHERE expense_id = $4;
		`
		if _, err := tx.Exec(ctx, updateExpense,
			expenseStatus,
			record.LastUpdatedAt,
			record.LastUpdatedBy,
			record.ExpenseID,
		); err != nil {
			return apperrors.NewAppError(500, "failed to update expense status "+record.ExpenseID, err)
		}
	}

	return r.Commit(ctx, tx)
}
