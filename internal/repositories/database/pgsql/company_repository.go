package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
)

type PgxCompanyRepository struct {
	BaseRepository
}

// newPgxCompanyRepository creates a new repository for company data.
func newPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCompanyRepository implements portsrepo.CompanyRepositoryFacade
var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

var FULL_COMPANY_SELECT_QUERY = `
SELECT
	c.company_id, c.name, c.country, c.default_currency_code, c.is_active,
	c.created_at, c.created_by, c.last_updated_at, c.last_updated_by
FROM companies c
`

func (r *PgxCompanyRepository) getCompanies(ctx context.Context, filterQuery string, args ...any) ([]domain.Company, error) {
	query := FULL_COMPANY_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query companies", err)
	}
	defer rows.Close()
	companies, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Company])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Company{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect company rows", err)
	}
	return companies, nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `WHERE c.company_id = $1`
	companies, err := r.getCompanies(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &companies[0], nil
}

func (r *PgxCompanyRepository) ListCompaniesByUser(ctx context.Context, userID string) ([]domain.Company, error) {
	query := `
	JOIN user_companies uc ON c.company_id = uc.company_id
	WHERE uc.user_id = $1 AND uc.role <> $2 AND c.is_active = true
	ORDER BY c.name;`
	return r.getCompanies(ctx, query, userID, domain.RoleRemoved)
}

func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	query := `
		INSERT INTO companies (
			company_id, name, country, default_currency_code, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.Country,
		company.DefaultCurrencyCode,
		company.IsActive,
		company.CreatedAt,
		company.CreatedBy,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("company ID " + company.CompanyID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save company "+company.CompanyID, err)
	}
	return nil
}

func (r *PgxCompanyRepository) AddUserToCompany(ctx context.Context, membership domain.UserCompany) error {
	query := `
		INSERT INTO user_companies (user_id, company_id, role, manager_id, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, company_id) DO UPDATE SET role = EXCLUDED.role, manager_id = EXCLUDED.manager_id;
	` // Upsert: add the member or update their role and manager link
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.CompanyID,
		membership.Role,
		membership.ManagerID,
		membership.JoinedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewValidationError("user or company does not exist")
		}
		return apperrors.NewAppError(500, "failed to add user "+membership.UserID+" to company "+membership.CompanyID, err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindUserCompany(ctx context.Context, userID string, companyID string) (*domain.UserCompany, error) {
	query := `
		SELECT uc.user_id, u.name AS user_name, uc.company_id, uc.role, uc.manager_id, uc.joined_at
		FROM user_companies uc
		JOIN users u ON u.user_id = uc.user_id
		WHERE uc.user_id = $1 AND uc.company_id = $2;
	`
	var uc domain.UserCompany
	err := r.Pool.QueryRow(ctx, query, userID, companyID).Scan(
		&uc.UserID,
		&uc.UserName,
		&uc.CompanyID,
		&uc.Role,
		&uc.ManagerID,
		&uc.JoinedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user is not a member of this company")
		}
		return nil, apperrors.NewAppError(500, "failed to find membership of "+userID+" in "+companyID, err)
	}
	return &uc, nil
}

func (r *PgxCompanyRepository) ListUsersByRole(ctx context.Context, companyID string, role domain.UserCompanyRole) ([]domain.UserCompany, error) {
	query := `
		SELECT uc.user_id, u.name AS user_name, uc.company_id, uc.role, uc.manager_id, uc.joined_at
		FROM user_companies uc
		JOIN users u ON u.user_id = uc.user_id
		WHERE uc.company_id = $1 AND uc.role = $2 AND u.is_deleted = false
		ORDER BY uc.joined_at, uc.user_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, role)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query company members", err)
	}
	defer rows.Close()
	members, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.UserCompany])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.UserCompany{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect membership rows", err)
	}
	return members, nil
}
