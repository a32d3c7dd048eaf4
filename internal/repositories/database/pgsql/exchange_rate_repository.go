package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xpenseflow/xpenseflow_backend/internal/apperrors"
	"github.com/xpenseflow/xpenseflow_backend/internal/core/domain"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
)

type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new repository for exchange rate data.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxExchangeRateRepository implements portsrepo.ExchangeRateRepositoryFacade
var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

var FULL_EXCHANGE_RATE_SELECT_QUERY = `
SELECT
	er.exchange_rate_id, er.company_id, er.from_currency_code, er.to_currency_code,
	er.rate, er.date_effective,
	er.created_at, er.created_by, er.last_updated_at, er.last_updated_by
FROM exchange_rates er
`

func (r *PgxExchangeRateRepository) getExchangeRates(ctx context.Context, filterQuery string, args ...any) ([]domain.ExchangeRate, error) {
	query := FULL_EXCHANGE_RATE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query exchange rates", err)
	}
	defer rows.Close()
	rates, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.ExchangeRate])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.ExchangeRate{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect exchange rate rows", err)
	}
	return rates, nil
}

// FindRateAt returns the latest rate for the pair whose effective date is not
// after the given instant.
func (r *PgxExchangeRateRepository) FindRateAt(ctx context.Context, companyID string, fromCode string, toCode string, at time.Time) (*domain.ExchangeRate, error) {
	query := `
	WHERE er.company_id = $1 AND er.from_currency_code = $2 AND er.to_currency_code = $3
		AND er.date_effective <= $4
	ORDER BY er.date_effective DESC
	LIMIT 1;`
	rates, err := r.getExchangeRates(ctx, query, companyID, fromCode, toCode, at)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, apperrors.NewNotFoundError("no exchange rate from " + fromCode + " to " + toCode)
	}
	return &rates[0], nil
}

func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context, companyID string) ([]domain.ExchangeRate, error) {
	query := `
	WHERE er.company_id = $1
	ORDER BY er.from_currency_code, er.to_currency_code, er.date_effective DESC;`
	return r.getExchangeRates(ctx, query, companyID)
}

func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (
			exchange_rate_id, company_id, from_currency_code, to_currency_code,
			rate, date_effective,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		rate.ExchangeRateID,
		rate.CompanyID,
		rate.FromCurrencyCode,
		rate.ToCurrencyCode,
		rate.Rate,
		rate.DateEffective,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on pair + effective date
				return apperrors.NewConflictError("exchange rate for this pair and effective date already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationError("company does not exist")
			}
		}
		return apperrors.NewAppError(500, "failed to save exchange rate "+rate.ExchangeRateID, err)
	}
	return nil
}
