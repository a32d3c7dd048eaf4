package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	companyRepo := newPgxCompanyRepository(dbPool)
	workflowRepo := newPgxWorkflowRepository(dbPool)
	expenseRepo := newPgxExpenseRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:         userRepo,
		CompanyRepo:      companyRepo,
		WorkflowRepo:     workflowRepo,
		ExpenseRepo:      expenseRepo,
		ExchangeRateRepo: exchangeRateRepo,
	}
}
