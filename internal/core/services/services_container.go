package services

import (
	portsrepo "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/repositories"
	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Company service first since most other services authorize through it.
	container.Company = NewCompanyService(repos.CompanyRepo, repos.UserRepo)
	authorizer := container.Company.(portssvc.CompanyAuthorizerSvc)

	container.User = NewUserService(repos.UserRepo)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, authorizer)

	roster := NewRosterService(repos.CompanyRepo, repos.UserRepo)
	container.Approval = NewApprovalService(repos.WorkflowRepo, repos.ExpenseRepo, roster, authorizer)
	container.Workflow = NewWorkflowService(repos.WorkflowRepo, roster, authorizer)
	container.Expense = NewExpenseService(repos.ExpenseRepo, container.Company, container.ExchangeRate, container.Approval, authorizer)

	container.TokenService = NewTokenService(cfg)

	return container
}

// Compile-time checks that the implementations satisfy their facades.
var (
	_ portssvc.CompanySvcFacade  = (*companyService)(nil)
	_ portssvc.ApprovalSvcFacade = (*approvalService)(nil)
	_ portssvc.ExpenseSvcFacade  = (*expenseService)(nil)
	_ portssvc.WorkflowSvcFacade = (*workflowService)(nil)
)
