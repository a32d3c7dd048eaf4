package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
	"github.com/xpenseflow/xpenseflow_backend/internal/middleware"
)

// expenseHandler handles HTTP requests related to expenses and approvals.
type expenseHandler struct {
	expenseService  portssvc.ExpenseSvcFacade
	approvalService portssvc.ApprovalSvcFacade
}

func newExpenseHandler(es portssvc.ExpenseSvcFacade, as portssvc.ApprovalSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService:  es,
		approvalService: as,
	}
}

// registerExpenseRoutes registers expense routes under a specific company.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, approvalService portssvc.ApprovalSvcFacade) {
	h := newExpenseHandler(expenseService, approvalService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.submitExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expense_id", h.getExpense)
		expenses.POST("/:expense_id/process", h.processExpense)
	}
}

// submitExpense godoc
// @Summary Submit an expense
// @Description Submits an expense for approval. The amount is converted into
// @Description the company base currency at the submission-time rate and the
// @Description governing workflow is selected; with no active workflow the
// @Description expense is auto-approved.
// @Tags expenses
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/expenses [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	submitterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, record, err := h.expenseService.SubmitExpense(c.Request.Context(), companyID, req, submitterUserID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Expense submitted",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("status", string(expense.Status)))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense, record))
}

// listExpenses godoc
// @Summary List expenses
// @Description Retrieves a paginated list of expenses in the company.
// @Tags expenses
// @Produce json
// @Param company_id path string true "Company ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.expenseService.ListExpenses(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getExpense godoc
// @Summary Get an expense
// @Description Retrieves an expense with its approval record, if one exists.
// @Tags expenses
// @Produce json
// @Param company_id path string true "Company ID"
// @Param expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/expenses/{expense_id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, record, err := h.expenseService.GetExpenseByID(c.Request.Context(), c.Param("company_id"), c.Param("expense_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense, record))
}

// processExpense godoc
// @Summary Record an approval decision
// @Description Records the caller's APPROVE or REJECT decision on an in-flight
// @Description expense and re-evaluates the frozen policy. A repeat decision by
// @Description the same approver replaces the earlier one while the expense is
// @Description still processing.
// @Tags expenses
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param expense_id path string true "Expense ID"
// @Param decision body dto.ProcessExpenseRequest true "Decision"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not an eligible approver"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Expense already resolved"
// @Security BearerAuth
// @Router /companies/{company_id}/expenses/{expense_id}/process [post]
func (h *expenseHandler) processExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	expenseID := c.Param("expense_id")

	var req dto.ProcessExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, record, err := h.approvalService.RecordDecision(c.Request.Context(), companyID, expenseID, approverID, req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Decision recorded",
		slog.String("expense_id", expenseID),
		slog.String("approver_id", approverID),
		slog.String("action", string(req.Action)),
		slog.String("result_status", string(record.ResultStatus)))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense, record))
}
