package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/xpenseflow/xpenseflow_backend/internal/core/ports/services"
	"github.com/xpenseflow/xpenseflow_backend/internal/dto"
	"github.com/xpenseflow/xpenseflow_backend/internal/middleware"
)

// workflowHandler handles HTTP requests related to approval workflows.
type workflowHandler struct {
	workflowService portssvc.WorkflowSvcFacade
	approvalService portssvc.ApprovalSvcFacade
}

func newWorkflowHandler(ws portssvc.WorkflowSvcFacade, as portssvc.ApprovalSvcFacade) *workflowHandler {
	return &workflowHandler{
		workflowService: ws,
		approvalService: as,
	}
}

// registerWorkflowRoutes registers workflow routes under a specific company.
func registerWorkflowRoutes(rg *gin.RouterGroup, workflowService portssvc.WorkflowSvcFacade, approvalService portssvc.ApprovalSvcFacade) {
	h := newWorkflowHandler(workflowService, approvalService)

	workflows := rg.Group("/workflows")
	{
		workflows.POST("", h.createWorkflow)
		workflows.GET("", h.listWorkflows)
		workflows.GET("/:workflow_id", h.getWorkflow)
		workflows.PUT("/:workflow_id", h.updateWorkflow)
		workflows.PATCH("/:workflow_id/toggle", h.toggleWorkflow)
		workflows.POST("/:workflow_id/test", h.testWorkflow)
	}
}

// createWorkflow godoc
// @Summary Create an approval workflow
// @Description Validates the rule tree and persists a new workflow. Admin only.
// @Tags workflows
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param workflow body dto.CreateWorkflowRequest true "Workflow details"
// @Success 201 {object} dto.WorkflowResponse
// @Failure 400 {object} ErrorResponse "Invalid rule tree"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/workflows [post]
func (h *workflowHandler) createWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workflow, err := h.workflowService.CreateWorkflow(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Workflow created",
		slog.String("company_id", companyID),
		slog.String("workflow_id", workflow.WorkflowID))
	c.JSON(http.StatusCreated, dto.ToWorkflowResponse(workflow))
}

// listWorkflows godoc
// @Summary List workflows
// @Description Retrieves all workflows of a company, highest priority first.
// @Tags workflows
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} dto.ListWorkflowsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/workflows [get]
func (h *workflowHandler) listWorkflows(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workflows, err := h.workflowService.ListWorkflows(c.Request.Context(), companyID, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListWorkflowsResponse(workflows))
}

// getWorkflow godoc
// @Summary Get a workflow
// @Description Retrieves a single workflow with its rule tree and version.
// @Tags workflows
// @Produce json
// @Param company_id path string true "Company ID"
// @Param workflow_id path string true "Workflow ID"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id} [get]
func (h *workflowHandler) getWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workflow, err := h.workflowService.GetWorkflowByID(c.Request.Context(), c.Param("company_id"), c.Param("workflow_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// updateWorkflow godoc
// @Summary Update a workflow
// @Description Edits a workflow under optimistic concurrency. The request must
// @Description carry the version the client loaded; a stale version yields 409.
// @Description In-flight approval records keep their frozen snapshot.
// @Tags workflows
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param workflow_id path string true "Workflow ID"
// @Param workflow body dto.UpdateWorkflowRequest true "Workflow details"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Version conflict"
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id} [put]
func (h *workflowHandler) updateWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workflow, err := h.workflowService.UpdateWorkflow(c.Request.Context(), c.Param("company_id"), c.Param("workflow_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// toggleWorkflow godoc
// @Summary Toggle a workflow's active flag
// @Description Activates or deactivates a workflow. Only future workflow
// @Description selections are affected; in-flight approvals keep running.
// @Tags workflows
// @Produce json
// @Param company_id path string true "Company ID"
// @Param workflow_id path string true "Workflow ID"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id}/toggle [patch]
func (h *workflowHandler) toggleWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workflow, err := h.workflowService.ToggleWorkflowStatus(c.Request.Context(), c.Param("company_id"), c.Param("workflow_id"), userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Workflow toggled",
		slog.String("workflow_id", workflow.WorkflowID),
		slog.Bool("is_active", workflow.IsActive))
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// testWorkflow godoc
// @Summary Dry-run a workflow
// @Description Builds an in-memory approval chain for a sample expense and
// @Description replays hypothetical decisions through the production evaluator.
// @Description Nothing is persisted and no approver is notified. Admin only.
// @Tags workflows
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param workflow_id path string true "Workflow ID"
// @Param scenario body dto.TestWorkflowRequest true "Sample expense and decision sequence"
// @Success 200 {object} dto.TestWorkflowResponse
// @Failure 400 {object} ErrorResponse "Roster resolution failed"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/workflows/{workflow_id}/test [post]
func (h *workflowHandler) testWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TestWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.approvalService.TestWorkflow(c.Request.Context(), c.Param("company_id"), c.Param("workflow_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
