package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mederror/internal/domain"
	"mederror/internal/service"
)

// RunHandler exposes recorded pipeline runs.
type RunHandler struct {
	runService service.RunService
	log        *zap.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runService service.RunService, log *zap.Logger) *RunHandler {
	return &RunHandler{runService: runService, log: log}
}

var validStages = map[domain.RunStage]bool{
	"":                      true,
	domain.RunStageGenerate: true,
	domain.RunStageParse:    true,
	domain.RunStageEvaluate: true,
	domain.RunStagePipeline: true,
}

// List handles GET /api/v1/runs
// @Summary List recorded runs
// @Description List pipeline runs newest first, optionally filtered by stage.
// @Tags runs
// @Produce json
// @Param stage query string false "generate, parse, evaluate or pipeline"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} APIResponse{data=[]domain.EvalRun} "Runs"
// @Failure 400 {object} APIResponse "Invalid stage"
// @Failure 503 {object} APIResponse "Run persistence disabled"
// @Router /runs [get]
func (h *RunHandler) List(c *gin.Context) {
	stage := domain.RunStage(c.Query("stage"))
	if !validStages[stage] {
		RespondError(c, http.StatusBadRequest, "INVALID_STAGE", "invalid stage; allowed: generate, parse, evaluate, pipeline")
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, total, err := h.runService.List(c.Request.Context(), stage, offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/runs/:id
// @Summary Get a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.EvalRun} "Run"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Run not found"
// @Router /runs/{id} [get]
func (h *RunHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return
	}

	run, err := h.runService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, run)
}
