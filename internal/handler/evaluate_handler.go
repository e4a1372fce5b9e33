package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mederror/internal/domain"
	"mederror/internal/service"
)

// EvaluateHandler exposes metric computation over HTTP.
type EvaluateHandler struct {
	evalService   service.EvaluationService
	caseSensitive bool
	log           *zap.Logger
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(evalService service.EvaluationService, caseSensitive bool, log *zap.Logger) *EvaluateHandler {
	return &EvaluateHandler{evalService: evalService, caseSensitive: caseSensitive, log: log}
}

// EvaluateRequest is the body of POST /api/v1/evaluate. Either both label
// lists or both URIs must be given.
type EvaluateRequest struct {
	Predictions   []string `json:"predictions" binding:"required_without=ResultURI"`
	Gold          []string `json:"gold" binding:"required_with=Predictions"`
	ResultURI     string   `json:"result_uri" binding:"required_with=GoldURI"`
	GoldURI       string   `json:"gold_uri" binding:"required_with=ResultURI"`
	ResultColumn  string   `json:"result_column"`
	GoldColumn    string   `json:"gold_column"`
	GoldDelimiter string   `json:"gold_delimiter" binding:"omitempty,len=1"`
	CaseSensitive *bool    `json:"case_sensitive"`
}

// Evaluate handles POST /api/v1/evaluate.
// @Summary Score predictions against gold labels
// @Description Compute accuracy and support-weighted precision, recall and F1 from inline label lists or from a result CSV and gold file addressed by URI.
// @Tags evaluate
// @Accept json
// @Produce json
// @Param body body EvaluateRequest true "Labels or file URIs"
// @Success 200 {object} APIResponse{data=domain.EvalReport} "Evaluation report"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 404 {object} APIResponse "Result or gold file not found"
// @Failure 422 {object} APIResponse "Row count mismatch or missing column"
// @Router /evaluate [post]
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var (
		report *domain.EvalReport
		err    error
	)
	if req.ResultURI != "" {
		report, err = h.evalService.Evaluate(c.Request.Context(), service.EvaluateRequest{
			ResultURI:     req.ResultURI,
			GoldURI:       req.GoldURI,
			ResultColumn:  req.ResultColumn,
			GoldColumn:    req.GoldColumn,
			GoldDelimiter: req.GoldDelimiter,
			CaseSensitive: req.CaseSensitive,
		})
	} else {
		caseSensitive := h.caseSensitive
		if req.CaseSensitive != nil {
			caseSensitive = *req.CaseSensitive
		}
		report, err = h.evalService.EvaluateLabels(req.Predictions, req.Gold, caseSensitive)
	}
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, report)
}
