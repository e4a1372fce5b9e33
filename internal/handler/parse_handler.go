package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mederror/internal/csvexport"
	"mederror/internal/dataset"
	"mederror/internal/domain"
	"mederror/internal/service"
)

// ParseHandler exposes the response parser over HTTP.
type ParseHandler struct {
	parseService service.ParseService
	bom          bool
	log          *zap.Logger
}

// NewParseHandler creates a new ParseHandler.
func NewParseHandler(parseService service.ParseService, bom bool, log *zap.Logger) *ParseHandler {
	return &ParseHandler{parseService: parseService, bom: bom, log: log}
}

// ParseRequest is the body of POST /api/v1/parse.
type ParseRequest struct {
	Document string `json:"document"`
	// Origin is the original-input CSV text; when present rows are merged.
	Origin string           `json:"origin"`
	Mode   domain.ParseMode `json:"mode" binding:"omitempty,oneof=table tab labeled auto"`
	Name   string           `json:"name"`
}

// ParseResponse is the JSON form of a parsed table.
type ParseResponse struct {
	Columns  []string               `json:"columns"`
	Rows     []domain.ParsedRow     `json:"rows"`
	Failures int                    `json:"failures"`
	Dialects map[domain.Dialect]int `json:"dialects"`
}

// Parse handles POST /api/v1/parse. With ?format=csv the table is returned as
// a CSV attachment instead of JSON.
// @Summary Parse a response document
// @Description Split a generated response document into blocks and recover sentence, prediction, error class and reasoning from each. Unparseable blocks become CHATGPT_FAILURE rows. When origin is given, rows are merged with the original input row by row.
// @Tags parse
// @Accept json
// @Produce json
// @Produce text/csv
// @Param body body ParseRequest true "Response document"
// @Param format query string false "Set to csv for a CSV attachment"
// @Success 200 {object} APIResponse{data=ParseResponse} "Parsed table"
// @Failure 400 {object} APIResponse "Invalid request or empty document"
// @Failure 422 {object} APIResponse "No blocks or origin row mismatch"
// @Router /parse [post]
func (h *ParseHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if strings.TrimSpace(req.Document) == "" {
		HandleError(c, h.log, domain.ErrEmptyDocument)
		return
	}

	var origin [][]string
	if req.Origin != "" {
		rows, err := dataset.ReadOriginRows(strings.NewReader(req.Origin))
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ORIGIN", err.Error())
			return
		}
		origin = rows
	}

	table, err := h.parseService.ParseDocument(req.Document, origin, req.Mode)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := csvexport.WriteTable(&buf, table, h.bom); err != nil {
			HandleError(c, h.log, err)
			return
		}
		name := req.Name
		if name == "" {
			name = "parsed"
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, csvexport.BuildFilename(name)))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		return
	}

	RespondOK(c, ParseResponse{
		Columns:  table.Columns(),
		Rows:     table.Rows(),
		Failures: table.FailureCount(),
		Dialects: table.DialectCounts(),
	})
}
