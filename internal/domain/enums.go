package domain

// ParseMode selects which extraction strategies the response parser attempts.
type ParseMode string

const (
	ParseModeTable   ParseMode = "table"
	ParseModeTab     ParseMode = "tab"
	ParseModeLabeled ParseMode = "labeled"
	ParseModeAuto    ParseMode = "auto"
)

// ValidParseModes lists every accepted ParseMode.
var ValidParseModes = []ParseMode{ParseModeTable, ParseModeTab, ParseModeLabeled, ParseModeAuto}

// IsValid reports whether m is one of the known parse modes.
func (m ParseMode) IsValid() bool {
	for _, v := range ValidParseModes {
		if m == v {
			return true
		}
	}
	return false
}

// Dialect identifies the textual layout an LLM used for its final answer.
type Dialect string

const (
	DialectNone        Dialect = "none"
	DialectTable       Dialect = "markdown_table"
	DialectDisplayMath Dialect = "display_math"
	DialectFinalAnswer Dialect = "final_answer_tab"
	DialectLabeled     Dialect = "labeled_field"
)

// RunStatus represents the lifecycle of an evaluation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunStage names the pipeline step a run record was produced by.
type RunStage string

const (
	RunStageGenerate RunStage = "generate"
	RunStageParse    RunStage = "parse"
	RunStageEvaluate RunStage = "evaluate"
	RunStagePipeline RunStage = "pipeline"
)
