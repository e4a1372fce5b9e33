package response_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mederror/internal/domain"
	"mederror/internal/response"
)

const (
	tableBlock = "| Sentence | Pred | Class | Reason |\n|---|---|---|---|\n| The patient fell. | FALL | Typographical_Error | misspelled word |"
	tabBlock   = "**Final Answer**:\nThe patient fell.\tFALL\tTypographical_Error\tmisspelled word"
	labelBlock = "Error class: Negation\nReasoning: The phrase contains a negated term."
)

var fellFields = response.Fields{
	Sentence:      "The patient fell.",
	NLPPrediction: "FALL",
	ErrorClass:    "Typographical_Error",
	Reasoning:     "misspelled word",
}

func TestTableStrategy_HeaderSeparatorData(t *testing.T) {
	fields, dialect, err := response.TableStrategy{}.Extract(tableBlock)
	require.NoError(t, err)
	assert.Equal(t, fellFields, fields)
	assert.Equal(t, domain.DialectTable, dialect)
}

func TestTableStrategy_ProseAroundTable(t *testing.T) {
	block := "Here is my analysis.\n\n" + tableBlock + "\n\nThe misspelling explains the miss."
	fields, _, err := response.TableStrategy{}.Extract(block)
	require.NoError(t, err)
	assert.Equal(t, fellFields, fields)
}

func TestTableStrategy_NoSeparatorLine(t *testing.T) {
	block := "| Sentence | Pred | Class | Reason |\n| The patient fell. | FALL | Typographical_Error | misspelled word |"
	fields, _, err := response.TableStrategy{}.Extract(block)
	require.NoError(t, err)
	assert.Equal(t, fellFields, fields)
}

func TestTableStrategy_WithoutOuterPipes(t *testing.T) {
	block := "Sentence | Pred | Class | Reason\n---|---|---|---\nThe patient fell. | FALL | Typographical_Error | misspelled word"
	fields, _, err := response.TableStrategy{}.Extract(block)
	require.NoError(t, err)
	assert.Equal(t, fellFields, fields)
}

func TestTableStrategy_DataRowWithEmptyCell(t *testing.T) {
	block := "| Sentence | Pred | Class | Reason |\n|---|---|---|---|\n| The patient fell. | | Typographical_Error | misspelled word |"
	_, _, err := response.TableStrategy{}.Extract(block)
	require.Error(t, err)
	assert.ErrorIs(t, err, response.ErrNoMatch)
}

func TestTableStrategy_DisplayMathFallback(t *testing.T) {
	block := `$$\begin{array}{cccc} \text{Sentence} & \text{NLP Prediction} & \text{Error Class} & \text{Reasoning} \\ ` +
		`\text{The patient fell.} & \text{FALL} & \text{Typographical_Error} & \text{misspelled word} \end{array}$$`
	fields, dialect, err := response.TableStrategy{}.Extract(block)
	require.NoError(t, err)
	assert.Equal(t, fellFields, fields)
	assert.Equal(t, domain.DialectDisplayMath, dialect)
}

func TestTableStrategy_DisplayMathHeaderOnly(t *testing.T) {
	block := `\text{Sentence} & \text{NLP Prediction} & \text{Error Class} & \text{Reasoning}`
	_, _, err := response.TableStrategy{}.Extract(block)
	assert.ErrorIs(t, err, response.ErrNoMatch)
}

func TestTableStrategy_NoTable(t *testing.T) {
	_, _, err := response.TableStrategy{}.Extract("The model could not decide.")
	var extractErr *response.ExtractError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, domain.DialectTable, extractErr.Dialect)
}

func TestFinalAnswerStrategy_BoldMarker(t *testing.T) {
	fields, dialect, err := response.FinalAnswerStrategy{}.Extract(tabBlock)
	require.NoError(t, err)
	assert.Equal(t, fellFields, fields)
	assert.Equal(t, domain.DialectFinalAnswer, dialect)
}

func TestFinalAnswerStrategy_HeadingMarkers(t *testing.T) {
	for _, heading := range []string{"## Final Answer:", "### Final Answer:", "###Final Answer:"} {
		t.Run(heading, func(t *testing.T) {
			block := "Step 1: the word is misspelled.\n\n" + heading + "\nThe patient fell.\tFALL\tTypographical_Error\tmisspelled word\n"
			fields, _, err := response.FinalAnswerStrategy{}.Extract(block)
			require.NoError(t, err)
			assert.Equal(t, fellFields, fields)
		})
	}
}

func TestFinalAnswerStrategy_EmptyCellsDropped(t *testing.T) {
	block := "**Final Answer**:\n\tThe patient fell.\t\tFALL\tTypographical_Error\tmisspelled word\t"
	fields, _, err := response.FinalAnswerStrategy{}.Extract(block)
	require.NoError(t, err)
	assert.Equal(t, fellFields, fields)
}

func TestFinalAnswerStrategy_WrongCellCount(t *testing.T) {
	block := "**Final Answer**:\nThe patient fell.\tFALL\tTypographical_Error"
	_, _, err := response.FinalAnswerStrategy{}.Extract(block)
	assert.ErrorIs(t, err, response.ErrNoMatch)
}

func TestFinalAnswerStrategy_NoMarker(t *testing.T) {
	block := "The patient fell.\tFALL\tTypographical_Error\tmisspelled word"
	_, _, err := response.FinalAnswerStrategy{}.Extract(block)
	assert.ErrorIs(t, err, response.ErrNoMatch)
}

func TestLabeledStrategy_PlainLabels(t *testing.T) {
	fields, dialect, err := response.LabeledStrategy{}.Extract(labelBlock)
	require.NoError(t, err)
	assert.Equal(t, response.Fields{
		Sentence:      "N/A",
		NLPPrediction: "N/A",
		ErrorClass:    "Negation",
		Reasoning:     "The phrase contains a negated term.",
	}, fields)
	assert.Equal(t, domain.DialectLabeled, dialect)
}

func TestLabeledStrategy_EmphasisAndCase(t *testing.T) {
	block := "**Final Answer**:\n**ERROR CLASS:** Negation\n**reasoning:** Denial of the concept."
	fields, _, err := response.LabeledStrategy{}.Extract(block)
	require.NoError(t, err)
	assert.Equal(t, "Negation", fields.ErrorClass)
	assert.Equal(t, "Denial of the concept.", fields.Reasoning)
}

func TestLabeledStrategy_PreambleMentionsIgnored(t *testing.T) {
	block := "I first considered whether the error class: Negation applies, but the reasoning: fails.\n\n" +
		"**Final Answer**:\nError class: Hypothetical_Language\nReasoning: The sentence is conditional."
	fields, _, err := response.LabeledStrategy{}.Extract(block)
	require.NoError(t, err)
	assert.Equal(t, "Hypothetical_Language", fields.ErrorClass)
	assert.Equal(t, "The sentence is conditional.", fields.Reasoning)
}

func TestLabeledStrategy_MultilineReasoning(t *testing.T) {
	block := "Error class: Section\nReasoning:\n1. The mention sits in family history.\n2. It does not describe the patient."
	fields, _, err := response.LabeledStrategy{}.Extract(block)
	require.NoError(t, err)
	assert.Equal(t, "Section", fields.ErrorClass)
	assert.Equal(t, "1. The mention sits in family history.\n2. It does not describe the patient.", fields.Reasoning)
}

func TestLabeledStrategy_Failures(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{name: "no labels", block: "The model could not decide."},
		{name: "only error class", block: "Error class: Negation"},
		{name: "labels without colons", block: "The error class is Negation and my reasoning is simple."},
		{name: "reasoning before error class", block: "Reasoning: it is negated.\nError class: Negation"},
		{name: "blank error class", block: "Error class:\nReasoning: unsure."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := response.LabeledStrategy{}.Extract(tt.block)
			assert.ErrorIs(t, err, response.ErrNoMatch)
		})
	}
}

func TestStrategiesFor(t *testing.T) {
	tests := []struct {
		mode     domain.ParseMode
		dialects []domain.Dialect
	}{
		{domain.ParseModeTable, []domain.Dialect{domain.DialectTable}},
		{domain.ParseModeTab, []domain.Dialect{domain.DialectFinalAnswer}},
		{domain.ParseModeLabeled, []domain.Dialect{domain.DialectLabeled}},
		{domain.ParseModeAuto, []domain.Dialect{domain.DialectTable, domain.DialectFinalAnswer, domain.DialectLabeled}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			strategies, err := response.StrategiesFor(tt.mode)
			require.NoError(t, err)
			var got []domain.Dialect
			for _, s := range strategies {
				got = append(got, s.Dialect())
			}
			assert.Equal(t, tt.dialects, got)
		})
	}

	_, err := response.StrategiesFor("json")
	assert.ErrorIs(t, err, domain.ErrInvalidParseMode)
}
