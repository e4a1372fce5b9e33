package generator

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"mederror/internal/domain"
	"mederror/internal/taxonomy"
)

//go:embed instruction.md
var defaultInstruction string

// InputHeading precedes the case description in every user message.
const InputHeading = "\n\n## Input:\n\n"

const taskClassesPrefix = "error classes of the NLP predictions, defined as "

var (
	classListRe   = regexp.MustCompile(`Error classes: [^\n.]*\.`)
	taskClassesRe = regexp.MustCompile(regexp.QuoteMeta(taskClassesPrefix) + `[^\n.]*\.`)
)

// DefaultInstruction returns the built-in system prompt describing the error taxonomy.
func DefaultInstruction() string {
	return defaultInstruction
}

// BuildInstruction returns the default prompt with both class lists, the
// task definition and the step instructions, replaced by the labels of tax.
func BuildInstruction(tax *taxonomy.Taxonomy) string {
	labels := strings.Join(tax.Labels(), ", ") + "."
	inst := taskClassesRe.ReplaceAllLiteralString(defaultInstruction, taskClassesPrefix+labels)
	return classListRe.ReplaceAllLiteralString(inst, "Error classes: "+labels)
}

// LoadInstruction reads a custom prompt file.
func LoadInstruction(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return string(data), nil
}

// BuildUserPrompt renders one candidate error case.
func BuildUserPrompt(row domain.InputRow) string {
	return InputHeading + fmt.Sprintf("Sentence: %s\tNLP Prediction: %s\tType of Error: %s",
		row.Sentence, row.NLPPrediction, row.ExpectedErrorType)
}

// FoldsSystemPrompt reports whether model rejects system messages, in which
// case the instruction is prepended to the user message instead.
func FoldsSystemPrompt(model string) bool {
	return strings.Contains(strings.ToLower(model), "o1")
}
