package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPromptCommand(t *testing.T) {
	out, err := execute(t, "prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "Error classes: ")
}

func TestPromptCommand_CustomFile(t *testing.T) {
	dir := t.TempDir()
	prompt := writeFile(t, dir, "prompt.md", "Classify the error.")
	cfgPath := writeFile(t, dir, "mederror.yaml", "generator:\n  prompt_file: "+prompt+"\n")

	out, err := execute(t, "--config", cfgPath, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Classify the error.\n", out)
}

func TestParseAndEvaluateCommands(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "gpt-4o.txt",
		"###### 1\nError class: Negation\nReasoning: negated.\n"+
			"###### 2\nnot sure\n"+
			"###### 3\n**Final Answer**:\nError class: Section\nReasoning: family history.\n")
	gold := writeFile(t, dir, "gold.tsv", "ID\tHuman_Label\n1\tNegation\n2\tSection\n3\tSection\n")

	out, err := execute(t, "parse", "--input", doc, "--mode", "labeled")
	require.NoError(t, err)
	assert.Contains(t, out, "parsed 3 rows (1 failed)")

	table := doc + "_clean.csv"
	data, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 4)

	out, err = execute(t, "evaluate", "--result", table, "--gold", gold, "--classes")
	require.NoError(t, err)
	assert.Contains(t, out, "Accuracy:  0.6667")
	assert.Contains(t, out, "Failures: 1")
}

func TestParseCommand_MissingInput(t *testing.T) {
	_, err := execute(t, "parse", "--input", filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)

	_, err = execute(t, "parse")
	assert.Error(t, err)
}

func TestParseCommand_InvalidMode(t *testing.T) {
	_, err := execute(t, "parse", "--input", "x.txt", "--mode", "xml")
	assert.Error(t, err)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, zap.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
