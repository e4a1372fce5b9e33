package service_test

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mederror/internal/domain"
	"mederror/internal/service"
	"mederror/internal/storage/local"
	"mederror/mocks"
)

const responseDoc = "###### 1\nError class: Negation\nReasoning: negated.\n" +
	"###### 2\nI cannot decide.\n" +
	"###### 3\n**Final Answer**:\nPt fell.\tFALL\tSection\tfamily history\n"

const originCSV = "ID\tsent\tConcept Norm\terror_type\n" +
	"101\tDenies pain.\tPAIN\tfp\n" +
	"102\tConfused?\tCONFUSION\tfp\n" +
	"103\tPt fell.\tFALL\tfn\n"

func seededStore(t *testing.T, files map[string]string) (afero.Fs, *local.Store) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs, local.NewStore(fs)
}

func readCSV(t *testing.T, fs afero.Fs, name string) [][]string {
	t.Helper()
	data, err := afero.ReadFile(fs, name)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestParseService_Parse_DefaultOutputPath(t *testing.T) {
	fs, store := seededStore(t, map[string]string{"output/o1": responseDoc})
	svc := service.NewParseService(store, nil, service.ParseOptions{Mode: domain.ParseModeAuto, BOM: true}, zap.NewNop())

	result, err := svc.Parse(context.Background(), service.ParseRequest{DocumentURI: "output/o1"})
	require.NoError(t, err)
	assert.Equal(t, "output/o1_clean.csv", result.OutputURI)
	assert.Equal(t, 3, result.Table.Len())
	assert.Equal(t, 1, result.Failures)
	assert.Equal(t, 1, result.Dialects[domain.DialectLabeled])
	assert.Equal(t, 1, result.Dialects[domain.DialectFinalAnswer])

	data, err := afero.ReadFile(fs, "output/o1_clean.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeffSentence,"))

	records := readCSV(t, fs, "output/o1_clean.csv")
	require.Len(t, records, 4)
	assert.Equal(t, "Negation", records[1][2])
	assert.Equal(t, domain.FailureSentinel, records[2][2])
	assert.Equal(t, "Section", records[3][2])
}

func TestParseService_Parse_WithOriginAndModeOverride(t *testing.T) {
	fs, store := seededStore(t, map[string]string{"o1.txt": responseDoc, "input.csv": originCSV})
	svc := service.NewParseService(store, nil, service.ParseOptions{Mode: domain.ParseModeAuto}, zap.NewNop())

	result, err := svc.Parse(context.Background(), service.ParseRequest{
		DocumentURI: "o1.txt",
		OriginURI:   "input.csv",
		OutputURI:   "clean/o1.csv",
		XLSXURI:     "clean/o1.xlsx",
		Mode:        domain.ParseModeLabeled,
	})
	require.NoError(t, err)
	// the final-answer block only yields a row in tab mode, so labeled mode marks it failed
	assert.Equal(t, 2, result.Failures)
	assert.True(t, result.Table.HasOrigin())

	records := readCSV(t, fs, "clean/o1.csv")
	assert.Len(t, records[0], 8)
	assert.Equal(t, []string{"103", "Pt fell.", "FALL", "fn"}, records[3][4:])

	exists, err := afero.Exists(fs, "clean/o1.xlsx")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestParseService_Parse_OriginMismatch(t *testing.T) {
	_, store := seededStore(t, map[string]string{
		"o1.txt":    responseDoc,
		"input.csv": "ID\tsent\n101\ta\n",
	})
	repo := new(mocks.MockRunRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Fail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := service.NewParseService(store, repo, service.ParseOptions{}, zap.NewNop())
	_, err := svc.Parse(context.Background(), service.ParseRequest{DocumentURI: "o1.txt", OriginURI: "input.csv"})
	assert.ErrorIs(t, err, domain.ErrOriginExhausted)
	repo.AssertExpectations(t)
}

func TestParseService_Parse_Errors(t *testing.T) {
	_, store := seededStore(t, map[string]string{"empty.txt": "no markers here"})
	svc := service.NewParseService(store, nil, service.ParseOptions{}, zap.NewNop())

	_, err := svc.Parse(context.Background(), service.ParseRequest{DocumentURI: "absent.txt"})
	assert.ErrorIs(t, err, domain.ErrMissingSource)

	_, err = svc.Parse(context.Background(), service.ParseRequest{DocumentURI: "empty.txt"})
	assert.ErrorIs(t, err, domain.ErrNoData)

	_, err = svc.Parse(context.Background(), service.ParseRequest{DocumentURI: "empty.txt", Mode: "xml"})
	assert.ErrorIs(t, err, domain.ErrInvalidParseMode)
}

func TestParseService_Parse_RecordsRun(t *testing.T) {
	_, store := seededStore(t, map[string]string{"o1.txt": responseDoc})
	repo := new(mocks.MockRunRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.EvalRun) bool {
		return r.Stage == domain.RunStageParse && r.Status == domain.RunStatusRunning && r.SourceURI == "o1.txt"
	})).Return(nil)
	repo.On("Complete", mock.Anything, mock.MatchedBy(func(r *domain.EvalRun) bool {
		return r.Status == domain.RunStatusCompleted && r.RowCount == 3 && r.FailureCount == 1 && r.CompletedAt != nil
	})).Return(nil)

	svc := service.NewParseService(store, repo, service.ParseOptions{}, zap.NewNop())
	_, err := svc.Parse(context.Background(), service.ParseRequest{DocumentURI: "o1.txt"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
