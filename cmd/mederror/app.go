package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"mederror/internal/config"
	"mederror/internal/csvexport"
	"mederror/internal/domain"
	"mederror/internal/generator"
	"mederror/internal/generator/claude"
	"mederror/internal/generator/gemini"
	"mederror/internal/generator/openai"
	"mederror/internal/logging"
	"mederror/internal/port"
	"mederror/internal/repository/postgres"
	"mederror/internal/response"
	"mederror/internal/service"
	"mederror/internal/storage"
	"mederror/internal/storage/local"
	s3store "mederror/internal/storage/s3"
	"mederror/internal/taxonomy"
)

func registerProviders() {
	generator.RegisterProvider("openai", openai.Factory)
	generator.RegisterProvider("azure", openai.Factory)
	generator.RegisterProvider("local", openai.Factory)
	generator.RegisterProvider("claude", claude.Factory)
	generator.RegisterProvider("gemini", gemini.Factory)
}

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	fs    afero.Fs
	store port.ArtifactStore
	db    *sqlx.DB
	runs  port.RunRepository
	tax   *taxonomy.Taxonomy
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logging.New(cfg.Log, cfg.Parser.Verbose)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, fs: afero.NewOsFs()}

	var objects port.ObjectStorage
	if client, err := s3store.NewClient(ctx, &cfg.S3); err != nil {
		log.Warn("s3 unavailable; s3:// URIs will be rejected", zap.Error(err))
	} else {
		objects = client
	}
	a.store = storage.NewRouter(local.NewStore(a.fs), objects)

	a.tax = taxonomy.Default()
	if cfg.Generator.Taxonomy != "" {
		if a.tax, err = taxonomy.Load(a.fs, cfg.Generator.Taxonomy); err != nil {
			return nil, err
		}
	}

	if cfg.DB.Enabled {
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		a.runs = postgres.NewRunRepo(db)
	}
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.log.Sync()
}

// instruction returns the system prompt: a custom prompt file when
// configured, otherwise the default prompt listing the taxonomy labels.
func (a *app) instruction() (string, error) {
	if a.cfg.Generator.PromptFile != "" {
		return generator.LoadInstruction(a.fs, a.cfg.Generator.PromptFile)
	}
	return generator.BuildInstruction(a.tax), nil
}

func (a *app) model() string {
	return a.cfg.Generator.Primary.DefaultModel
}

func (a *app) generationService() (service.GenerationService, error) {
	registerProviders()
	gen, err := generator.NewFromConfig(&a.cfg.Generator, a.log)
	if err != nil {
		return nil, err
	}
	return service.NewGenerationService(gen, a.store, a.runs, a.model(), a.cfg.Generator.Concurrency, a.log), nil
}

func (a *app) parseService() (service.ParseService, error) {
	marker, err := response.MarkerPattern(a.cfg.Parser.Marker)
	if err != nil {
		return nil, err
	}
	return service.NewParseService(a.store, a.runs, service.ParseOptions{
		Mode:   domain.ParseMode(a.cfg.Parser.Mode),
		Marker: marker,
		BOM:    a.cfg.Output.BOM,
	}, a.log), nil
}

func (a *app) evaluationService() service.EvaluationService {
	return service.NewEvaluationService(a.store, a.runs, service.EvaluationOptions{
		ResultColumn:  a.cfg.Eval.ResultColumn,
		GoldColumn:    a.cfg.Eval.GoldColumn,
		GoldDelimiter: a.cfg.Eval.GoldDelimiter,
		CaseSensitive: a.cfg.Eval.CaseSensitive,
		Taxonomy:      a.tax,
	}, a.log)
}

// defaultDocumentPath names a response document after the model and date
// under the output directory.
func (a *app) defaultDocumentPath() string {
	name := strings.TrimSuffix(csvexport.BuildFilename(a.model()), ".csv")
	return filepath.Join(a.cfg.Output.Dir, name+".txt")
}

// xlsxPathFor returns the workbook path to write beside tableURI, or "" when
// workbook export is off.
func (a *app) xlsxPathFor(tableURI string) string {
	if !a.cfg.Output.XLSX {
		return ""
	}
	return strings.TrimSuffix(tableURI, ".csv") + ".xlsx"
}
