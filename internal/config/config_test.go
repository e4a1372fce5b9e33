package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mederror/internal/config"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Parser.Mode)
	assert.Equal(t, "######", cfg.Parser.Marker)
	assert.Equal(t, "Error Class", cfg.Eval.ResultColumn)
	assert.Equal(t, "Human_Label", cfg.Eval.GoldColumn)
	assert.Equal(t, "\t", cfg.Eval.GoldDelimiter)
	assert.False(t, cfg.Eval.CaseSensitive)
	assert.Equal(t, "azure", cfg.Generator.Primary.Provider)
	assert.Equal(t, "2024-12-01-preview", cfg.Generator.Primary.APIVersion)
	assert.Equal(t, 1024, cfg.Generator.Primary.MaxTokens)
	assert.InDelta(t, 0.9, cfg.Generator.Primary.TopP, 1e-9)
	assert.Equal(t, 4, cfg.Generator.Concurrency)
	assert.False(t, cfg.DB.Enabled)
	assert.True(t, cfg.Output.BOM)

	require.NoError(t, cfg.Validate())
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("MEDERROR_PARSER_MODE", "labeled")
	t.Setenv("MEDERROR_EVAL_CASE_SENSITIVE", "true")
	t.Setenv("MEDERROR_GENERATOR_PRIMARY_PROVIDER", "claude")
	t.Setenv("MEDERROR_GENERATOR_PRIMARY_DEFAULT_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("MEDERROR_GENERATOR_CONCURRENCY", "8")

	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "labeled", cfg.Parser.Mode)
	assert.True(t, cfg.Eval.CaseSensitive)
	assert.Equal(t, "claude", cfg.Generator.Primary.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Generator.Primary.DefaultModel)
	assert.Equal(t, 8, cfg.Generator.Concurrency)
}

func TestLoadFile_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mederror.yaml")
	content := `
parser:
  mode: tab
eval:
  gold_column: Gold
generator:
  primary:
    provider: local
    endpoint: http://localhost:8000/v1
    default_model: meta-llama/Meta-Llama-3.1-8B-Instruct
  secondary:
    provider: gemini
    default_model: gemini-2.0-flash
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "tab", cfg.Parser.Mode)
	assert.Equal(t, "Gold", cfg.Eval.GoldColumn)
	assert.Equal(t, "local", cfg.Generator.Primary.Provider)
	assert.Equal(t, "http://localhost:8000/v1", cfg.Generator.Primary.Endpoint)

	secondary := cfg.Generator.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "gemini", secondary.Provider)
	assert.Nil(t, cfg.Generator.TertiaryConfig())
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_CredentialFallbacks(t *testing.T) {
	t.Setenv("AZURE_OPENAI_KEY", "az-key")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")

	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "az-key", cfg.Generator.Primary.APIKey)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Generator.Primary.Endpoint)

	t.Setenv("MEDERROR_GENERATOR_PRIMARY_API_KEY", "explicit")
	cfg, err = config.LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Generator.Primary.APIKey)
}

func TestLoadFile_PortFromPlatform(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown parse mode", func(c *config.Config) { c.Parser.Mode = "xml" }},
		{"unknown provider", func(c *config.Config) { c.Generator.Secondary.Provider = "cohere" }},
		{"zero concurrency", func(c *config.Config) { c.Generator.Concurrency = 0 }},
		{"multi-char delimiter", func(c *config.Config) { c.Eval.GoldDelimiter = "||" }},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }},
		{"top_p above one", func(c *config.Config) { c.Generator.Primary.TopP = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadFile("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.DSN())
}
