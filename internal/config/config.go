package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigFileEnv names the environment variable that points at an optional YAML config file.
const ConfigFileEnv = "MEDERROR_CONFIG"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	Generator GeneratorConfig
	Parser    ParserConfig
	Eval      EvalConfig
	Output    OutputConfig
	CORS      CORSConfig
}

// GeneratorProviderConfig holds settings for a single LLM provider.
type GeneratorProviderConfig struct {
	Provider     string  `mapstructure:"provider" validate:"omitempty,oneof=openai azure local claude gemini"`
	APIKey       string  `mapstructure:"api_key"`
	Endpoint     string  `mapstructure:"endpoint" validate:"omitempty,url"`
	APIVersion   string  `mapstructure:"api_version"`
	DefaultModel string  `mapstructure:"default_model"`
	MaxRetries   int     `mapstructure:"max_retries" validate:"gte=0"`
	TimeoutSecs  int     `mapstructure:"timeout_secs" validate:"gte=0"`
	Temperature  float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TopP         float64 `mapstructure:"top_p" validate:"gte=0,lte=1"`
	MaxTokens    int     `mapstructure:"max_tokens" validate:"gte=0"`
}

// GeneratorConfig holds LLM generation settings with multi-provider support.
type GeneratorConfig struct {
	Primary     GeneratorProviderConfig `mapstructure:"primary"`
	Secondary   GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary    GeneratorProviderConfig `mapstructure:"tertiary"`
	Concurrency int                     `mapstructure:"concurrency" validate:"min=1"`
	PromptFile  string                  `mapstructure:"prompt_file"`
	Taxonomy    string                  `mapstructure:"taxonomy"`
}

// PrimaryConfig returns the primary provider config.
func (g *GeneratorConfig) PrimaryConfig() *GeneratorProviderConfig {
	return &g.Primary
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (g *GeneratorConfig) SecondaryConfig() *GeneratorProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (g *GeneratorConfig) TertiaryConfig() *GeneratorProviderConfig {
	if g.Tertiary.Provider != "" {
		return &g.Tertiary
	}
	return nil
}

// ParserConfig holds response parsing settings.
type ParserConfig struct {
	Mode    string `mapstructure:"mode" validate:"oneof=table tab labeled auto"`
	Marker  string `mapstructure:"marker" validate:"required"`
	Verbose bool   `mapstructure:"verbose"`
}

// EvalConfig holds metrics settings.
type EvalConfig struct {
	ResultColumn  string `mapstructure:"result_column" validate:"required"`
	GoldColumn    string `mapstructure:"gold_column" validate:"required"`
	GoldDelimiter string `mapstructure:"gold_delimiter" validate:"len=1"`
	CaseSensitive bool   `mapstructure:"case_sensitive"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir  string `mapstructure:"dir" validate:"required"`
	BOM  bool   `mapstructure:"bom"`
	XLSX bool   `mapstructure:"xlsx"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment" validate:"oneof=development staging production test"`
}

// DBConfig holds PostgreSQL connection settings. Persistence is optional.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings used for s3:// artifact URIs.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

var validate = validator.New()

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads configuration from a .env file, the optional file named by
// MEDERROR_CONFIG and environment variables with the MEDERROR_ prefix.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile is Load with an explicit config file path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MEDERROR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Bind environment variables explicitly for nested keys
	for _, key := range v.AllKeys() {
		env := "MEDERROR_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if MEDERROR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDERROR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Generator = GeneratorConfig{
		Primary:     providerConfig(v, "generator.primary"),
		Secondary:   providerConfig(v, "generator.secondary"),
		Tertiary:    providerConfig(v, "generator.tertiary"),
		Concurrency: v.GetInt("generator.concurrency"),
		PromptFile:  v.GetString("generator.prompt_file"),
		Taxonomy:    v.GetString("generator.taxonomy"),
	}
	cfg.Parser = ParserConfig{
		Mode:    v.GetString("parser.mode"),
		Marker:  v.GetString("parser.marker"),
		Verbose: v.GetBool("parser.verbose"),
	}
	cfg.Eval = EvalConfig{
		ResultColumn:  v.GetString("eval.result_column"),
		GoldColumn:    v.GetString("eval.gold_column"),
		GoldDelimiter: v.GetString("eval.gold_delimiter"),
		CaseSensitive: v.GetBool("eval.case_sensitive"),
	}
	cfg.Output = OutputConfig{
		Dir:  v.GetString("output.dir"),
		BOM:  v.GetBool("output.bom"),
		XLSX: v.GetBool("output.xlsx"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "mederror")
	v.SetDefault("db.password", "mederror_secret")
	v.SetDefault("db.name", "mederror_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Generator defaults
	v.SetDefault("generator.concurrency", 4)
	v.SetDefault("generator.prompt_file", "")
	v.SetDefault("generator.taxonomy", "")
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		prefix := "generator." + tier
		v.SetDefault(prefix+".provider", "")
		v.SetDefault(prefix+".api_key", "")
		v.SetDefault(prefix+".endpoint", "")
		v.SetDefault(prefix+".api_version", "")
		v.SetDefault(prefix+".default_model", "")
		v.SetDefault(prefix+".max_retries", 2)
		v.SetDefault(prefix+".timeout_secs", 120)
		v.SetDefault(prefix+".temperature", 0.0)
		v.SetDefault(prefix+".top_p", 0.9)
		v.SetDefault(prefix+".max_tokens", 1024)
	}
	v.SetDefault("generator.primary.provider", "azure")
	v.SetDefault("generator.primary.api_version", "2024-12-01-preview")
	v.SetDefault("generator.primary.default_model", "gpt-4o")

	// Parser defaults
	v.SetDefault("parser.mode", "auto")
	v.SetDefault("parser.marker", "######")
	v.SetDefault("parser.verbose", false)

	// Eval defaults
	v.SetDefault("eval.result_column", "Error Class")
	v.SetDefault("eval.gold_column", "Human_Label")
	v.SetDefault("eval.gold_delimiter", "\t")
	v.SetDefault("eval.case_sensitive", false)

	// Output defaults
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.bom", true)
	v.SetDefault("output.xlsx", false)
}

func providerConfig(v *viper.Viper, prefix string) GeneratorProviderConfig {
	p := GeneratorProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
		APIVersion:   v.GetString(prefix + ".api_version"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		Temperature:  v.GetFloat64(prefix + ".temperature"),
		TopP:         v.GetFloat64(prefix + ".top_p"),
		MaxTokens:    v.GetInt(prefix + ".max_tokens"),
	}
	applyCredentialFallbacks(&p)
	return p
}

// applyCredentialFallbacks fills an empty key or endpoint from the variables
// each provider's own tooling reads.
func applyCredentialFallbacks(p *GeneratorProviderConfig) {
	switch p.Provider {
	case "azure":
		if p.APIKey == "" {
			p.APIKey = os.Getenv("AZURE_OPENAI_KEY")
		}
		if p.Endpoint == "" {
			p.Endpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
		}
	case "openai":
		if p.APIKey == "" {
			p.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "claude":
		if p.APIKey == "" {
			p.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "gemini":
		if p.APIKey == "" {
			p.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}
