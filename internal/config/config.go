package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "gdra/internal/errors"
	"gdra/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// PipelineConfig controls the fusion run itself
type PipelineConfig struct {
	YearStart     int           `yaml:"year_start" envconfig:"YEAR_START" validate:"gte=1900,lte=2100"`
	YearEnd       int           `yaml:"year_end" envconfig:"YEAR_END" validate:"gte=1900,lte=2100"`
	Workers       int           `yaml:"workers" envconfig:"WORKERS" validate:"gte=1,lte=64"`
	CoverageFloor float64       `yaml:"coverage_floor" envconfig:"COVERAGE_FLOOR" validate:"gte=0,lte=100"`
	RunTimeout    time.Duration `yaml:"run_timeout" envconfig:"RUN_TIMEOUT"`
}

// SourcesConfig locates the raw inputs under the data directory.
// Directory values are relative to Paths.DataDir unless absolute.
type SourcesConfig struct {
	Disabled []string `yaml:"disabled" envconfig:"DISABLED"`

	NDGainDir      string `yaml:"ndgain_dir" envconfig:"NDGAIN_DIR"`
	NTLDir         string `yaml:"ntl_dir" envconfig:"NTL_DIR"`
	EMDATDir       string `yaml:"emdat_dir" envconfig:"EMDAT_DIR"`
	GDACSDir       string `yaml:"gdacs_dir" envconfig:"GDACS_DIR"`
	IMFDir         string `yaml:"imf_dir" envconfig:"IMF_DIR"`
	WDIDir         string `yaml:"wdi_dir" envconfig:"WDI_DIR"`
	HDRDir         string `yaml:"hdr_dir" envconfig:"HDR_DIR"`
	WGIDir         string `yaml:"wgi_dir" envconfig:"WGI_DIR"`
	INFORMDir      string `yaml:"inform_dir" envconfig:"INFORM_DIR"`
	FTSDir         string `yaml:"fts_dir" envconfig:"FTS_DIR"`
	DesinventarDir string `yaml:"desinventar_dir" envconfig:"DESINVENTAR_DIR"`
	BarroLeeDir    string `yaml:"barrolee_dir" envconfig:"BARROLEE_DIR"`
	OWIDDir        string `yaml:"owid_dir" envconfig:"OWID_DIR"`
}

// ServerConfig contains HTTP server configuration for the artifacts API
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Load builds the configuration in three layers: built-in defaults,
// then an optional YAML file, then GDRA_* environment variables. Later
// layers win.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		if err := overlayFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("GDRA", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// overlayFromFile unmarshals a YAML file over the current values, so
// keys absent from the file keep their defaults.
func overlayFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks field ranges through the struct tags, then the
// cross-field rules the tags cannot express.
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Pipeline.YearEnd < c.Pipeline.YearStart {
		return fmt.Errorf("year_end %d before year_start %d", c.Pipeline.YearEnd, c.Pipeline.YearStart)
	}

	for _, src := range c.Sources.Disabled {
		if !knownSource(src) {
			return fmt.Errorf("unknown source %q in sources.disabled", src)
		}
	}

	// Structured logging is JSON-only, dual output unless file-only
	// was requested.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFilePath
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	return nil
}

// SourceEnabled reports whether a source key is active for this run.
func (c *Config) SourceEnabled(source string) bool {
	for _, d := range c.Sources.Disabled {
		if d == source {
			return false
		}
	}
	return true
}

func knownSource(source string) bool {
	for _, key := range domain.SourceKeys() {
		if key == source {
			return true
		}
	}
	return false
}

// findConfigFile returns the path to the config file
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use defaults and env vars
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			YearStart:     domain.DefaultYearStart,
			YearEnd:       domain.DefaultYearEnd,
			Workers:       4,
			CoverageFloor: 95,
			RunTimeout:    DefaultRunTimeout,
		},
		Sources: SourcesConfig{
			NDGainDir:      "NDGain",
			NTLDir:         "HarmonizedNTL",
			EMDATDir:       "emdat",
			GDACSDir:       "GDACS",
			IMFDir:         "imf",
			WDIDir:         "worldBankWDI",
			HDRDir:         "HDR",
			WGIDir:         "WGI",
			INFORMDir:      "IINFORMRisk",
			FTSDir:         "FTS",
			DesinventarDir: "desinventarSandai",
			BarroLeeDir:    "barrolee",
			OWIDDir:        "WDIworld",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "both",
			FilePath:    DefaultLogFilePath,
			Development: true,
		},
		Paths: PathsConfig{
			DataDir:   DefaultDataDir,
			OutputDir: DefaultOutputDir,
			LogsDir:   DefaultLogsDir,
		},
	}
}
