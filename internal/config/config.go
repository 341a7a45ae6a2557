package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"emlscout/internal/recommend"
)

// Config holds application configuration
type Config struct {
	SourceDir     string `env:"EMLSCOUT_SOURCE" envDefault:"."`
	WorkerCount   int    `env:"EMLSCOUT_WORKERS"`
	Verbose       bool   `env:"EMLSCOUT_VERBOSE"`
	RecursiveScan bool   `env:"EMLSCOUT_RECURSIVE" envDefault:"true"`

	// Output options
	OutputFormat string `env:"EMLSCOUT_FORMAT" envDefault:"text"` // "text" or "json"
	ReportDir    string `env:"EMLSCOUT_REPORT_DIR"`               // write one PDF report per message when set
	RichReports  bool   `env:"EMLSCOUT_RICH_REPORTS" envDefault:"true"`

	// Recommendation preferences
	PreferencesFile string `env:"EMLSCOUT_PREFERENCES"`
	AIProcessing    bool   `env:"EMLSCOUT_AI_PROCESSING"`

	// Security options
	ScanAttachments bool   `env:"EMLSCOUT_SCAN"`
	ClamdAddress    string `env:"CLAMD_ADDRESS" envDefault:"localhost:3310"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load reads defaults from the environment, including a .env file if present.
// Command line flags are applied on top by the caller.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = runtime.NumCPU()
	}
	return cfg, nil
}

// Validate checks option values that flags and environment cannot constrain
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source path is required")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.WorkerCount)
	}
	switch c.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported output format %q", c.OutputFormat)
	}
	return nil
}

// Preferences loads recommendation preferences from the preferences file,
// if any, and applies the AI processing switch on top.
func (c *Config) Preferences() (*recommend.Preferences, error) {
	prefs := &recommend.Preferences{}

	if c.PreferencesFile != "" {
		loaded, err := LoadPreferences(c.PreferencesFile)
		if err != nil {
			return nil, err
		}
		prefs = loaded
	}

	if c.AIProcessing {
		prefs.AIProcessing = true
	}
	return prefs, nil
}

// LoadPreferences reads a YAML preferences file
func LoadPreferences(path string) (*recommend.Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preferences file %s: %w", path, err)
	}

	prefs := &recommend.Preferences{}
	if err := yaml.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("parse preferences YAML: %w", err)
	}

	switch prefs.PDFMode {
	case "", recommend.OCRModeText, recommend.OCRModeImages, recommend.OCRModeAll:
	default:
		return nil, fmt.Errorf("unsupported pdf_mode %q", prefs.PDFMode)
	}
	if prefs.ChunkSize < 0 {
		return nil, fmt.Errorf("chunk_size must not be negative, got %d", prefs.ChunkSize)
	}

	return prefs, nil
}
