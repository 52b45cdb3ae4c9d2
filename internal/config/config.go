package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/config-cache-drift/internal/sectionindex"
	"github.com/eugenenazirov/config-cache-drift/internal/snapshot"
)

const (
	defaultEnvFile   = ".env"
	defaultConfigDir = "config"
	defaultCachePath = "bootstrap/cache/config.php"
	defaultLogLevel  = "warn"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Defaults
type Config struct {
	ProjectRoot      string
	EnvFile          string
	ConfigDir        string
	CachePath        string
	SectionExtension string
	PHPBinary        string
	EvaluatorTimeout time.Duration
	LogLevel         string
	ExitCodeOnDiff   bool
	SearchParents    bool
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Root             string `yaml:"root"`
	EnvFile          string `yaml:"env_file"`
	ConfigDir        string `yaml:"config_dir"`
	Cache            string `yaml:"cache"`
	Extension        string `yaml:"extension"`
	PHP              string `yaml:"php"`
	EvaluatorTimeout string `yaml:"evaluator_timeout"`
	LogLevel         string `yaml:"log_level"`
	ExitCode         *bool  `yaml:"exit_code"`
	SearchParents    *bool  `yaml:"search_parents"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile       string
	ProjectRoot      *string
	EnvFile          *string
	ConfigDir        *string
	CachePath        *string
	SectionExtension *string
	PHPBinary        *string
	EvaluatorTimeout *time.Duration
	LogLevel         *string
	ExitCodeOnDiff   *bool
	SearchParents    *bool
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		ProjectRoot:      ".",
		EnvFile:          defaultEnvFile,
		ConfigDir:        defaultConfigDir,
		CachePath:        defaultCachePath,
		SectionExtension: sectionindex.DefaultExtension,
		PHPBinary:        snapshot.DefaultPHPBinary,
		LogLevel:         defaultLogLevel,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	setString(&cfg.ProjectRoot, yamlCfg.Root)
	setString(&cfg.EnvFile, yamlCfg.EnvFile)
	setString(&cfg.ConfigDir, yamlCfg.ConfigDir)
	setString(&cfg.CachePath, yamlCfg.Cache)
	setString(&cfg.SectionExtension, yamlCfg.Extension)
	setString(&cfg.PHPBinary, yamlCfg.PHP)
	setString(&cfg.LogLevel, yamlCfg.LogLevel)

	if yamlCfg.EvaluatorTimeout != "" {
		d, err := time.ParseDuration(yamlCfg.EvaluatorTimeout)
		if err != nil {
			return fmt.Errorf("evaluator_timeout: %w", err)
		}
		cfg.EvaluatorTimeout = d
	}

	if yamlCfg.ExitCode != nil {
		cfg.ExitCodeOnDiff = *yamlCfg.ExitCode
	}

	if yamlCfg.SearchParents != nil {
		cfg.SearchParents = *yamlCfg.SearchParents
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	setStringPtr(&cfg.ProjectRoot, overrides.ProjectRoot)
	setStringPtr(&cfg.EnvFile, overrides.EnvFile)
	setStringPtr(&cfg.ConfigDir, overrides.ConfigDir)
	setStringPtr(&cfg.CachePath, overrides.CachePath)
	setStringPtr(&cfg.SectionExtension, overrides.SectionExtension)
	setStringPtr(&cfg.PHPBinary, overrides.PHPBinary)
	setStringPtr(&cfg.LogLevel, overrides.LogLevel)

	if overrides.EvaluatorTimeout != nil {
		cfg.EvaluatorTimeout = *overrides.EvaluatorTimeout
	}

	if overrides.ExitCodeOnDiff != nil {
		cfg.ExitCodeOnDiff = *overrides.ExitCodeOnDiff
	}

	if overrides.SearchParents != nil {
		cfg.SearchParents = *overrides.SearchParents
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.EvaluatorTimeout < 0 {
		return fmt.Errorf("evaluator timeout must be >= 0")
	}
	if strings.TrimSpace(cfg.PHPBinary) == "" {
		return fmt.Errorf("php binary cannot be empty")
	}
	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		return fmt.Errorf("log level must be one of %s, got %q", strings.Join(validLogLevels, ", "), cfg.LogLevel)
	}
	return nil
}

// Path resolves rel against the project root unless it is absolute.
func (c Config) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.ProjectRoot, rel)
}

// EnvFilePath returns the resolved path of the environment file.
func (c Config) EnvFilePath() string { return c.Path(c.EnvFile) }

// ConfigDirPath returns the resolved path of the section directory.
func (c Config) ConfigDirPath() string { return c.Path(c.ConfigDir) }

// CacheFilePath returns the resolved path of the config cache.
func (c Config) CacheFilePath() string { return c.Path(c.CachePath) }

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setStringPtr(dst *string, value *string) {
	if value != nil && *value != "" {
		*dst = *value
	}
}
