package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration, read from the "config" key.
type Config struct {
	ProjectKey string         `mapstructure:"project_key"`
	Coverage   CoverageConfig `mapstructure:"coverage"`
	Rules      RulesConfig    `mapstructure:"rules"`
	Baseline   BaselineConfig `mapstructure:"baseline"`
	Output     OutputConfig   `mapstructure:"output"`
	Log        LogConfig      `mapstructure:"log"`
}

// CoverageConfig controls which reports are read and whether the analysis runs.
type CoverageConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Reports    []string `mapstructure:"reports"`
	SourceRoot string   `mapstructure:"source_root"`
	Exclusions []string `mapstructure:"exclusions"`
	// GcovrCommand, when set, is run in SourceRoot and its stdout read as a
	// gcovr JSON report, e.g. 'gcovr --json -r .'.
	GcovrCommand string `mapstructure:"gcovr_command"`
}

// RulesConfig points at the quality profile. Active lists rule keys to use
// when no profile file is given.
type RulesConfig struct {
	Profile string   `mapstructure:"profile"`
	Active  []string `mapstructure:"active"`
}

// BaselineConfig selects where previous coverage comes from.
type BaselineConfig struct {
	Source     string `mapstructure:"source"`
	BadgerPath string `mapstructure:"badger_path"`
	URL        string `mapstructure:"url"`
	Token      string `mapstructure:"token"`
	Timeout    int    `mapstructure:"timeout"` // seconds
}

// TimeoutDuration returns the HTTP timeout.
func (b BaselineConfig) TimeoutDuration() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}

// OutputConfig controls the files written after a run.
type OutputConfig struct {
	SarifDir        string `mapstructure:"sarif_dir"`
	Markdown        bool   `mapstructure:"markdown"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

const (
	BaselineBadger = "badger"
	BaselineHTTP   = "http"
)

type configFile struct {
	Config Config `mapstructure:"config"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("config.coverage.enabled", true)
	v.SetDefault("config.coverage.source_root", ".")
	v.SetDefault("config.baseline.source", BaselineBadger)
	v.SetDefault("config.baseline.badger_path", ".covguard/baseline")
	v.SetDefault("config.baseline.timeout", 10)
	v.SetDefault("config.output.sarif_dir", "covguard_out")
	v.SetDefault("config.output.markdown", true)
	v.SetDefault("config.log.level", "info")
	// COVGUARD_CONFIG_BASELINE_TOKEN overrides config.baseline.token
	v.SetEnvPrefix("COVGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads a configuration file from the "configs" directory into a struct.
// The configName parameter should be the base name of the file without the extension (e.g., "config").
// The result parameter should be a pointer to a struct that the configuration will be unmarshaled into.
func Load(configName string, result interface{}) error {
	v := newViper()
	v.SetConfigName(configName)
	v.AddConfigPath("configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.Unmarshal(result); err != nil {
		return fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	return nil
}

// LoadConfig loads configs/config.yaml.
func LoadConfig() (*Config, error) {
	var f configFile
	if err := Load("config", &f); err != nil {
		return nil, err
	}
	return &f.Config, nil
}

// LoadFile loads the configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var f configFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	return &f.Config, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var f configFile
	// defaults only, cannot fail
	_ = newViper().Unmarshal(&f)
	return &f.Config
}

// Validate checks the settings an analysis needs.
func (c *Config) Validate() error {
	if c.ProjectKey == "" {
		return errors.New("project_key is required")
	}
	switch c.Baseline.Source {
	case BaselineBadger:
		if c.Baseline.BadgerPath == "" {
			return errors.New("baseline.badger_path is required for the badger source")
		}
	case BaselineHTTP:
		if c.Baseline.URL == "" {
			return errors.New("baseline.url is required for the http source")
		}
	default:
		return fmt.Errorf("unknown baseline source %q", c.Baseline.Source)
	}
	return nil
}
