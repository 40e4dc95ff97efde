package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfigs creates a temporary "configs" directory and changes the
// working directory to its parent for the duration of the test.
func setupTestConfigs(t *testing.T) string {
	root := t.TempDir()
	configPath := filepath.Join(root, "configs")
	require.NoError(t, os.Mkdir(configPath, 0755))
	t.Chdir(root)
	return configPath
}

const sampleConfig = `
config:
  project_key: "demo"
  coverage:
    enabled: false
    reports:
      - "coverage/lcov.info"
      - "coverage/gcovr.json"
    exclusions:
      - "gen/**"
  rules:
    active:
      - "covguard-go:DecreasingLineCoverage"
  baseline:
    source: "http"
    url: "https://metrics.example.com"
    timeout: 3
  output:
    metrics_textfile: "out/covguard.prom"
`

func TestLoadConfig_Success(t *testing.T) {
	configPath := setupTestConfigs(t)
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(sampleConfig), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.ProjectKey)
	assert.False(t, cfg.Coverage.Enabled)
	assert.Equal(t, []string{"coverage/lcov.info", "coverage/gcovr.json"}, cfg.Coverage.Reports)
	assert.Equal(t, []string{"gen/**"}, cfg.Coverage.Exclusions)
	assert.Equal(t, []string{"covguard-go:DecreasingLineCoverage"}, cfg.Rules.Active)
	assert.Equal(t, BaselineHTTP, cfg.Baseline.Source)
	assert.Equal(t, 3*time.Second, cfg.Baseline.TimeoutDuration())
	assert.Equal(t, "out/covguard.prom", cfg.Output.MetricsTextfile)

	// defaults fill what the file leaves out
	assert.Equal(t, ".", cfg.Coverage.SourceRoot)
	assert.Equal(t, "covguard_out", cfg.Output.SarifDir)
	assert.True(t, cfg.Output.Markdown)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	setupTestConfigs(t)

	var f configFile
	err := Load("non_existent_config", &f)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	configPath := setupTestConfigs(t)
	malformed := "config: test\n  project_key: oops" // Bad indentation
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "malformed.yaml"), []byte(malformed), 0644))

	var f configFile
	err := Load("malformed", &f)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("config:\n  project_key: other\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.ProjectKey)
	assert.True(t, cfg.Coverage.Enabled)
	assert.Equal(t, BaselineBadger, cfg.Baseline.Source)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("config:\n  project_key: demo\n  baseline:\n    token: from-file\n"), 0644))
	t.Setenv("COVGUARD_CONFIG_BASELINE_TOKEN", "from-env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Baseline.Token)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Coverage.Enabled)
	assert.Equal(t, ".covguard/baseline", cfg.Baseline.BadgerPath)
	assert.Equal(t, 10*time.Second, cfg.Baseline.TimeoutDuration())
	assert.Error(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no project", func(c *Config) { c.ProjectKey = "" }, "project_key"},
		{"no badger path", func(c *Config) { c.Baseline.BadgerPath = "" }, "badger_path"},
		{"http without url", func(c *Config) { c.Baseline.Source = BaselineHTTP }, "baseline.url"},
		{"unknown source", func(c *Config) { c.Baseline.Source = "ftp" }, "unknown baseline source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ProjectKey = "demo"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
