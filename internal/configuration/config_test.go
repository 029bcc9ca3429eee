package configuration_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	previous := configuration.EnvFile
	configuration.EnvFile = filepath.Join(dir, ".env")
	t.Cleanup(func() { configuration.EnvFile = previous })

	t.Setenv(configuration.GithubTokenEnv, "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv(configuration.SlackWebhookEnv, "")
	t.Setenv(configuration.CacheDirEnv, "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTomlMergesDefaults(t *testing.T) {
	dir := isolateEnv(t)
	path := writeFile(t, dir, ".pyninja.toml", `
[pyninja]
strict_mode = true
target_python = "3.12"
max_workers = 4
exclude_packages = ["six"]

[pyninja.custom_alternatives]
requests = "niquests"
`)

	config, err := configuration.Load(path)
	require.NoError(t, err)

	assert.True(t, config.StrictMode)
	assert.Equal(t, "3.12", config.TargetPython)
	assert.Equal(t, 4, config.MaxWorkers)
	assert.Equal(t, []string{"six"}, config.ExcludePackages)
	assert.Equal(t, "niquests", config.CustomAlternatives["requests"])
	assert.True(t, config.SecurityFirst)
	assert.Equal(t, "osv", config.VulnerabilityDb)
	assert.Equal(t, 30, config.Timeout)
	assert.Equal(t, path, config.Path)
}

func TestLoadYaml(t *testing.T) {
	dir := isolateEnv(t)
	path := writeFile(t, dir, ".pyninja.yaml", `
vulnerability_db: github
performance_focus: true
timeout: 5
`)

	config, err := configuration.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "github", config.VulnerabilityDb)
	assert.True(t, config.PerformanceFocus)
	assert.Equal(t, 5, config.Timeout)
	assert.True(t, config.Modernize)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := isolateEnv(t)

	yamlPath := writeFile(t, dir, "bad.yaml", "max_wrokers: 3\n")
	_, err := configuration.Load(yamlPath)
	require.ErrorIs(t, err, analysiserrors.ErrConfig)

	tomlPath := writeFile(t, dir, "bad.toml", "[pyninja]\nmax_wrokers = 3\n")
	_, err = configuration.Load(tomlPath)
	require.ErrorIs(t, err, analysiserrors.ErrConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *configuration.Config)
		key    string
	}{
		{"snyk is not supported", func(c *configuration.Config) { c.VulnerabilityDb = "snyk" }, "vulnerability_db"},
		{"python too old", func(c *configuration.Config) { c.TargetPython = "3.7" }, "target_python"},
		{"python malformed", func(c *configuration.Config) { c.TargetPython = "3" }, "target_python"},
		{"zero timeout", func(c *configuration.Config) { c.Timeout = 0 }, "timeout"},
		{"negative retries", func(c *configuration.Config) { c.MaxRetries = -1 }, "max_retries"},
		{"no workers", func(c *configuration.Config) { c.MaxWorkers = 0 }, "max_workers"},
		{"bad osv url", func(c *configuration.Config) { c.OsvUrl = "ftp://osv" }, "osv_url"},
		{"empty exclusion", func(c *configuration.Config) { c.ExcludePackages = []string{" "} }, "exclude_packages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := configuration.Defaults()
			tt.mutate(&config)

			err := config.Validate()

			var configErr *analysiserrors.ConfigError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, tt.key, configErr.Key)
		})
	}

	defaults := configuration.Defaults()
	require.NoError(t, defaults.Validate())
}

func TestValidatePythonVersion(t *testing.T) {
	assert.NoError(t, configuration.ValidatePythonVersion("3.8"))
	assert.NoError(t, configuration.ValidatePythonVersion("3.13"))
	assert.Error(t, configuration.ValidatePythonVersion("2.7"))
	assert.Error(t, configuration.ValidatePythonVersion("3.9.1"))
}

func TestLoadEnvReadsDotEnv(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, dir, ".env", "PYNINJA_GITHUB_TOKEN=ghp_test\nPYNINJA_SLACK_WEBHOOK=https://hooks.slack.com/services/T/B/X\n")
	t.Cleanup(func() {
		os.Unsetenv(configuration.GithubTokenEnv)
		os.Unsetenv(configuration.SlackWebhookEnv)
	})
	os.Unsetenv(configuration.GithubTokenEnv)
	os.Unsetenv(configuration.SlackWebhookEnv)

	config := configuration.Defaults()
	require.NoError(t, configuration.LoadEnv(&config))

	assert.Equal(t, "ghp_test", config.GithubToken)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", config.SlackWebhookUrl)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{".pyninja.toml", ".pyninja.yaml"} {
		t.Run(name, func(t *testing.T) {
			dir := isolateEnv(t)
			path := filepath.Join(dir, name)

			config := configuration.Defaults()
			config.PerformanceFocus = true
			config.TargetPython = "3.10"
			config.CustomAlternatives = map[string]string{"pytz": "zoneinfo"}

			require.NoError(t, configuration.Save(path, config))

			loaded, err := configuration.Load(path)
			require.NoError(t, err)
			assert.True(t, loaded.PerformanceFocus)
			assert.Equal(t, "3.10", loaded.TargetPython)
			assert.Equal(t, "zoneinfo", loaded.CustomAlternatives["pytz"])
		})
	}
}

func TestLoadFileLeavesEnvironmentOut(t *testing.T) {
	dir := isolateEnv(t)
	path := writeFile(t, dir, ".pyninja.toml", "[pyninja]\nstrict_mode = true\n")
	t.Setenv(configuration.SlackWebhookEnv, "https://hooks.slack.com/services/T/B/X")
	t.Setenv(configuration.CacheDirEnv, "/tmp/elsewhere")

	fromFile, err := configuration.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, fromFile.StrictMode)
	assert.Empty(t, fromFile.SlackWebhookUrl)
	assert.Equal(t, ".pyninja_cache", fromFile.CacheDir)

	effective, err := configuration.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", effective.SlackWebhookUrl)
	assert.Equal(t, "/tmp/elsewhere", effective.CacheDir)
}
