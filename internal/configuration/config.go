package configuration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	vulnerabilitydatabases "github.com/RobsonDevCode/pyninja/internal/constants/vulnerabilityDatabases"
	"gopkg.in/yaml.v3"
)

// FileNames are searched in the working directory, in order, when no path is given.
var FileNames = []string{".pyninja.yaml", ".pyninja.yml", ".pyninja.toml"}

const DefaultFileName = ".pyninja.toml"

type Config struct {
	SecurityFirst      bool              `yaml:"security_first" toml:"security_first"`
	StrictMode         bool              `yaml:"strict_mode" toml:"strict_mode"`
	VulnerabilityDb    string            `yaml:"vulnerability_db" toml:"vulnerability_db"`
	Modernize          bool              `yaml:"modernize" toml:"modernize"`
	PerformanceFocus   bool              `yaml:"performance_focus" toml:"performance_focus"`
	AutoFix            bool              `yaml:"auto_fix" toml:"auto_fix"`
	DryRunDefault      bool              `yaml:"dry_run_default" toml:"dry_run_default"`
	TargetPython       string            `yaml:"target_python" toml:"target_python"`
	Timeout            int               `yaml:"timeout" toml:"timeout"`
	MaxRetries         int               `yaml:"max_retries" toml:"max_retries"`
	MaxWorkers         int               `yaml:"max_workers" toml:"max_workers"`
	ExportReports      bool              `yaml:"export_reports" toml:"export_reports"`
	ExcludePackages    []string          `yaml:"exclude_packages" toml:"exclude_packages"`
	CustomAlternatives map[string]string `yaml:"custom_alternatives" toml:"custom_alternatives"`
	CacheDir           string            `yaml:"cache_dir" toml:"cache_dir"`
	CacheTtl           int               `yaml:"cache_ttl" toml:"cache_ttl"`
	OsvUrl             string            `yaml:"osv_url" toml:"osv_url"`
	GithubAdvisoryUrl  string            `yaml:"github_advisory_url" toml:"github_advisory_url"`
	PypiUrl            string            `yaml:"pypi_url" toml:"pypi_url"`
	SlackWebhookUrl    string            `yaml:"slack_webhook_url" toml:"slack_webhook_url"`
	PythonExecutable   string            `yaml:"python_executable" toml:"python_executable"`

	// GithubToken only comes from the environment.
	GithubToken string `yaml:"-" toml:"-"`
	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// tomlFile is the layout of .pyninja.toml, settings live under [pyninja].
type tomlFile struct {
	Pyninja Config `toml:"pyninja"`
}

func Defaults() Config {
	return Config{
		SecurityFirst:      true,
		VulnerabilityDb:    vulnerabilitydatabases.Osv,
		Modernize:          true,
		TargetPython:       "3.11",
		Timeout:            30,
		MaxRetries:         3,
		MaxWorkers:         10,
		ExcludePackages:    []string{},
		CustomAlternatives: map[string]string{},
		CacheDir:           ".pyninja_cache",
		CacheTtl:           3600,
		OsvUrl:             vulnerabilitydatabases.OsvUrl,
		GithubAdvisoryUrl:  vulnerabilitydatabases.GithubAdvisoryUrl,
		PypiUrl:            vulnerabilitydatabases.PypiUrl,
		PythonExecutable:   "python3",
	}
}

// Load reads the configuration at path. With an empty path the working directory is
// searched for FileNames and defaults are returned when none exist.
func Load(path string) (*Config, error) {
	config, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := LoadEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile reads defaults and the file only, leaving the environment out.
// Use it when the result is written back with Save.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		found, err := find(".")
		if err != nil {
			return nil, err
		}
		path = found
	}

	config := Defaults()
	if path == "" {
		return &config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, analysiserrors.NewConfigError("", path, fmt.Errorf("reading %s: %w", path, err))
	}

	if err := decode(path, data, &config); err != nil {
		return nil, err
	}
	config.Path = path

	return &config, nil
}

func find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", analysiserrors.NewConfigError("", path, fmt.Errorf("reading %s: %w", path, err))
		}
		return path, nil
	}
	return "", nil
}

func decode(path string, data []byte, config *Config) error {
	if isToml(path) {
		file := tomlFile{Pyninja: *config}
		metadata, err := toml.Decode(string(data), &file)
		if err != nil {
			return analysiserrors.NewConfigError("", path, fmt.Errorf("parsing %s: %w", path, err))
		}

		if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
			return analysiserrors.NewConfigError(undecoded[0].String(), path, errors.New("unknown configuration key"))
		}

		*config = file.Pyninja
		return nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return analysiserrors.NewConfigError("", path, fmt.Errorf("parsing %s: %w", path, err))
	}

	return nil
}

func isToml(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Save writes the configuration as TOML or YAML depending on the file extension.
func Save(path string, config Config) error {
	var buffer bytes.Buffer
	if isToml(path) {
		if err := toml.NewEncoder(&buffer).Encode(tomlFile{Pyninja: config}); err != nil {
			return fmt.Errorf("error encoding configuration: %w", err)
		}
	} else {
		encoder := yaml.NewEncoder(&buffer)
		encoder.SetIndent(2)
		if err := encoder.Encode(config); err != nil {
			return fmt.Errorf("error encoding configuration: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("error encoding configuration: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s, %w", dir, err)
		}
	}

	if err := os.WriteFile(path, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing configuration to %s: %w", path, err)
	}

	return nil
}

func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c *Config) CacheTtlDuration() time.Duration {
	return time.Duration(c.CacheTtl) * time.Second
}

type Setting struct {
	Key   string
	Value string
}

// Settings lists the effective values in file order, for display.
func (c *Config) Settings() []Setting {
	return []Setting{
		{"security_first", fmt.Sprint(c.SecurityFirst)},
		{"strict_mode", fmt.Sprint(c.StrictMode)},
		{"vulnerability_db", c.VulnerabilityDb},
		{"modernize", fmt.Sprint(c.Modernize)},
		{"performance_focus", fmt.Sprint(c.PerformanceFocus)},
		{"auto_fix", fmt.Sprint(c.AutoFix)},
		{"dry_run_default", fmt.Sprint(c.DryRunDefault)},
		{"target_python", c.TargetPython},
		{"timeout", fmt.Sprint(c.Timeout)},
		{"max_retries", fmt.Sprint(c.MaxRetries)},
		{"max_workers", fmt.Sprint(c.MaxWorkers)},
		{"export_reports", fmt.Sprint(c.ExportReports)},
		{"exclude_packages", strings.Join(c.ExcludePackages, ", ")},
		{"custom_alternatives", fmt.Sprint(len(c.CustomAlternatives))},
		{"cache_dir", c.CacheDir},
		{"cache_ttl", fmt.Sprint(c.CacheTtl)},
		{"python_executable", c.PythonExecutable},
	}
}
