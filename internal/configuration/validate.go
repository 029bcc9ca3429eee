package configuration

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	vulnerabilitydatabases "github.com/RobsonDevCode/pyninja/internal/constants/vulnerabilityDatabases"
)

var pythonVersionPattern = regexp.MustCompile(`^\d+\.\d+$`)

const maxWorkersLimit = 64

// Validate returns a ConfigError for the first invalid value.
func (c *Config) Validate() error {
	if err := ValidatePythonVersion(c.TargetPython); err != nil {
		return analysiserrors.NewConfigError("target_python", c.TargetPython, err)
	}

	if !slices.Contains(vulnerabilitydatabases.Supported, c.VulnerabilityDb) {
		return analysiserrors.NewConfigError("vulnerability_db", c.VulnerabilityDb,
			fmt.Errorf("supported databases are %s", strings.Join(vulnerabilitydatabases.Supported, ", ")))
	}

	if c.Timeout <= 0 {
		return analysiserrors.NewConfigError("timeout", c.Timeout, errors.New("must be a positive number of seconds"))
	}

	if c.MaxRetries < 0 {
		return analysiserrors.NewConfigError("max_retries", c.MaxRetries, errors.New("must not be negative"))
	}

	if c.MaxWorkers < 1 || c.MaxWorkers > maxWorkersLimit {
		return analysiserrors.NewConfigError("max_workers", c.MaxWorkers, fmt.Errorf("must be between 1 and %d", maxWorkersLimit))
	}

	if c.CacheTtl < 0 {
		return analysiserrors.NewConfigError("cache_ttl", c.CacheTtl, errors.New("must not be negative"))
	}

	for _, pkg := range c.ExcludePackages {
		if strings.TrimSpace(pkg) == "" {
			return analysiserrors.NewConfigError("exclude_packages", pkg, errors.New("package name must not be empty"))
		}
	}

	for original := range c.CustomAlternatives {
		if strings.TrimSpace(original) == "" {
			return analysiserrors.NewConfigError("custom_alternatives", original, errors.New("package name must not be empty"))
		}
	}

	urls := []struct {
		key   string
		value string
	}{
		{"osv_url", c.OsvUrl},
		{"github_advisory_url", c.GithubAdvisoryUrl},
		{"pypi_url", c.PypiUrl},
		{"slack_webhook_url", c.SlackWebhookUrl},
	}
	for _, u := range urls {
		if u.value == "" && u.key == "slack_webhook_url" {
			continue
		}
		if err := validateUrl(u.value); err != nil {
			return analysiserrors.NewConfigError(u.key, u.value, err)
		}
	}

	return nil
}

// ValidatePythonVersion accepts "X.Y" for Python 3.8 and later.
func ValidatePythonVersion(version string) error {
	if !pythonVersionPattern.MatchString(version) {
		return errors.New("python version must be in format X.Y (e.g., 3.9)")
	}

	major, minor, _ := strings.Cut(version, ".")
	majorNum, _ := strconv.Atoi(major)
	minorNum, _ := strconv.Atoi(minor)
	if majorNum < 3 || (majorNum == 3 && minorNum < 8) {
		return errors.New("python version must be 3.8 or higher")
	}

	return nil
}

func validateUrl(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("error parsing url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url must use http or https")
	}
	if parsed.Host == "" {
		return errors.New("url must include a host")
	}
	return nil
}
