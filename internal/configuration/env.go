package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	"github.com/joho/godotenv"
)

const (
	GithubTokenEnv  = "PYNINJA_GITHUB_TOKEN"
	SlackWebhookEnv = "PYNINJA_SLACK_WEBHOOK"
	CacheDirEnv     = "PYNINJA_CACHE_DIR"
)

// EnvFile is loaded when present. Variables already set in the process win.
var EnvFile = ".env"

// LoadEnv applies secrets and overrides from the environment.
func LoadEnv(config *Config) error {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return analysiserrors.NewConfigError("", EnvFile, fmt.Errorf("reading %s: %w", EnvFile, err))
	}

	if token := os.Getenv(GithubTokenEnv); token != "" {
		config.GithubToken = token
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.GithubToken = token
	}

	if webhook := os.Getenv(SlackWebhookEnv); webhook != "" {
		config.SlackWebhookUrl = webhook
	}

	if dir := os.Getenv(CacheDirEnv); dir != "" {
		config.CacheDir = dir
	}

	return nil
}
