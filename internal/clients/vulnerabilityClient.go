package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RobsonDevCode/pyninja/internal/configuration"
	vulnerabilitydatabases "github.com/RobsonDevCode/pyninja/internal/constants/vulnerabilityDatabases"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
)

// VulnerabilityClient returns every known record for a package, unfiltered by version.
type VulnerabilityClient interface {
	Name() string
	GetVulnerabilities(ctx context.Context, packageName string) ([]scannermodels.VulnerabilityRecord, error)
}

// NewVulnerabilityClient builds the client for the configured database.
func NewVulnerabilityClient(config *configuration.Config, logger *slog.Logger) (VulnerabilityClient, error) {
	switch config.VulnerabilityDb {
	case vulnerabilitydatabases.Osv:
		return NewOsvClient(config, logger)
	case vulnerabilitydatabases.Github:
		return NewGithubAdvisoryClient(config, logger)
	default:
		return nil, fmt.Errorf("unsupported vulnerability database %q", config.VulnerabilityDb)
	}
}
