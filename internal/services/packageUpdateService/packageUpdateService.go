package packageupdateservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/RobsonDevCode/pyninja/internal/clients"
	"github.com/RobsonDevCode/pyninja/internal/clients/models"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	vulnerabilitycheckerservice "github.com/RobsonDevCode/pyninja/internal/services/vulnerabilityCheckerService"
	pipcommands "github.com/RobsonDevCode/pyninja/internal/thirdPartyCommands/pipCommands"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
)

type PackageUpdateService interface {
	UpdatePackage(ctx context.Context, name string, options UpdateOptions) UpdateResult
}

type UpdateOptions struct {
	// Latest targets the newest release even when it is a pre-release.
	Latest        bool
	SecurityCheck bool
	DryRun        bool
}

type UpdateResult struct {
	Package         string
	OldVersion      string
	NewVersion      string
	Updated         bool
	Skipped         string
	Vulnerabilities []scannermodels.VulnerabilityRecord
	Warnings        []string
	Err             error
}

type PackageUpdater struct {
	pypi    clients.PypiClientService
	checker vulnerabilitycheckerservice.VulnerabilityCheckerService
	pip     pipcommands.PipExecutor
	logger  *slog.Logger
}

// NewPackageUpdater builds an updater. A nil checker skips the security check.
func NewPackageUpdater(pypi clients.PypiClientService, checker vulnerabilitycheckerservice.VulnerabilityCheckerService, pip pipcommands.PipExecutor, logger *slog.Logger) *PackageUpdater {
	return &PackageUpdater{
		pypi:    pypi,
		checker: checker,
		pip:     pip,
		logger:  logger,
	}
}

// UpdatePackage installs the target release of name. The target is refused when it
// has known vulnerabilities and the security check is on.
func (u *PackageUpdater) UpdatePackage(ctx context.Context, name string, options UpdateOptions) UpdateResult {
	result := UpdateResult{Package: name}
	normalized := extensions.NormalizeName(name)

	installed, err := u.pip.InstalledVersion(ctx, name)
	if err != nil {
		result.Err = fmt.Errorf("error reading installed version of %s: %w", name, err)
		return result
	}
	result.OldVersion = installed

	metadata, err := u.pypi.GetPackageMetadata(ctx, normalized)
	if err != nil {
		result.Err = fmt.Errorf("error fetching %s from pypi: %w", name, err)
		return result
	}

	target := targetVersion(metadata, options.Latest)
	if target == "" {
		result.Err = fmt.Errorf("no installable release of %s found", name)
		return result
	}
	result.NewVersion = target

	if installed != "" && versioning.Compare(installed, target) >= 0 {
		result.Skipped = "already up to date"
		return result
	}

	if options.SecurityCheck && u.checker != nil {
		requirement := scannermodels.PackageRequirement{Name: name, NormalizedName: normalized, Constraint: "==" + target}
		records, warnings, err := u.checker.CheckPackage(ctx, requirement)
		if err != nil {
			result.Err = fmt.Errorf("error checking %s %s for vulnerabilities: %w", name, target, err)
			return result
		}
		result.Warnings = warnings

		if len(records) > 0 {
			result.Vulnerabilities = records
			result.Skipped = fmt.Sprintf("%s has %d known vulnerabilities", target, len(records))
			return result
		}
	}

	if options.DryRun {
		result.Skipped = "dry run"
		return result
	}

	u.logger.Debug("installing package", "package", name, "from", installed, "to", target)
	if err := u.pip.InstallPackage(ctx, name, target); err != nil {
		result.Err = err
		return result
	}

	result.Updated = true
	return result
}

func targetVersion(metadata *models.PackageMetadata, latest bool) string {
	var released []string
	for _, version := range metadata.Versions {
		if versioning.IsValid(version) && !slices.Contains(metadata.YankedVersions, version) {
			released = append(released, version)
		}
	}

	if !latest {
		return versioning.LatestStable(released)
	}

	var newest string
	for _, version := range released {
		if newest == "" || versioning.Compare(version, newest) > 0 {
			newest = version
		}
	}
	return newest
}
