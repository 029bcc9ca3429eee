package vulnerabilitycheckerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	cache "github.com/RobsonDevCode/pyninja/internal/caching"
	"github.com/RobsonDevCode/pyninja/internal/clients"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
)

type VulnerabilityCheckerService interface {
	// CheckPackage returns the records affecting requirement and any warnings raised
	// while looking them up. An error is only returned in strict mode.
	CheckPackage(ctx context.Context, requirement scannermodels.PackageRequirement) ([]scannermodels.VulnerabilityRecord, []string, error)
}

type VulnerabilityChecker struct {
	client    clients.VulnerabilityClient
	cache     *cache.Cache
	diskCache *cache.DiskCache
	strict    bool
	logger    *slog.Logger
}

func NewVulnerabilityChecker(client clients.VulnerabilityClient, lookupCache *cache.Cache, diskCache *cache.DiskCache, strict bool, logger *slog.Logger) *VulnerabilityChecker {
	return &VulnerabilityChecker{
		client:    client,
		cache:     lookupCache,
		diskCache: diskCache,
		strict:    strict,
		logger:    logger,
	}
}

func (v *VulnerabilityChecker) CheckPackage(ctx context.Context, requirement scannermodels.PackageRequirement) ([]scannermodels.VulnerabilityRecord, []string, error) {
	name := requirement.NormalizedName
	if name == "" {
		name = extensions.NormalizeName(requirement.Name)
	}

	records, err := v.lookup(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return nil, []string{fmt.Sprintf("vulnerability lookup for %s cancelled", requirement.Name)}, nil
		}

		if v.strict {
			return nil, nil, analysiserrors.NewDataUnavailable(v.client.Name(), requirement.Name, err)
		}

		v.logger.Warn("vulnerability lookup failed", "package", requirement.Name, "database", v.client.Name(), "error", err)
		return nil, []string{fmt.Sprintf("vulnerability data unavailable for %s from %s: %v", requirement.Name, v.client.Name(), err)}, nil
	}

	constraint, err := versioning.ParseConstraint(requirement.Constraint)
	if err != nil {
		// the parser validated the constraint already, treat anything else as unconstrained
		constraint = versioning.Constraint{}
	}

	return FilterAffecting(constraint, records), nil, nil
}

// lookup returns every record for name, shared across concurrent callers and cached for the run.
func (v *VulnerabilityChecker) lookup(ctx context.Context, name string) ([]scannermodels.VulnerabilityRecord, error) {
	key := name + "|" + v.client.Name()

	result, err := v.cache.GetOrCreate(key, func(entry *cache.CacheEntry) (interface{}, error) {
		var stored []scannermodels.VulnerabilityRecord
		if v.diskCache.Get(key, &stored) {
			v.logger.Debug("vulnerability cache hit", "key", key)
			return stored, nil
		}

		records, err := v.client.GetVulnerabilities(ctx, name)
		if errors.Is(err, clients.ErrPackageNotFound) {
			records, err = []scannermodels.VulnerabilityRecord{}, nil
		}
		if err != nil {
			return nil, err
		}

		if err := v.diskCache.Set(key, records); err != nil {
			v.logger.Debug("failed to write vulnerability cache", "key", key, "error", err)
		}

		return records, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]scannermodels.VulnerabilityRecord), nil
}

// FilterAffecting keeps the records whose affected versions intersect constraint.
// Records without any range information are kept.
func FilterAffecting(constraint versioning.Constraint, records []scannermodels.VulnerabilityRecord) []scannermodels.VulnerabilityRecord {
	affecting := make([]scannermodels.VulnerabilityRecord, 0, len(records))
	for _, record := range records {
		if Affects(constraint, record) {
			affecting = append(affecting, record)
		}
	}
	return affecting
}

func Affects(constraint versioning.Constraint, record scannermodels.VulnerabilityRecord) bool {
	if len(record.Ranges) == 0 && len(record.AffectedVersions) == 0 {
		return true
	}

	if constraint.IsAny() {
		return true
	}

	if constraint.Overlaps(record.Ranges) {
		return true
	}

	for _, version := range record.AffectedVersions {
		if constraint.Satisfies(version) {
			return true
		}
	}

	return false
}
