package scorerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	cache "github.com/RobsonDevCode/pyninja/internal/caching"
	"github.com/RobsonDevCode/pyninja/internal/clients"
	"github.com/RobsonDevCode/pyninja/internal/clients/models"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
)

const metadataSource = "pypi"

// deprecationScanLength limits how much of a long description is searched,
// release notes further down mention deprecations routinely.
const deprecationScanLength = 500

type ScorerService interface {
	// Score returns the package scores and release information. Warnings are returned
	// for missing metadata, an error only in strict mode.
	Score(ctx context.Context, requirement scannermodels.PackageRequirement) (PackageScore, []string, error)
}

type PackageScore struct {
	CompatibilityScore float64
	CommunityScore     float64
	CurrentVersion     string
	LatestVersion      string
	LatestStable       string
	UpdateAvailable    bool
	Deprecated         bool
	DeprecationMessage string
}

// Apply copies the score onto assessment.
func (s PackageScore) Apply(assessment *scannermodels.PackageAssessment) {
	assessment.CompatibilityScore = s.CompatibilityScore
	assessment.CommunityScore = s.CommunityScore
	assessment.CurrentVersion = s.CurrentVersion
	assessment.LatestVersion = s.LatestVersion
	assessment.LatestStable = s.LatestStable
	assessment.UpdateAvailable = s.UpdateAvailable
	assessment.Deprecated = s.Deprecated
	assessment.DeprecationMessage = s.DeprecationMessage
}

type Scorer struct {
	client       clients.PypiClientService
	cache        *cache.Cache
	diskCache    *cache.DiskCache
	targetPython string
	strict       bool
	logger       *slog.Logger
	now          func() time.Time
}

func NewScorer(client clients.PypiClientService, lookupCache *cache.Cache, diskCache *cache.DiskCache, targetPython string, strict bool, logger *slog.Logger) *Scorer {
	return &Scorer{
		client:       client,
		cache:        lookupCache,
		diskCache:    diskCache,
		targetPython: targetPython,
		strict:       strict,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Scorer) Score(ctx context.Context, requirement scannermodels.PackageRequirement) (PackageScore, []string, error) {
	constraint, err := versioning.ParseConstraint(requirement.Constraint)
	if err != nil {
		constraint = versioning.Constraint{}
	}

	score := PackageScore{CompatibilityScore: neutral, CommunityScore: neutral}
	if current, ok := constraint.ReferenceVersion(); ok {
		score.CurrentVersion = current
	}

	metadata, err := s.metadata(ctx, requirement)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return score, []string{fmt.Sprintf("metadata lookup for %s cancelled", requirement.Name)}, nil
	case errors.Is(err, clients.ErrPackageNotFound):
		return score, []string{fmt.Sprintf("%s was not found on PyPI, scores are neutral", requirement.Name)}, nil
	case s.strict:
		return score, nil, analysiserrors.NewDataUnavailable(metadataSource, requirement.Name, err)
	default:
		s.logger.Warn("metadata lookup failed", "package", requirement.Name, "error", err)
		return score, []string{fmt.Sprintf("package metadata unavailable for %s: %v", requirement.Name, err)}, nil
	}

	score.CompatibilityScore = compatibilityScore(metadata, s.targetPython)
	score.CommunityScore = communityScore(metadata, s.now())

	released := releasedVersions(metadata)
	score.LatestStable = versioning.LatestStable(released)
	for _, version := range released {
		if versioning.IsValid(version) && (score.LatestVersion == "" || versioning.Compare(version, score.LatestVersion) > 0) {
			score.LatestVersion = version
		}
	}

	if score.CurrentVersion != "" && score.LatestStable != "" {
		score.UpdateAvailable = versioning.Compare(score.CurrentVersion, score.LatestStable) < 0
	}

	pinned, _ := constraint.Pinned()
	score.Deprecated, score.DeprecationMessage = deprecation(metadata, pinned)

	return score, nil, nil
}

func (s *Scorer) metadata(ctx context.Context, requirement scannermodels.PackageRequirement) (*models.PackageMetadata, error) {
	name := requirement.NormalizedName
	if name == "" {
		name = extensions.NormalizeName(requirement.Name)
	}
	key := metadataSource + "|" + name

	result, err := s.cache.GetOrCreate(key, func(entry *cache.CacheEntry) (interface{}, error) {
		var stored models.PackageMetadata
		if s.diskCache.Get(key, &stored) {
			s.logger.Debug("metadata cache hit", "key", key)
			return &stored, nil
		}

		metadata, err := s.client.GetPackageMetadata(ctx, name)
		if err != nil {
			return nil, err
		}

		if err := s.diskCache.Set(key, metadata); err != nil {
			s.logger.Debug("failed to write metadata cache", "key", key, "error", err)
		}
		return metadata, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.PackageMetadata), nil
}

func releasedVersions(metadata *models.PackageMetadata) []string {
	released := make([]string, 0, len(metadata.Versions))
	for _, version := range metadata.Versions {
		if !slices.Contains(metadata.YankedVersions, version) {
			released = append(released, version)
		}
	}
	return released
}

func deprecation(metadata *models.PackageMetadata, pinned string) (bool, string) {
	if slices.Contains(metadata.Classifiers, inactiveClassifier) {
		return true, "marked inactive on PyPI"
	}

	if pinned != "" && slices.Contains(metadata.YankedVersions, pinned) {
		return true, fmt.Sprintf("pinned release %s was yanked", pinned)
	}

	description := metadata.Description
	if len(description) > deprecationScanLength {
		description = description[:deprecationScanLength]
	}

	if strings.Contains(strings.ToLower(metadata.Summary+" "+description), "deprecated") {
		return true, "project description mentions deprecation"
	}

	return false, ""
}
