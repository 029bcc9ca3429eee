package scannerService

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	modernizationadvisorservice "github.com/RobsonDevCode/pyninja/internal/services/modernizationAdvisorService"
	scorerservice "github.com/RobsonDevCode/pyninja/internal/services/scorerService"
	vulnerabilitycheckerservice "github.com/RobsonDevCode/pyninja/internal/services/vulnerabilityCheckerService"
	"golang.org/x/sync/errgroup"
)

const DefaultMaxWorkers = 10

type ScannerService interface {
	ScanRequirements(ctx context.Context, requirements []scannermodels.PackageRequirement) (ScanResult, error)
}

type ScanResult struct {
	// Assessments has one entry per requirement, in manifest order.
	Assessments []scannermodels.PackageAssessment
	// Partial is set when the run was cancelled before every package finished.
	Partial bool
}

// Scanner assesses packages on a bounded pool. A nil checker, advisor or scorer
// skips that part of the assessment.
type Scanner struct {
	checker    vulnerabilitycheckerservice.VulnerabilityCheckerService
	advisor    modernizationadvisorservice.ModernizationAdvisorService
	scorer     scorerservice.ScorerService
	maxWorkers int
	logger     *slog.Logger
}

func NewScanner(checker vulnerabilitycheckerservice.VulnerabilityCheckerService,
	advisor modernizationadvisorservice.ModernizationAdvisorService,
	scorer scorerservice.ScorerService,
	maxWorkers int,
	logger *slog.Logger) *Scanner {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}

	return &Scanner{
		checker:    checker,
		advisor:    advisor,
		scorer:     scorer,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// ScanRequirements returns an error only when an assessment fails fatally. Cancelling
// ctx stops new packages from starting; those are reported as cancelled.
func (s *Scanner) ScanRequirements(ctx context.Context, requirements []scannermodels.PackageRequirement) (ScanResult, error) {
	total := len(requirements)
	scans := make(chan scannermodels.ConcurrentScanResult, s.maxWorkers)

	type collected struct {
		assessments []*scannermodels.PackageAssessment
		failed      []error
	}
	done := make(chan collected, 1)
	go func() {
		assessments, failed := extensions.CollectAssessments(scans, total)
		done <- collected{assessments: assessments, failed: failed}
	}()

	group, gCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxWorkers)

	for i, requirement := range requirements {
		if gCtx.Err() != nil {
			break
		}

		i, requirement := i, requirement
		group.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil

			default:
				assessment, err := s.assess(gCtx, requirement)
				scans <- scannermodels.ConcurrentScanResult{
					Index:      i,
					Assessment: assessment,
					Err:        err,
				}
				return err
			}
		})
	}

	groupErr := group.Wait()
	close(scans)
	result := <-done

	if groupErr != nil {
		return ScanResult{}, groupErr
	}

	if len(result.failed) > 0 {
		return ScanResult{}, result.failed[0]
	}

	scan := ScanResult{Assessments: make([]scannermodels.PackageAssessment, total)}
	for i, assessment := range result.assessments {
		if assessment == nil {
			s.logger.Debug("package never started", "package", requirements[i].Name)
			assessment = cancelledAssessment(requirements[i])
		}

		if assessment.Cancelled {
			scan.Partial = true
		}
		scan.Assessments[i] = *assessment
	}

	return scan, nil
}

func (s *Scanner) assess(ctx context.Context, requirement scannermodels.PackageRequirement) (*scannermodels.PackageAssessment, error) {
	assessment := &scannermodels.PackageAssessment{
		Requirement:        requirement,
		Vulnerabilities:    []scannermodels.VulnerabilityRecord{},
		CompatibilityScore: 0.5,
		CommunityScore:     0.5,
	}

	if s.advisor != nil {
		assessment.Alternative = s.advisor.Advise(requirement)
	}

	if s.checker != nil {
		records, warnings, err := s.checker.CheckPackage(ctx, requirement)
		if err != nil {
			return nil, fmt.Errorf("error checking vulnerabilities for %s: %w", requirement.Name, err)
		}

		assessment.Vulnerabilities = append(assessment.Vulnerabilities, records...)
		for _, warning := range warnings {
			assessment.AddWarning(warning)
		}
	}

	if s.scorer != nil {
		score, warnings, err := s.scorer.Score(ctx, requirement)
		if err != nil {
			return nil, fmt.Errorf("error scoring %s: %w", requirement.Name, err)
		}

		score.Apply(assessment)
		assessment.Scored = true
		for _, warning := range warnings {
			assessment.AddWarning(warning)
		}
	}

	if ctx.Err() != nil {
		assessment.Cancelled = true
	}

	s.logger.Debug("package assessed", "package", requirement.Name, "vulnerabilities", len(assessment.Vulnerabilities))
	return assessment, nil
}

func cancelledAssessment(requirement scannermodels.PackageRequirement) *scannermodels.PackageAssessment {
	assessment := &scannermodels.PackageAssessment{
		Requirement:        requirement,
		Vulnerabilities:    []scannermodels.VulnerabilityRecord{},
		CompatibilityScore: 0.5,
		CommunityScore:     0.5,
		Cancelled:          true,
	}
	assessment.AddWarning(fmt.Sprintf("analysis of %s cancelled", requirement.Name))
	return assessment
}
