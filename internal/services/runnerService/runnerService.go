package runnerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	scannerService "github.com/RobsonDevCode/pyninja/internal/scanner"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	manifestreaderservice "github.com/RobsonDevCode/pyninja/internal/services/manifestReaderService"
	reportaggregatorservice "github.com/RobsonDevCode/pyninja/internal/services/reportAggregatorService"
)

type State int

const (
	Collecting State = iota
	Aggregating
	Reporting
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Aggregating:
		return "aggregating"
	case Reporting:
		return "reporting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ReportSink renders or delivers a finished report.
type ReportSink interface {
	Name() string
	Report(ctx context.Context, report scannermodels.RunReport) error
}

type RunnerService interface {
	Run(ctx context.Context, options RunOptions, sinks ...ReportSink) (scannermodels.RunReport, error)
}

type RunOptions struct {
	ManifestPath    string
	Format          string
	TargetPython    string
	VulnerabilityDb string
	DryRun          bool
}

type Runner struct {
	manifestReader manifestreaderservice.ManifestReaderService
	scanner        scannerService.ScannerService
	aggregator     reportaggregatorservice.ReportAggregatorService
	logger         *slog.Logger

	// OnStateChange is called on every transition, after the state is entered.
	OnStateChange func(from State, to State)
	state         State
}

func NewRunner(manifestReader manifestreaderservice.ManifestReaderService,
	scanner scannerService.ScannerService,
	aggregator reportaggregatorservice.ReportAggregatorService,
	logger *slog.Logger) *Runner {
	return &Runner{
		manifestReader: manifestReader,
		scanner:        scanner,
		aggregator:     aggregator,
		logger:         logger,
	}
}

// Run moves strictly through Collecting, Aggregating and Reporting. A fatal error in
// Collecting ends the run before anything is reported. Sink failures are joined and
// returned after every sink has run.
func (r *Runner) Run(ctx context.Context, options RunOptions, sinks ...ReportSink) (scannermodels.RunReport, error) {
	r.state = Collecting
	r.logger.Debug("run started", "state", r.state, "manifest", options.ManifestPath)

	manifest, err := r.manifestReader.ReadManifest(options.ManifestPath, options.Format)
	if err != nil {
		return scannermodels.RunReport{}, err
	}

	scan, err := r.scanner.ScanRequirements(ctx, manifest.Requirements)
	if err != nil {
		return scannermodels.RunReport{}, fmt.Errorf("error analysing %s: %w", manifest.Path, err)
	}

	r.transition(Aggregating)

	report := r.aggregator.Aggregate(scan.Assessments, reportaggregatorservice.ReportOptions{
		ManifestPath:     manifest.Path,
		ManifestFormat:   manifest.Format,
		TargetPython:     options.TargetPython,
		VulnerabilityDb:  options.VulnerabilityDb,
		DryRun:           options.DryRun,
		Partial:          scan.Partial,
		ManifestWarnings: manifest.Warnings,
	})

	r.transition(Reporting)

	var sinkErrors []error
	for _, sink := range sinks {
		if err := sink.Report(ctx, report); err != nil {
			r.logger.Warn("report output failed", "output", sink.Name(), "error", err)
			sinkErrors = append(sinkErrors, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}

	return report, errors.Join(sinkErrors...)
}

func (r *Runner) State() State {
	return r.state
}

func (r *Runner) transition(to State) {
	from := r.state
	r.state = to
	r.logger.Debug("run state changed", "from", from, "to", to)

	if r.OnStateChange != nil {
		r.OnStateChange(from, to)
	}
}
