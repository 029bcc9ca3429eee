package main

import (
	"log/slog"
	"os"

	"github.com/RobsonDevCode/pyninja/cmd"
	cache "github.com/RobsonDevCode/pyninja/internal/caching"
	"github.com/RobsonDevCode/pyninja/internal/clients"
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	scanner "github.com/RobsonDevCode/pyninja/internal/scanner"
	manifestreaderservice "github.com/RobsonDevCode/pyninja/internal/services/manifestReaderService"
	modernizationadvisorservice "github.com/RobsonDevCode/pyninja/internal/services/modernizationAdvisorService"
	notificationservice "github.com/RobsonDevCode/pyninja/internal/services/notificationService"
	packageupdateservice "github.com/RobsonDevCode/pyninja/internal/services/packageUpdateService"
	reportaggregatorservice "github.com/RobsonDevCode/pyninja/internal/services/reportAggregatorService"
	runnerservice "github.com/RobsonDevCode/pyninja/internal/services/runnerService"
	scorerservice "github.com/RobsonDevCode/pyninja/internal/services/scorerService"
	vulnerabilitycheckerservice "github.com/RobsonDevCode/pyninja/internal/services/vulnerabilityCheckerService"
	pipcommands "github.com/RobsonDevCode/pyninja/internal/thirdPartyCommands/pipCommands"
)

func main() {
	// cant DI directly into the command so we use a setter
	cmd.SetDependencyBuilder(buildDependencies)
	os.Exit(cmd.Execute())
}

func buildDependencies(config *configuration.Config, focus cmd.Focus, logger *slog.Logger) (*cmd.Dependencies, error) {
	lookupCache := cache.NewCache(config.CacheTtlDuration())
	diskCache := cache.NewDiskCache(config.CacheDir, config.CacheTtlDuration())

	var checker vulnerabilitycheckerservice.VulnerabilityCheckerService
	if focus != cmd.FocusModernize {
		vulnerabilityClient, err := clients.NewVulnerabilityClient(config, logger)
		if err != nil {
			return nil, err
		}
		checker = vulnerabilitycheckerservice.NewVulnerabilityChecker(vulnerabilityClient, lookupCache, diskCache, config.StrictMode, logger)
	}

	installer := pipcommands.NewPipExecutor(config.PythonExecutable)
	if focus == cmd.FocusUpdate {
		pypiClient, err := clients.NewPypiClient(config, logger)
		if err != nil {
			return nil, err
		}

		return &cmd.Dependencies{
			DiskCache: diskCache,
			Installer: installer,
			Updater:   packageupdateservice.NewPackageUpdater(pypiClient, checker, installer, logger),
		}, nil
	}

	var advisor modernizationadvisorservice.ModernizationAdvisorService
	var scorer scorerservice.ScorerService
	if focus != cmd.FocusSecurity {
		advisor = modernizationadvisorservice.NewModernizationAdvisor(modernizationadvisorservice.OptionsFromConfig(config))

		pypiClient, err := clients.NewPypiClient(config, logger)
		if err != nil {
			return nil, err
		}
		scorer = scorerservice.NewScorer(pypiClient, lookupCache, diskCache, config.TargetPython, config.StrictMode, logger)
	}

	packageScanner := scanner.NewScanner(checker, advisor, scorer, config.MaxWorkers, logger)
	runner := runnerservice.NewRunner(manifestreaderservice.NewManifestReader(), packageScanner, reportaggregatorservice.NewReportAggregator(), logger)

	deps := &cmd.Dependencies{
		Runner:    runner,
		DiskCache: diskCache,
		Installer: installer,
	}

	if config.SlackWebhookUrl != "" {
		deps.Notifier = notificationservice.NewSlackNotifier(config.SlackWebhookUrl)
	}

	return deps, nil
}
