package modernizationadvisorservice

import (
	"github.com/RobsonDevCode/pyninja/internal/configuration"
	"github.com/RobsonDevCode/pyninja/internal/constants/rationale"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
)

type ModernizationAdvisorService interface {
	Advise(requirement scannermodels.PackageRequirement) *scannermodels.Alternative
}

type AdvisorOptions struct {
	Modernize        bool
	PerformanceFocus bool
	ExcludePackages  []string
	// CustomAlternatives maps a package name to its replacement, "" meaning remove.
	CustomAlternatives map[string]string
}

func OptionsFromConfig(config *configuration.Config) AdvisorOptions {
	return AdvisorOptions{
		Modernize:          config.Modernize,
		PerformanceFocus:   config.PerformanceFocus,
		ExcludePackages:    config.ExcludePackages,
		CustomAlternatives: config.CustomAlternatives,
	}
}

// ModernizationAdvisor is immutable after construction and safe for concurrent use.
type ModernizationAdvisor struct {
	modernize   bool
	performance bool
	excluded    map[string]bool
	overrides   map[string]string
}

func NewModernizationAdvisor(options AdvisorOptions) *ModernizationAdvisor {
	excluded := make(map[string]bool, len(options.ExcludePackages))
	for _, name := range options.ExcludePackages {
		excluded[extensions.NormalizeName(name)] = true
	}

	overrides := make(map[string]string, len(options.CustomAlternatives))
	for name, replacement := range options.CustomAlternatives {
		overrides[extensions.NormalizeName(name)] = replacement
	}

	return &ModernizationAdvisor{
		modernize:   options.Modernize,
		performance: options.PerformanceFocus,
		excluded:    excluded,
		overrides:   overrides,
	}
}

// Advise returns at most one alternative. Exclusions win over everything, user
// overrides win over the built-in table.
func (a *ModernizationAdvisor) Advise(requirement scannermodels.PackageRequirement) *scannermodels.Alternative {
	name := requirement.NormalizedName
	if name == "" {
		name = extensions.NormalizeName(requirement.Name)
	}

	if a.excluded[name] {
		return nil
	}

	if replacement, ok := a.overrides[name]; ok {
		return &scannermodels.Alternative{
			Original:     requirement.Name,
			Replacement:  replacement,
			Rationale:    rationale.Modernization,
			Note:         "configured in custom_alternatives",
			UserOverride: true,
		}
	}

	if !a.modernize {
		return nil
	}

	builtin, ok := builtinAlternatives[name]
	if !ok {
		return nil
	}

	if builtin.Rationale == rationale.Performance && !a.performance {
		return nil
	}

	// same package under its canonical spelling
	if extensions.NormalizeName(builtin.Replacement) == name {
		return nil
	}

	alternative := builtin
	alternative.Original = requirement.Name
	return &alternative
}
