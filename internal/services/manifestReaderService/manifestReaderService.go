package manifestreaderservice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	analysiserrors "github.com/RobsonDevCode/pyninja/internal/analysisErrors"
	manifestformats "github.com/RobsonDevCode/pyninja/internal/constants/manifestFormats"
	"github.com/RobsonDevCode/pyninja/internal/extensions"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
)

type ManifestReaderService interface {
	ReadManifest(path string, format string) (scannermodels.Manifest, error)
	ResolvePath(path string) (string, error)
}

type parseResult struct {
	requirements []scannermodels.PackageRequirement
	warnings     []string
}

type parser func(path string, content []byte) (parseResult, error)

type ManifestReader struct {
	parsers map[string]parser
}

func NewManifestReader() *ManifestReader {
	return &ManifestReader{
		parsers: map[string]parser{
			manifestformats.Requirements: parseRequirements,
			manifestformats.Pyproject:    parsePyproject,
			manifestformats.Pipfile:      parsePipfile,
			manifestformats.Lockfile:     parseLockfile,
		},
	}
}

// ResolvePath turns an empty path or a directory into the first well-known manifest in it.
func (r *ManifestReader) ResolvePath(path string) (string, error) {
	if path == "" {
		path = "."
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", analysiserrors.NewParseError(path, "", 0, fmt.Errorf("error reading manifest: %w", err))
	}

	if !info.IsDir() {
		return path, nil
	}

	for _, wellKnown := range manifestformats.WellKnownFiles {
		candidate := filepath.Join(path, wellKnown.FileName)
		if candidateInfo, err := os.Stat(candidate); err == nil && !candidateInfo.IsDir() {
			return candidate, nil
		}
	}

	names := make([]string, 0, len(manifestformats.WellKnownFiles))
	for _, wellKnown := range manifestformats.WellKnownFiles {
		names = append(names, wellKnown.FileName)
	}

	return "", analysiserrors.NewParseError(path, "", 0,
		fmt.Errorf("no manifest found, looked for %s", strings.Join(names, ", ")))
}

// ReadManifest parses path with the declared format, or detects it when format is empty.
// Duplicate packages keep their first occurrence and are reported as warnings.
func (r *ManifestReader) ReadManifest(path string, format string) (scannermodels.Manifest, error) {
	resolved, err := r.ResolvePath(path)
	if err != nil {
		return scannermodels.Manifest{}, err
	}

	if format != "" && !manifestformats.IsSupported(format) {
		return scannermodels.Manifest{}, analysiserrors.NewConfigError("format", format,
			fmt.Errorf("supported formats are %s", strings.Join(manifestformats.PriorityOrder, ", ")))
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return scannermodels.Manifest{}, analysiserrors.NewParseError(resolved, format, 0, fmt.Errorf("error reading manifest: %w", err))
	}

	var result parseResult
	if format != "" {
		result, err = r.parsers[format](resolved, content)
		if err != nil {
			return scannermodels.Manifest{}, err
		}
	} else {
		result, format, err = r.detect(resolved, content)
		if err != nil {
			return scannermodels.Manifest{}, err
		}
	}

	manifest := scannermodels.Manifest{
		Path:     resolved,
		Format:   format,
		Warnings: result.warnings,
	}

	seen := map[string]scannermodels.PackageRequirement{}
	for _, requirement := range result.requirements {
		requirement.Format = format
		requirement.NormalizedName = extensions.NormalizeName(requirement.Name)

		if first, ok := seen[requirement.NormalizedName]; ok {
			manifest.Warnings = append(manifest.Warnings, duplicateWarning(requirement, first))
			continue
		}

		seen[requirement.NormalizedName] = requirement
		manifest.Requirements = append(manifest.Requirements, requirement)
	}

	return manifest, nil
}

// detect tries the format hinted by the file name, then every format in priority order.
func (r *ManifestReader) detect(path string, content []byte) (parseResult, string, error) {
	candidates := manifestformats.PriorityOrder
	if hint := FormatHint(path); hint != "" {
		candidates = append([]string{hint}, candidates...)
	}

	var failures []error
	tried := map[string]bool{}
	for _, format := range candidates {
		if tried[format] {
			continue
		}
		tried[format] = true

		result, err := r.parsers[format](path, content)
		if err == nil {
			return result, format, nil
		}
		failures = append(failures, err)
	}

	return parseResult{}, "", analysiserrors.NewParseError(path, "", 0,
		fmt.Errorf("no supported format matched: %w", errors.Join(failures...)))
}

// FormatHint guesses a format from the file name alone.
func FormatHint(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case name == "pyproject.toml":
		return manifestformats.Pyproject
	case name == "pipfile":
		return manifestformats.Pipfile
	case name == "poetry.lock" || name == "pipfile.lock":
		return manifestformats.Lockfile
	case strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".in"):
		return manifestformats.Requirements
	}
	return ""
}

func duplicateWarning(duplicate, first scannermodels.PackageRequirement) string {
	if duplicate.Line > 0 && first.Line > 0 {
		return fmt.Sprintf("duplicate requirement %s on line %d ignored, keeping line %d", duplicate.Name, duplicate.Line, first.Line)
	}
	return fmt.Sprintf("duplicate requirement %s ignored, keeping %s", duplicate.Name, first.DisplayConstraint())
}
