package scorerservice

import (
	"math"
	"strings"
	"time"

	"github.com/RobsonDevCode/pyninja/internal/clients/models"
	"github.com/RobsonDevCode/pyninja/internal/versioning"
)

// neutral is used for every signal the metadata does not carry.
const neutral = 0.5

const (
	classifierWeight     = 0.6
	requiresPythonWeight = 0.4

	recencyWeight      = 0.45
	releaseCountWeight = 0.35
	richnessWeight     = 0.20

	recencyWindow       = 4 * 365 * 24 * time.Hour
	releaseCountCeiling = 100
	richDescriptionSize = 200
)

const (
	pythonClassifierPrefix = "Programming Language :: Python :: "
	inactiveClassifier     = "Development Status :: 7 - Inactive"
)

func compatibilityScore(metadata *models.PackageMetadata, targetPython string) float64 {
	if metadata == nil {
		return neutral
	}

	return classifierWeight*classifierSignal(metadata.Classifiers, targetPython) +
		requiresPythonWeight*requiresPythonSignal(metadata.RequiresPython, targetPython)
}

func communityScore(metadata *models.PackageMetadata, now time.Time) float64 {
	if metadata == nil {
		return neutral
	}

	return recencyWeight*recencySignal(metadata.LastRelease, now) +
		releaseCountWeight*releaseCountSignal(len(metadata.Versions)) +
		richnessWeight*richnessSignal(metadata)
}

// classifierSignal rates the "Programming Language :: Python :: X.Y" classifiers
// against the target interpreter.
func classifierSignal(classifiers []string, targetPython string) float64 {
	var declared []string
	for _, classifier := range classifiers {
		version, ok := strings.CutPrefix(classifier, pythonClassifierPrefix)
		if !ok || strings.Count(version, ".") != 1 || !versioning.IsValid(version) {
			continue
		}
		declared = append(declared, version)
	}

	if len(declared) == 0 {
		return neutral
	}

	newer := false
	for _, version := range declared {
		switch c := versioning.Compare(version, targetPython); {
		case c == 0:
			return 1.0
		case c > 0:
			newer = true
		}
	}

	if newer {
		return 0.8
	}
	// Declaring only older interpreters is evidence against the target, so it scores
	// below the neutral value given to packages that declare nothing.
	return 0.3
}

func requiresPythonSignal(requiresPython string, targetPython string) float64 {
	if strings.TrimSpace(requiresPython) == "" {
		return neutral
	}

	constraint, err := versioning.ParseConstraint(requiresPython)
	if err != nil {
		return neutral
	}

	if constraint.Satisfies(targetPython) {
		return 1.0
	}
	return 0.0
}

// recencySignal decays linearly from 1 for a release today to 0 after four years.
func recencySignal(lastRelease time.Time, now time.Time) float64 {
	if lastRelease.IsZero() {
		return neutral
	}

	age := now.Sub(lastRelease)
	if age <= 0 {
		return 1.0
	}

	return clamp(1 - float64(age)/float64(recencyWindow))
}

func releaseCountSignal(releases int) float64 {
	if releases == 0 {
		return neutral
	}

	return clamp(math.Log1p(float64(releases)) / math.Log1p(releaseCountCeiling))
}

func richnessSignal(metadata *models.PackageMetadata) float64 {
	if metadata.Partial {
		return neutral
	}

	present := 0
	if len(metadata.ProjectUrls) > 0 {
		present++
	}
	if strings.TrimSpace(metadata.License) != "" {
		present++
	}
	if len(metadata.Description) >= richDescriptionSize {
		present++
	}
	if strings.TrimSpace(metadata.Keywords) != "" {
		present++
	}

	return float64(present) / 4
}

func clamp(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
