package models

import "time"

// PypiProject is the response of the PyPI JSON API for one project.
type PypiProject struct {
	Info     PypiInfo                 `json:"info"`
	Releases map[string][]PypiRelease `json:"releases"`
}

type PypiInfo struct {
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Summary        string            `json:"summary"`
	Description    string            `json:"description"`
	Keywords       string            `json:"keywords"`
	License        string            `json:"license"`
	HomePage       string            `json:"home_page"`
	RequiresPython string            `json:"requires_python"`
	Classifiers    []string          `json:"classifiers"`
	ProjectUrls    map[string]string `json:"project_urls"`
	Yanked         bool              `json:"yanked"`
	YankedReason   string            `json:"yanked_reason"`
}

// PypiRelease is one uploaded distribution file of a release.
type PypiRelease struct {
	Filename       string    `json:"filename"`
	UploadTime     time.Time `json:"upload_time_iso_8601"`
	RequiresPython string    `json:"requires_python"`
	Yanked         bool      `json:"yanked"`
	YankedReason   string    `json:"yanked_reason"`
}

// PackageMetadata is what the scorer needs, whichever PyPI endpoint it came from.
type PackageMetadata struct {
	Name           string            `json:"name"`
	Summary        string            `json:"summary"`
	Description    string            `json:"description"`
	Keywords       string            `json:"keywords"`
	License        string            `json:"license"`
	RequiresPython string            `json:"requires_python"`
	Classifiers    []string          `json:"classifiers"`
	ProjectUrls    map[string]string `json:"project_urls"`
	Versions       []string          `json:"versions"`
	YankedVersions []string          `json:"yanked_versions"`
	LastRelease    time.Time         `json:"last_release"`
	// Partial is set when the metadata came from the simple index and only the release list is known.
	Partial bool `json:"partial"`
}
