package manifestformats

import "strings"

const (
	Requirements = "requirements"
	Pyproject    = "pyproject"
	Pipfile      = "pipfile"
	Lockfile     = "lockfile"
)

// PriorityOrder is the order auto-detection falls back through.
var PriorityOrder = []string{Requirements, Pyproject, Pipfile, Lockfile}

// WellKnownFiles maps the files searched for in a directory to their format, in priority order.
var WellKnownFiles = []struct {
	FileName string
	Format   string
}{
	{FileName: "requirements.txt", Format: Requirements},
	{FileName: "pyproject.toml", Format: Pyproject},
	{FileName: "Pipfile", Format: Pipfile},
	{FileName: "poetry.lock", Format: Lockfile},
}

func IsSupported(format string) bool {
	for _, f := range PriorityOrder {
		if f == format {
			return true
		}
	}
	return false
}

// Normalize accepts a format name or a well-known file name, "requirements.txt" becomes "requirements".
func Normalize(format string) string {
	for _, wellKnown := range WellKnownFiles {
		if strings.EqualFold(format, wellKnown.FileName) {
			return wellKnown.Format
		}
	}
	return strings.ToLower(format)
}
