package extensions

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

const ellipsis = "..."

// TruncateString cuts s to maxLen runes, ending in "..." when there is room for it.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string(runes[:max(maxLen, 0)])
	}

	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// TruncateStringStart keeps the end of s, useful for long paths.
func TruncateStringStart(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string(runes[len(runes)-max(maxLen, 0):])
	}

	return ellipsis + string(runes[len(runes)-maxLen+len(ellipsis):])
}

var separatorRun = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the PEP 503 normalized form of a package name.
func NormalizeName(name string) string {
	return separatorRun.ReplaceAllString(cases.Fold().String(strings.TrimSpace(name)), "-")
}

func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64) + "/1.0"
}
