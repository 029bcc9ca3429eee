package versioning

import "strings"

// Interval is a version range. An empty bound is unbounded.
type Interval struct {
	Lower          string `json:"lower,omitempty"`
	LowerInclusive bool   `json:"lower_inclusive,omitempty"`
	Upper          string `json:"upper,omitempty"`
	UpperInclusive bool   `json:"upper_inclusive,omitempty"`
}

func (i Interval) Contains(version string) bool {
	if i.Lower != "" {
		c := Compare(version, i.Lower)
		if c < 0 || (c == 0 && !i.LowerInclusive) {
			return false
		}
	}

	if i.Upper != "" {
		c := Compare(version, i.Upper)
		if c > 0 || (c == 0 && !i.UpperInclusive) {
			return false
		}
	}

	return true
}

// Intersect returns the overlap of two intervals and whether it is non-empty.
func (i Interval) Intersect(other Interval) (Interval, bool) {
	result := i

	if other.Lower != "" {
		if result.Lower == "" {
			result.Lower, result.LowerInclusive = other.Lower, other.LowerInclusive
		} else if c := Compare(other.Lower, result.Lower); c > 0 {
			result.Lower, result.LowerInclusive = other.Lower, other.LowerInclusive
		} else if c == 0 {
			result.LowerInclusive = result.LowerInclusive && other.LowerInclusive
		}
	}

	if other.Upper != "" {
		if result.Upper == "" {
			result.Upper, result.UpperInclusive = other.Upper, other.UpperInclusive
		} else if c := Compare(other.Upper, result.Upper); c < 0 {
			result.Upper, result.UpperInclusive = other.Upper, other.UpperInclusive
		} else if c == 0 {
			result.UpperInclusive = result.UpperInclusive && other.UpperInclusive
		}
	}

	return result, !result.IsEmpty()
}

func (i Interval) IsEmpty() bool {
	if i.Lower == "" || i.Upper == "" {
		return false
	}

	c := Compare(i.Lower, i.Upper)
	if c > 0 {
		return true
	}
	return c == 0 && !(i.LowerInclusive && i.UpperInclusive)
}

func (i Interval) String() string {
	lower, upper := "(-inf", "+inf)"
	if i.Lower != "" {
		lower = "(" + i.Lower
		if i.LowerInclusive {
			lower = "[" + i.Lower
		}
	}
	if i.Upper != "" {
		upper = i.Upper + ")"
		if i.UpperInclusive {
			upper = i.Upper + "]"
		}
	}
	return lower + ", " + upper
}

// Describe renders the interval as a specifier set, e.g. ">=2.0, <2.31.0".
func (i Interval) Describe() string {
	if i.Lower != "" && i.Lower == i.Upper && i.LowerInclusive && i.UpperInclusive {
		return "==" + i.Lower
	}

	var parts []string
	if i.Lower != "" {
		op := ">"
		if i.LowerInclusive {
			op = ">="
		}
		parts = append(parts, op+i.Lower)
	}
	if i.Upper != "" {
		upper, op := i.Upper, "<="
		if !i.UpperInclusive {
			upper, op = strings.TrimSuffix(upper, devFloor), "<"
		}
		parts = append(parts, op+upper)
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, ", ")
}

func DescribeIntervals(intervals []Interval) string {
	parts := make([]string, 0, len(intervals))
	for _, interval := range intervals {
		parts = append(parts, interval.Describe())
	}
	return strings.Join(parts, " || ")
}
