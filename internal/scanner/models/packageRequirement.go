package scannermodels

// PackageRequirement is one dependency declared in a manifest.
type PackageRequirement struct {
	Name           string   `json:"name"`
	NormalizedName string   `json:"normalized_name"`
	Constraint     string   `json:"constraint"`
	Extras         []string `json:"extras,omitempty"`
	Markers        string   `json:"markers,omitempty"`
	Format         string   `json:"format"`
	Line           int      `json:"line,omitempty"`
}

// DisplayConstraint renders an empty constraint as "any".
func (r PackageRequirement) DisplayConstraint() string {
	if r.Constraint == "" {
		return "any"
	}
	return r.Constraint
}

type Manifest struct {
	Path         string
	Format       string
	Requirements []PackageRequirement
	Warnings     []string
}
