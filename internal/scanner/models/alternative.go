package scannermodels

type Alternative struct {
	Original string `json:"original"`
	// Replacement is empty when the package should be removed in favour of the standard library.
	Replacement  string `json:"replacement"`
	Rationale    string `json:"rationale"`
	Note         string `json:"note,omitempty"`
	UserOverride bool   `json:"user_override,omitempty"`
}

func (a Alternative) IsRemoval() bool {
	return a.Replacement == ""
}

func (a Alternative) Suggestion() string {
	if a.IsRemoval() {
		return "remove (built into Python)"
	}
	return a.Replacement
}
