package models

type OsvQueryRequest struct {
	Package   OsvPackage `json:"package"`
	PageToken string     `json:"page_token,omitempty"`
}

type OsvPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type OsvQueryResponse struct {
	Vulns         []OsvVulnerability `json:"vulns"`
	NextPageToken string             `json:"next_page_token"`
}

type OsvVulnerability struct {
	Id               string                 `json:"id"`
	Aliases          []string               `json:"aliases"`
	Summary          string                 `json:"summary"`
	Details          string                 `json:"details"`
	Severity         []OsvSeverity          `json:"severity"`
	Affected         []OsvAffected          `json:"affected"`
	DatabaseSpecific map[string]interface{} `json:"database_specific"`
	References       []OsvReference         `json:"references"`
}

type OsvSeverity struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

type OsvAffected struct {
	Package          OsvPackage             `json:"package"`
	Ranges           []OsvRange             `json:"ranges"`
	Versions         []string               `json:"versions"`
	DatabaseSpecific map[string]interface{} `json:"database_specific"`
}

type OsvRange struct {
	Type   string     `json:"type"`
	Events []OsvEvent `json:"events"`
}

// OsvEvent has exactly one field set.
type OsvEvent struct {
	Introduced   string `json:"introduced,omitempty"`
	Fixed        string `json:"fixed,omitempty"`
	LastAffected string `json:"last_affected,omitempty"`
	Limit        string `json:"limit,omitempty"`
}

type OsvReference struct {
	Type string `json:"type"`
	Url  string `json:"url"`
}
