package tableHeaders

var SummaryTableHeaders = []string{"Metric", "Value"}

var VulnerabilityTableHeaders = []string{"Package", "Constraint", "Advisory", "Severity", "Affected", "Fixed In"}

var OutdatedTableHeaders = []string{"Package", "Current", "Latest Stable"}

var UpdateTableHeaders = []string{"Package", "Installed", "Target", "Result"}

var AlternativeTableHeaders = []string{"Package", "Suggestion", "Rationale", "Note"}

var ExcelPackageTableHeaders = []string{
	"Package",
	"Constraint",
	"Format",
	"Latest Stable",
	"Update Available",
	"Deprecated",
	"Advisory",
	"Severity",
	"Affected",
	"Fixed In",
	"Alternative",
	"Compatibility Score",
	"Community Score",
}
