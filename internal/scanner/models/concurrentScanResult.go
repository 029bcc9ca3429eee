package scannermodels

// ConcurrentScanResult carries one package's assessment from a worker to the collector.
type ConcurrentScanResult struct {
	Index      int
	Assessment *PackageAssessment
	Err        error
}
