package handlers

// ReportObserver records the outcome of the report reads done by the handlers.
type ReportObserver interface {
	ObserveRead(name string, err error) // ObserveRead records a read of the named report and its error, if any.
	SetAppliances(n int)                // SetAppliances records the number of appliances of the last explanation read.
}

// Report names, as used in logs and metrics.
const (
	explanationReport = "explanation"
	schedulesReport   = "schedules"
)
