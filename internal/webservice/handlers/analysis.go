// Package handlers provides HTTP handlers for the server.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/ubuntu/appliance-insights/internal/report"
	"github.com/ubuntu/appliance-insights/internal/webservice/metrics"
)

// Analysis is a handler serving the appliance records of the explanation report.
type Analysis struct {
	path     string
	observer ReportObserver
}

// NewAnalysis creates a new Analysis handler reading the explanation report at path.
func NewAnalysis(path string, observer ReportObserver) *Analysis {
	return &Analysis{
		path:     path,
		observer: observer,
	}
}

// ServeHTTP rereads and parses the explanation report on each request.
func (h *Analysis) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)
	reqID := uuid.New().String()
	slog.Info("Request recv'd", "req_id", reqID, "path", r.URL.Path)

	appliances, err := report.ReadExplanation(h.path, report.WithLogger(slog.With("req_id", reqID)))
	h.observer.ObserveRead(explanationReport, err)
	if err != nil {
		status, msg := reportError(h.path, err, reqID)
		writeJSON(w, status, map[string]string{"error": msg}, reqID)
		return
	}

	h.observer.SetAppliances(appliances.Len())
	slog.Debug("Explanation report parsed", "req_id", reqID, "appliances", appliances.Len())
	writeJSON(w, http.StatusOK, appliances, reqID)
}
