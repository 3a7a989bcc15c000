package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/ubuntu/appliance-insights/internal/report"
	"github.com/ubuntu/appliance-insights/internal/webservice/metrics"
)

// Schedules is a handler serving the raw content of the schedules report.
type Schedules struct {
	path     string
	observer ReportObserver
}

type schedulesResponse struct {
	Schedules string `json:"schedules"`
	Error     string `json:"error,omitempty"`
}

// NewSchedules creates a new Schedules handler reading the schedules report at path.
func NewSchedules(path string, observer ReportObserver) *Schedules {
	return &Schedules{
		path:     path,
		observer: observer,
	}
}

// ServeHTTP rereads the schedules report on each request.
func (h *Schedules) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)
	reqID := uuid.New().String()
	slog.Info("Request recv'd", "req_id", reqID, "path", r.URL.Path)

	schedules, err := report.ReadSchedules(h.path)
	h.observer.ObserveRead(schedulesReport, err)
	if err != nil {
		status, msg := reportError(h.path, err, reqID)
		writeJSON(w, status, schedulesResponse{Error: msg}, reqID)
		return
	}

	writeJSON(w, http.StatusOK, schedulesResponse{Schedules: schedules}, reqID)
}
