package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ubuntu/appliance-insights/internal/webservice/metrics"
)

// RefreshHandler acknowledges a refresh request.
// Reports are reread on each request, so there is nothing to reload.
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)
	reqID := uuid.New().String()

	slog.Info("Refresh requested", "req_id", reqID, "time", time.Now().Format(time.DateTime))
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Files reloaded",
	}, reqID)
}
