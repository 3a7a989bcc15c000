package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/ubuntu/appliance-insights/internal/report"
)

const internalServerError = "internal server error"

// writeJSON encodes v as the JSON body of the response, with the given status.
func writeJSON(w http.ResponseWriter, status int, v any, reqID string) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode response", "req_id", reqID, "err", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, `{"error":%q}`, internalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("Failed to write response", "req_id", reqID, "err", err)
	}
}

// reportError returns the status and error message to send back when reading the report at path failed.
// Details of unexpected failures are only logged.
func reportError(path string, err error, reqID string) (status int, msg string) {
	if errors.Is(err, report.ErrReportNotFound) {
		slog.Warn("Report not found", "req_id", reqID, "path", path)
		return http.StatusNotFound, fmt.Sprintf("%s not found", filepath.Base(path))
	}

	slog.Error("Failed to read report", "req_id", reqID, "path", path, "err", err)
	return http.StatusInternalServerError, internalServerError
}
