package handler

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/sqlarena/sqlarena/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeLabeled(w, "sqlarena_registrations_total", "outcome", snap.Registrations)
	writeLabeled(w, "sqlarena_logins_total", "outcome", snap.Logins)
	writeLabeled(w, "sqlarena_rate_limited_total", "tier", snap.RateLimited)

	writeMetric(w, "sqlarena_password_hash_duration_seconds_count %d\n", snap.PasswordHashCount)
	writeMetric(w, "sqlarena_password_hash_duration_seconds_sum %.6f\n", float64(snap.PasswordHashTotalNs)/1e9)
}

// writeLabeled writes one sample per label value, sorted for stable output.
func writeLabeled(w http.ResponseWriter, name, label string, values map[string]uint64) {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, key, values[key])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
