package handler

import (
	"context"
	"math"
	"net/http"
	"runtime"
	"time"

	"github.com/sqlarena/sqlarena/internal/config"
	"github.com/sqlarena/sqlarena/internal/response"
)

// Health messages.
const (
	MsgDatabaseConnected  = "Database connection successful"
	MsgDatabaseFailed     = "Database connection failed"
	MsgCacheConnected     = "Cache connection successful"
	MsgCacheFailed        = "Cache connection failed"
	MsgServiceUnavailable = "Service unavailable - database connection failed"
)

const (
	healthCheckTimeout     = 5 * time.Second
	dependencyConnected    = "connected"
	dependencyDisconnected = "disconnected"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db      HealthChecker
	cache   HealthChecker
	posture config.Posture
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
// cache is nil when Redis is not configured.
func NewHealthHandler(db, cache HealthChecker, posture config.Posture) *HealthHandler {
	return &HealthHandler{
		db:      db,
		cache:   cache,
		posture: posture,
		started: time.Now(),
		now:     time.Now,
	}
}

// DependencyStatus reports one backing service.
type DependencyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MemoryStats is heap usage in megabytes.
type MemoryStats struct {
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// HealthResponse represents the /api/health response.
type HealthResponse struct {
	Success     bool              `json:"success"`
	Status      string            `json:"status"`
	Message     string            `json:"message,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Uptime      float64           `json:"uptime"`
	Environment string            `json:"environment"`
	Database    DependencyStatus  `json:"database"`
	Cache       *DependencyStatus `json:"cache,omitempty"`
	Memory      MemoryStats       `json:"memory"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 whenever the process can serve HTTP.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports process and dependency health. A failed database check
// answers 503; a failed cache only degrades rate limiting and is reported
// without changing the status.
//
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	now := h.now()
	resp := HealthResponse{
		Success:     true,
		Status:      "ok",
		Timestamp:   now.UTC(),
		Uptime:      now.Sub(h.started).Seconds(),
		Environment: string(h.posture),
		Database:    h.check(ctx, h.db, MsgDatabaseConnected, MsgDatabaseFailed),
		Memory:      readMemoryStats(),
	}

	if h.cache != nil {
		cache := h.check(ctx, h.cache, MsgCacheConnected, MsgCacheFailed)
		resp.Cache = &cache
	}

	status := http.StatusOK
	if resp.Database.Status != dependencyConnected {
		resp.Success = false
		resp.Status = "unhealthy"
		resp.Message = MsgServiceUnavailable
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, resp)
}

func (h *HealthHandler) check(ctx context.Context, dep HealthChecker, okMsg, failMsg string) DependencyStatus {
	if dep == nil {
		return DependencyStatus{Status: dependencyDisconnected, Message: failMsg}
	}
	if err := dep.Ping(ctx); err != nil {
		st := DependencyStatus{Status: dependencyDisconnected, Message: failMsg}
		if h.posture != config.PostureProduction {
			st.Error = err.Error()
		}
		return st
	}
	return DependencyStatus{Status: dependencyConnected, Message: okMsg}
}

func readMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		Used:  toMB(m.HeapAlloc),
		Total: toMB(m.HeapSys),
	}
}

// toMB converts bytes to megabytes rounded to two decimals.
func toMB(b uint64) float64 {
	return math.Round(float64(b)/1024/1024*100) / 100
}
