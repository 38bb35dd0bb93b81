package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/connector"
)

// =============================================================================
// Health Handler
// =============================================================================

// Pinger is anything whose liveness we report (database, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	connector *connector.UniversalConnector
	database  Pinger
	cache     Pinger
	startedAt time.Time
	logger    *zap.Logger
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status          string            `json:"status"`
	Uptime          string            `json:"uptime"`
	ConnectedAgents int               `json:"connected_agents"`
	Dependencies    map[string]string `json:"dependencies"`
	Timestamp       time.Time         `json:"timestamp"`
}

// NewHealthHandler creates the health handler. database and cache may be nil
// when the deployment runs without them.
func NewHealthHandler(conn *connector.UniversalConnector, database, cache Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		connector: conn,
		database:  database,
		cache:     cache,
		startedAt: time.Now(),
		logger:    logger.With(zap.String("component", "health_handler")),
	}
}

// RegisterRoutes mounts the health endpoints on the mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /ping", h.HandlePing)
}

// HandlePing is the cheap liveness probe.
func (h *HealthHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// HandleHealth checks every wired dependency. Any failed dependency degrades
// the overall status and flips the HTTP status to 503.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus "Dependency down"
// @Router /health [get]
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:          "healthy",
		Uptime:          time.Since(h.startedAt).Round(time.Second).String(),
		ConnectedAgents: len(h.connector.ConnectedAgents()),
		Dependencies:    make(map[string]string),
		Timestamp:       time.Now(),
	}

	check := func(name string, p Pinger) {
		if p == nil {
			return
		}
		if err := p.Ping(ctx); err != nil {
			status.Dependencies[name] = "down: " + err.Error()
			status.Status = "degraded"
			h.logger.Warn("dependency unhealthy", zap.String("dependency", name), zap.Error(err))
			return
		}
		status.Dependencies[name] = "up"
	}
	check("database", h.database)
	check("cache", h.cache)

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, Response{Success: code == http.StatusOK, Data: status, Timestamp: time.Now()})
}
