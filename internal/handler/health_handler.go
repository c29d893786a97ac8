package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports liveness and the state of backing services.
type HealthHandler struct {
	critical map[string]HealthCheck
	optional map[string]HealthCheck
}

// NewHealthHandler creates a health handler. A failing critical check turns the
// response into 503; optional checks only report their state.
func NewHealthHandler(critical, optional map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{critical: critical, optional: optional}
}

// HealthResponse describes the service state.
type HealthResponse struct {
	Time       time.Time         `json:"time"`
	Components map[string]string `json:"components,omitempty"`
}

// Liveness godoc
// @Summary Liveness probe
// @Tags health
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Health godoc
// @Summary Service health with dependency checks
// @Tags health
// @Produce json
// @Success 200 {object} Response{data=HealthResponse}
// @Failure 503 {object} Response{data=HealthResponse}
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Time: time.Now().UTC(), Components: map[string]string{}}
	healthy := true
	for name, check := range h.critical {
		if err := check(ctx); err != nil {
			resp.Components[name] = "down"
			healthy = false
			continue
		}
		resp.Components[name] = "up"
	}
	for name, check := range h.optional {
		if err := check(ctx); err != nil {
			resp.Components[name] = "down"
			continue
		}
		resp.Components[name] = "up"
	}

	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Message: "FlowSpace API is degraded", Data: resp})
	}
	return respond(c, http.StatusOK, "FlowSpace API is running", resp)
}
