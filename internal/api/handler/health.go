package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rolecall/mock-api/internal/core/ports"
)

// HealthHandler serves the liveness and readiness probes. Neither goes
// through fault injection.
type HealthHandler struct {
	store ports.EntityStore
}

func NewHealthHandler(store ports.EntityStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness handles GET /health. Returns 200 immediately; confirms the process
// is alive.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type storeStatus struct {
	Status      string `json:"status"`
	Users       int    `json:"users"`
	Roles       int    `json:"roles"`
	DefaultRole string `json:"defaultRole,omitempty"`
	Error       string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string      `json:"status"`
	Store  storeStatus `json:"store"`
}

// Readiness handles GET /health/ready. The store is ready when it answers and
// holds exactly one default role.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	st := storeStatus{Status: "ok"}
	err := h.store.View(ctx, func(r ports.EntityReader) error {
		roles := r.Roles()
		st.Users = len(r.Users())
		st.Roles = len(roles)

		defaults := 0
		for _, role := range roles {
			if role.IsDefault {
				defaults++
				st.DefaultRole = role.ID
			}
		}
		if defaults != 1 {
			st.Status = "unhealthy"
			st.Error = "expected exactly one default role"
		}
		return nil
	})
	if err != nil {
		st = storeStatus{Status: "unhealthy", Error: err.Error()}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if st.Status != "ok" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status: status,
		Store:  st,
	})
}
