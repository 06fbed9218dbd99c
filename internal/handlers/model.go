// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/inference"
)

// ModelHandlers expose the detection model and the stored anomalies.
type ModelHandlers struct {
	engine inference.Engine
	repo   *repository.Repository
}

// NewModel creates a new ModelHandlers instance.
func NewModel(engine inference.Engine, repo *repository.Repository) *ModelHandlers {
	return &ModelHandlers{engine: engine, repo: repo}
}

// PredictRequest is the request body for a prediction run.
type PredictRequest struct {
	SensorData map[string]float64 `json:"sensorData" validate:"required"`
}

// Predict runs the model on a set of sensor readings and stores any
// detected anomalies. Inference failures surface as a raw 500; a demo
// concession that does not apply to the lifecycle endpoints.
func (h *ModelHandlers) Predict(c echo.Context) error {
	var req PredictRequest
	if err := c.Bind(&req); err != nil {
		return &account.ValidationError{Message: "invalid request body"}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.engine.Predict(c.Request().Context(), req.SensorData)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	predictionID := uuid.New().String()
	for _, detected := range result.Anomalies {
		anomaly := &models.Anomaly{
			PredictionID: predictionID,
			NodeID:       detected.NodeID,
			Confidence:   detected.Confidence,
			Severity:     detected.Severity,
		}
		if err := h.repo.CreateAnomaly(c.Request().Context(), anomaly); err != nil {
			slog.Error("anomaly_store_failed", "error", err, "node_id", detected.NodeID)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"predictionId": predictionID,
		"anomalies":    result.Anomalies,
		"topology":     result.Topology,
		"timestamp":    time.Now().UTC(),
	})
}

// Anomalies returns recent anomalies, newest first. Resolved anomalies
// are excluded unless ?resolved=true.
func (h *ModelHandlers) Anomalies(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return &account.ValidationError{Message: "invalid limit parameter"}
		}
		limit = parsed
	}

	includeResolved := c.QueryParam("resolved") == "true"

	anomalies, err := h.repo.ListAnomalies(c.Request().Context(), limit, includeResolved)
	if err != nil {
		return err
	}
	if anomalies == nil {
		anomalies = []models.Anomaly{}
	}
	return c.JSON(http.StatusOK, anomalies)
}

// ResolveAnomaly marks an anomaly as resolved.
func (h *ModelHandlers) ResolveAnomaly(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return &account.ValidationError{Message: "invalid anomaly id"}
	}

	if err := h.repo.ResolveAnomaly(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &account.NotFoundError{Message: "anomaly not found"}
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":   "Anomaly resolved",
		"anomalyId": id,
	})
}

// Topology returns the current sensor network topology.
func (h *ModelHandlers) Topology(c echo.Context) error {
	return c.JSON(http.StatusOK, inference.DemoTopology(nil))
}
