// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Severity levels for detected anomalies.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Anomaly is a stored detection produced by a single prediction run.
// PredictionID groups the anomalies of one /model/predict call.
type Anomaly struct {
	ID           int64     `db:"id" json:"id"`
	PredictionID string    `db:"prediction_id" json:"predictionId"`
	NodeID       string    `db:"node_id" json:"nodeId"`
	Confidence   float64   `db:"confidence" json:"confidence"`
	Severity     string    `db:"severity" json:"severity"`
	IsResolved   bool      `db:"is_resolved" json:"isResolved"`
	DetectedAt   time.Time `db:"detected_at" json:"detectedAt"`
}
