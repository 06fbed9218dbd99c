// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
)

// CreateAnomaly stores a detected anomaly and fills in its assigned ID.
func (r *Repository) CreateAnomaly(ctx context.Context, anomaly *models.Anomaly) error {
	if anomaly.DetectedAt.IsZero() {
		anomaly.DetectedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO anomalies (prediction_id, node_id, confidence, severity, is_resolved, detected_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		anomaly.PredictionID, anomaly.NodeID, anomaly.Confidence, anomaly.Severity,
		anomaly.IsResolved, anomaly.DetectedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	anomaly.ID = id
	return nil
}

// ListAnomalies returns the most recent anomalies, newest first.
// Resolved anomalies are excluded unless includeResolved is set.
func (r *Repository) ListAnomalies(ctx context.Context, limit int, includeResolved bool) ([]models.Anomaly, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT * FROM anomalies`
	if !includeResolved {
		query += ` WHERE is_resolved = 0`
	}
	query += ` ORDER BY detected_at DESC LIMIT ?`

	var anomalies []models.Anomaly
	if err := r.db.SelectContext(ctx, &anomalies, query, limit); err != nil {
		return nil, err
	}
	return anomalies, nil
}

// ResolveAnomaly marks an anomaly as resolved.
func (r *Repository) ResolveAnomaly(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE anomalies SET is_resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOpenAnomalies returns the number of unresolved anomalies.
func (r *Repository) CountOpenAnomalies(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM anomalies WHERE is_resolved = 0`)
	return count, err
}
