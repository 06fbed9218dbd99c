// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
)

const (
	// inputDim is the feature vector width the model was trained on.
	inputDim = 51
	// hiddenDim is the width of both hidden layers.
	hiddenDim = 128
	// outputDim is normal vs anomaly.
	outputDim = 2

	anomalyThreshold  = 0.5
	severityThreshold = 0.8
)

// weightsFile is the on-disk JSON format of the exported model.
type weightsFile struct {
	W1 [][]float64 `json:"w1"`
	B1 []float64   `json:"b1"`
	W2 [][]float64 `json:"w2"`
	B2 []float64   `json:"b2"`
	W3 [][]float64 `json:"w3"`
	B3 []float64   `json:"b3"`
}

// Model is a feed-forward scorer over a fixed-width sensor feature
// vector. It implements Engine.
type Model struct {
	weights weightsFile
	trained bool
}

// NewModel loads exported model weights from path. A missing or
// unreadable file is not fatal: the model falls back to untrained
// weights for demo purposes, matching the behavior of the training
// pipeline's export tool.
func NewModel(path string) *Model {
	m := &Model{weights: zeroWeights()}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("model_weights_missing", "path", path, "error", err)
		return m
	}

	var w weightsFile
	if err := json.Unmarshal(data, &w); err != nil {
		slog.Warn("model_weights_invalid", "path", path, "error", err)
		return m
	}
	if len(w.W1) != hiddenDim || len(w.W2) != hiddenDim || len(w.W3) != outputDim {
		slog.Warn("model_weights_shape_mismatch", "path", path)
		return m
	}

	m.weights = w
	m.trained = true
	slog.Info("model_loaded", "path", path)
	return m
}

// Predict scores a set of sensor readings and returns detected
// anomalies plus the annotated topology.
func (m *Model) Predict(_ context.Context, sensorData map[string]float64) (*Result, error) {
	if len(sensorData) == 0 {
		return nil, fmt.Errorf("empty sensor data")
	}

	input := featureVector(sensorData)
	output := m.forward(input)
	probs := softmax(output)

	// Index 1 is the anomaly class.
	anomalyProb := probs[1]

	var anomalies []DetectedAnomaly
	if anomalyProb > anomalyThreshold {
		severity := models.SeverityMedium
		if anomalyProb > severityThreshold {
			severity = models.SeverityHigh
		}
		anomalies = append(anomalies, DetectedAnomaly{
			NodeID:     "sensor_node_1",
			Confidence: anomalyProb,
			Severity:   severity,
		})
	}

	return &Result{
		Anomalies: anomalies,
		Topology:  DemoTopology(anomalies),
	}, nil
}

// Trained reports whether real weights were loaded.
func (m *Model) Trained() bool {
	return m.trained
}

// featureVector flattens the readings into the fixed model input,
// ordered by sensor name, truncated or zero-padded to inputDim.
func featureVector(sensorData map[string]float64) []float64 {
	keys := make([]string, 0, len(sensorData))
	for k := range sensorData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vec := make([]float64, inputDim)
	for i, k := range keys {
		if i >= inputDim {
			break
		}
		vec[i] = sensorData[k]
	}
	return vec
}

func (m *Model) forward(input []float64) []float64 {
	h1 := relu(affine(m.weights.W1, m.weights.B1, input))
	h2 := relu(affine(m.weights.W2, m.weights.B2, h1))
	return affine(m.weights.W3, m.weights.B3, h2)
}

func affine(w [][]float64, b []float64, x []float64) []float64 {
	out := make([]float64, len(w))
	for i, row := range w {
		sum := b[i]
		for j, v := range row {
			if j < len(x) {
				sum += v * x[j]
			}
		}
		out[i] = sum
	}
	return out
}

func relu(x []float64) []float64 {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
	return x
}

func softmax(x []float64) []float64 {
	maxV := x[0]
	for _, v := range x[1:] {
		if v > maxV {
			maxV = v
		}
	}

	out := make([]float64, len(x))
	var sum float64
	for i, v := range x {
		out[i] = math.Exp(v - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func zeroWeights() weightsFile {
	zeros := func(rows, cols int) [][]float64 {
		w := make([][]float64, rows)
		for i := range w {
			w[i] = make([]float64, cols)
		}
		return w
	}

	return weightsFile{
		W1: zeros(hiddenDim, inputDim),
		B1: make([]float64, hiddenDim),
		W2: zeros(hiddenDim, hiddenDim),
		B2: make([]float64, hiddenDim),
		W3: zeros(outputDim, hiddenDim),
		B3: make([]float64, outputDim),
	}
}

func nodeID(i int) string {
	return fmt.Sprintf("node_%d", i)
}

func nodeLabel(i int) string {
	return fmt.Sprintf("Sensor %d", i)
}
