// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

// Package inference wraps the pre-trained FDI detection model behind a
// narrow interface. The model internals are opaque to the rest of the
// system; callers only see detected anomalies and the network topology.
package inference

import (
	"context"
)

// DetectedAnomaly is a single anomaly reported by the model.
type DetectedAnomaly struct {
	NodeID     string  `json:"nodeId"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
}

// Node is a sensor node in the network topology.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Status string `json:"status"` // normal or anomaly
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// Edge is a link between two nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Topology is the sensor network layout with per-node anomaly status.
type Topology struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Result is the output of one prediction run.
type Result struct {
	Anomalies []DetectedAnomaly `json:"anomalies"`
	Topology  Topology          `json:"topology"`
}

// Engine runs the detection model on a set of sensor readings.
type Engine interface {
	Predict(ctx context.Context, sensorData map[string]float64) (*Result, error)
}

// demoNodeCount matches the sensor layout the model was trained against.
const demoNodeCount = 10

// DemoTopology returns the sensor network layout, marking the nodes
// named in anomalies.
func DemoTopology(anomalies []DetectedAnomaly) Topology {
	flagged := make(map[string]bool, len(anomalies))
	for _, a := range anomalies {
		flagged[a.NodeID] = true
	}

	nodes := make([]Node, 0, demoNodeCount)
	for i := 0; i < demoNodeCount; i++ {
		id := nodeID(i)
		status := "normal"
		if flagged[id] {
			status = "anomaly"
		}
		nodes = append(nodes, Node{
			ID:     id,
			Label:  nodeLabel(i),
			Status: status,
			X:      (i % 5) * 100,
			Y:      (i / 5) * 100,
		})
	}

	edges := []Edge{
		{Source: "node_0", Target: "node_1"},
		{Source: "node_1", Target: "node_2"},
		{Source: "node_2", Target: "node_3"},
		{Source: "node_3", Target: "node_4"},
		{Source: "node_0", Target: "node_5"},
		{Source: "node_5", Target: "node_6"},
	}

	return Topology{Nodes: nodes, Edges: edges}
}
