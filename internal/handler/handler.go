// Package handler provides HTTP request handlers for the item API.
package handler

import "github.com/vyrodovalexey/items-api/internal/model"

// Version is the application version.
const Version = "1.0.0"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// Notifier receives item change events after a successful mutation.
type Notifier interface {
	Publish(event model.ItemEvent)
}
