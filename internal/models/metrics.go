package models

import "time"

// MetricsSnapshot summarises console traffic for the system endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	BackendCalls             uint64    `json:"backendCalls"`
	BackendFailures          uint64    `json:"backendFailures"`
	AverageBackendDurationMs float64   `json:"averageBackendDurationMs"`
	StaleFetchesDiscarded    uint64    `json:"staleFetchesDiscarded"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
