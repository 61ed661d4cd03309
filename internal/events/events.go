// File: internal/events/events.go
package events

import "time"

// Topics the core publishes to. Consumers live outside this process.
const (
	TopicBusinessMetrics  = "business-metrics"
	TopicTechnicalMetrics = "technical-metrics"
)

// Business event types.
const (
	EventUserActive = "user_active"
	EventSessionEnd = "session_end"
)

// Technical event types.
const (
	EventMessageSent = "message_sent"
)

// BusinessEvent records a product-level fact about a user.
type BusinessEvent struct {
	Type              string    `json:"type"`
	UserID            string    `json:"userId"`
	SessionDurationMS *int64    `json:"sessionDurationMs,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// TechnicalEvent records an operational measurement.
type TechnicalEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	LatencyMS  int64     `json:"latencyMs"`
	Throughput uint64    `json:"throughput"`
	Timestamp  time.Time `json:"timestamp"`
}
