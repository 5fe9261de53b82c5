// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
)

// MetricSample is one named cognitive metric observed in one conversation.
// A nil Value means the metric was not measured this conversation.
type MetricSample struct {
	Key   wellness.MetricKey
	Value *float64
	TS    time.Time
}

// Conversation represents one companion session submitted for evaluation.
// ConversationID doubles as the idempotency key for ingest.
type Conversation struct {
	ConversationID  string
	PatientID       string
	StartedAt       time.Time
	DurationSeconds int
	Summary         string
	Samples         []MetricSample
}

// Patient is a family-managed profile record.
type Patient struct {
	PatientID string
	Name      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
