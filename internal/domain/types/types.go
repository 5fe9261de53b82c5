// Package types contains read models served to the dashboard.
package types

import (
	"time"

	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
)

// MetricReading is one evaluated metric as the dashboard renders it.
type MetricReading struct {
	Key          string   `json:"key"`
	Label        string   `json:"label,omitempty"`
	Value        *float64 `json:"value"`
	Status       string   `json:"status"`
	DeviationPct *float64 `json:"deviation_pct,omitempty"`
	Comparison   string   `json:"comparison,omitempty"`
}

// ConversationReport is a fully evaluated conversation.
type ConversationReport struct {
	ConversationID  string          `json:"conversation_id"`
	PatientID       string          `json:"patient_id"`
	StartedAt       time.Time       `json:"started_at"`
	DurationSeconds int             `json:"duration_seconds,omitempty"`
	Summary         string          `json:"summary,omitempty"`
	Score           int             `json:"score"`
	Readings        []MetricReading `json:"readings"`
}

// TrendPoint is one composite score in a trend series.
type TrendPoint struct {
	ConversationID string    `json:"conversation_id"`
	Score          int       `json:"score"`
	StartedAt      time.Time `json:"started_at"`
}

// TrendSummary describes score movement over a trailing window.
type TrendSummary struct {
	PatientID     string                  `json:"patient_id"`
	Window        string                  `json:"window"`
	Direction     wellness.TrendDirection `json:"direction"`
	FirstHalfAvg  float64                 `json:"first_half_avg"`
	SecondHalfAvg float64                 `json:"second_half_avg"`
	Points        []TrendPoint            `json:"points"`
}

// AlertView is the API shape of an alert.
type AlertView struct {
	AlertID        string     `json:"alert_id"`
	PatientID      string     `json:"patient_id"`
	ConversationID string     `json:"conversation_id,omitempty"`
	Severity       string     `json:"severity"`
	Reason         string     `json:"reason"`
	CreatedAt      time.Time  `json:"created_at"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// PatientView is the API shape of a patient profile.
type PatientView struct {
	PatientID string    `json:"patient_id"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
