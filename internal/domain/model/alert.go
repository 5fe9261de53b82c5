package model

import "time"

// AlertSeverity grades how urgently a family member should look.
type AlertSeverity string

// AlertSeverity values.
const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is raised by the evaluation worker when a conversation's metrics
// cross alerting rules. Alerts stay visible until acknowledged.
type Alert struct {
	AlertID        string
	PatientID      string
	ConversationID string
	Severity       AlertSeverity
	Reason         string
	CreatedAt      time.Time
	Acknowledged   bool
	AcknowledgedAt *time.Time
}
