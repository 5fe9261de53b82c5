// Package repository defines the patient history store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/halcyonlabs/carepulse/internal/domain/model"
	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
)

// Record is one evaluated conversation as kept in the store.
type Record struct {
	ConversationID  string
	PatientID       string
	StartedAt       time.Time
	DurationSeconds int
	Summary         string
	Score           int
	Readings        []wellness.Reading
}

// ScorePoint is one composite score in a patient's time-ordered series.
type ScorePoint struct {
	ConversationID string
	Score          int
	StartedAt      time.Time
}

// Store provides read/write access to patients, conversation reports and alerts.
type Store interface {
	// UpsertPatient creates or updates a patient profile.
	UpsertPatient(ctx context.Context, p model.Patient) error

	// Patient returns a patient profile.
	// Returns ErrNotFound if no profile exists for the id.
	Patient(ctx context.Context, patientID string) (model.Patient, error)

	// Patients returns all patient profiles, ordered by id.
	Patients(ctx context.Context) ([]model.Patient, error)

	// PutReport stores an evaluated conversation, keeping each patient's
	// series time-ordered and bounded.
	PutReport(ctx context.Context, r Record) error

	// Reports returns a patient's reports with StartedAt >= since,
	// newest first, capped at limit (limit <= 0 means no cap).
	Reports(ctx context.Context, patientID string, since time.Time, limit int) ([]Record, error)

	// Scores returns a patient's composite scores with StartedAt >= since,
	// oldest first, ready for trend analysis.
	Scores(ctx context.Context, patientID string, since time.Time) ([]ScorePoint, error)

	// LatestReport returns a patient's most recent report.
	// Returns ErrNotFound when the patient has no history.
	LatestReport(ctx context.Context, patientID string) (Record, error)

	// AddAlert appends an alert for a patient.
	AddAlert(ctx context.Context, a model.Alert) error

	// Alerts returns a patient's alerts, newest first. Acknowledged alerts
	// are included only when includeAcked is true.
	Alerts(ctx context.Context, patientID string, includeAcked bool) ([]model.Alert, error)

	// AckAlert marks an alert acknowledged and returns it. Acking an
	// already-acknowledged alert is a no-op.
	// Returns ErrNotFound for unknown alert ids.
	AckAlert(ctx context.Context, alertID string) (model.Alert, error)

	// CountPatients returns the number of patients with history or profile.
	CountPatients(ctx context.Context) int
}
