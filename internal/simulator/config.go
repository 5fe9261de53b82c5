package simulator

import "time"

// Config holds configuration for the conversation simulator.
type Config struct {
	BaseURL          string        // Base URL of the service
	NumPatients      int           // Number of synthetic patients
	ConversationsPer int           // Conversations per patient
	Workers          int           // Number of concurrent workers
	Timeout          time.Duration // HTTP request timeout
	SettleDelay      time.Duration // Wait after submission before verification
	LogFile          string        // Log file for simulator output
	Verbose          bool          // Enable verbose logging
}

// Conversation represents a conversation to be submitted.
type Conversation struct {
	ConversationID  string              `json:"conversation_id"`
	PatientID       string              `json:"patient_id"`
	StartedAt       string              `json:"started_at"`
	DurationSeconds int                 `json:"duration_seconds"`
	Summary         string              `json:"summary"`
	Metrics         map[string]*float64 `json:"metrics"`
}

// PatientProfile represents a patient registration payload.
type PatientProfile struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Notes     string `json:"notes"`
}

// TrendSummary mirrors the trend read model returned by the API.
type TrendSummary struct {
	PatientID     string  `json:"patient_id"`
	Window        string  `json:"window"`
	Direction     string  `json:"direction"`
	FirstHalfAvg  float64 `json:"first_half_avg"`
	SecondHalfAvg float64 `json:"second_half_avg"`
}

// AckResponse represents the response from conversation submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds simulation statistics.
type Stats struct {
	PatientsRegistered     int
	ConversationsGenerated int
	ConversationsSubmitted int
	ConversationsAccepted  int
	ConversationsDuplicate int
	ConversationsFailed    int
	TrendsVerified         int
	TrendMismatches        int
	StartTime              time.Time
	EndTime                time.Time
	Duration               time.Duration
}
