package simulator

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonlabs/carepulse/pkg/logger"
)

// Cohort labels a patient's scripted trajectory.
type Cohort string

// Cohorts cycle across generated patients.
const (
	CohortStable    Cohort = "stable"
	CohortImproving Cohort = "improving"
	CohortDeclining Cohort = "declining"
)

var cohorts = []Cohort{CohortStable, CohortImproving, CohortDeclining}

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	noiseAmplitude     = 0.04
	missingSampleOdds  = 12 // one in N metric samples is dropped
)

// Metric trajectories per cohort: start and end values that the generator
// interpolates across a patient's conversation history. Stable patients
// hold the start value throughout.
type trajectory struct {
	start, end float64
}

var cohortTrajectories = map[Cohort]map[string]trajectory{
	CohortStable: {
		"vocabulary_diversity": {0.65, 0.65},
		"topic_coherence":      {0.78, 0.78},
		"repetition_rate":      {0.06, 0.06},
		"word_finding_pauses":  {2.5, 2.5},
		"response_latency_ms":  {1450, 1450},
	},
	CohortImproving: {
		"vocabulary_diversity": {0.38, 0.72},
		"topic_coherence":      {0.45, 0.85},
		"repetition_rate":      {0.22, 0.04},
		"word_finding_pauses":  {7.5, 2.0},
		"response_latency_ms":  {2600, 1400},
	},
	CohortDeclining: {
		"vocabulary_diversity": {0.72, 0.38},
		"topic_coherence":      {0.85, 0.45},
		"repetition_rate":      {0.04, 0.22},
		"word_finding_pauses":  {2.0, 7.5},
		"response_latency_ms":  {1400, 2600},
	},
}

// Patient couples a profile with its scripted cohort.
type Patient struct {
	Profile PatientProfile
	Cohort  Cohort
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generatePatients creates synthetic patient profiles cycling through the
// cohorts.
func generatePatients(ctx context.Context, config *Config) []Patient {
	logger.Get().Info(ctx, "generating synthetic patients", logger.Int("numPatients", config.NumPatients))

	patients := make([]Patient, config.NumPatients)
	for i := 0; i < config.NumPatients; i++ {
		cohort := cohorts[i%len(cohorts)]
		patients[i] = Patient{
			Profile: PatientProfile{
				PatientID: fmt.Sprintf("sim-%s-%s", cohort, uuid.New().String()[:8]),
				Name:      fmt.Sprintf("Simulated Patient %d", i+1),
				Notes:     fmt.Sprintf("synthetic %s cohort", cohort),
			},
			Cohort: cohort,
		}
	}
	return patients
}

// generateConversations builds each patient's conversation history, one
// conversation per day ending today, with cohort-scripted metric drift.
func generateConversations(ctx context.Context, config *Config, patients []Patient, stats *Stats) []Conversation {
	logger.Get().Info(ctx, "generating conversations",
		logger.Int("patients", len(patients)),
		logger.Int("perPatient", config.ConversationsPer))

	conversations := make([]Conversation, 0, len(patients)*config.ConversationsPer)
	now := time.Now().UTC()

	for _, p := range patients {
		for t := 0; t < config.ConversationsPer; t++ {
			progress := 0.0
			if config.ConversationsPer > 1 {
				progress = float64(t) / float64(config.ConversationsPer-1)
			}
			startedAt := now.Add(-time.Duration(config.ConversationsPer-1-t) * 24 * time.Hour)
			conversations = append(conversations, generateSingleConversation(p, progress, startedAt))
		}
	}

	stats.ConversationsGenerated = len(conversations)
	logger.Get().Info(ctx, "generated conversations successfully", logger.Int("count", len(conversations)))
	return conversations
}

// generateSingleConversation interpolates the cohort trajectory at the
// given progress and layers on a little noise. Occasionally a metric is
// dropped to exercise missing-sample handling.
func generateSingleConversation(p Patient, progress float64, startedAt time.Time) Conversation {
	traj := cohortTrajectories[p.Cohort]

	metrics := make(map[string]*float64, len(traj))
	for key, tr := range traj {
		if oneIn(missingSampleOdds) {
			metrics[key] = nil
			continue
		}
		value := tr.start + (tr.end-tr.start)*progress
		value += (getRandomFloat()*2 - 1) * noiseAmplitude * value
		if value < 0 {
			value = 0
		}
		v := value
		metrics[key] = &v
	}

	duration := 300 + int(getRandomFloat()*600)
	return Conversation{
		ConversationID:  uuid.New().String(),
		PatientID:       p.Profile.PatientID,
		StartedAt:       startedAt.Format(time.RFC3339),
		DurationSeconds: duration,
		Summary:         fmt.Sprintf("simulated %s conversation", p.Cohort),
		Metrics:         metrics,
	}
}

// oneIn returns true with probability 1/n.
func oneIn(n int64) bool {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64() == 0
}
