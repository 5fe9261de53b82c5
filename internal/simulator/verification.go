package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/halcyonlabs/carepulse/pkg/logger"
)

// verifyTrends fetches each patient's 30-day trend and checks that the
// reported direction matches the cohort trajectory the patient was
// generated from.
func verifyTrends(ctx context.Context, config *Config, patients []Patient, stats *Stats) error {
	log.Printf("📈 Verifying trend directions for %d patients...", len(patients))

	client := newHTTPClient(config.Timeout)

	for _, p := range patients {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during trend verification: %w", ctx.Err())
		default:
		}

		url := fmt.Sprintf("%s/patients/%s/trend?window=30d", config.BaseURL, p.Profile.PatientID)
		resp, err := client.Get(url)
		if err != nil {
			return fmt.Errorf("failed to fetch trend for patient %s: %w", p.Profile.PatientID, err)
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read trend response for patient %s: %w", p.Profile.PatientID, err)
		}

		if resp.StatusCode != StatusOK {
			return fmt.Errorf("trend fetch for patient %s failed with HTTP %d: %s",
				p.Profile.PatientID, resp.StatusCode, string(body))
		}

		var summary TrendSummary
		if err := json.Unmarshal(body, &summary); err != nil {
			return fmt.Errorf("failed to decode trend for patient %s: %w", p.Profile.PatientID, err)
		}

		expected := string(p.Cohort)
		if summary.Direction == expected {
			stats.TrendsVerified++
			if config.Verbose {
				log.Printf("✅ Trend verified: %s is %s (%.1f -> %.1f)",
					p.Profile.PatientID, summary.Direction, summary.FirstHalfAvg, summary.SecondHalfAvg)
			}
		} else {
			stats.TrendMismatches++
			log.Printf("⚠️  Trend mismatch for %s: expected %s, got %s (%.1f -> %.1f)",
				p.Profile.PatientID, expected, summary.Direction, summary.FirstHalfAvg, summary.SecondHalfAvg)
		}
	}

	log.Printf("✅ Trend verification completed: %d verified, %d mismatches",
		stats.TrendsVerified, stats.TrendMismatches)
	return nil
}

// displayFinalStats logs the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var successRate float64
	if stats.ConversationsSubmitted > 0 {
		successRate = float64(stats.ConversationsAccepted) / float64(stats.ConversationsSubmitted) * PercentageMultiplier
	}

	var conversationsPerSecond float64
	if stats.Duration.Seconds() > 0 {
		conversationsPerSecond = float64(stats.ConversationsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("patientsRegistered", stats.PatientsRegistered),
		logger.Int("conversationsGenerated", stats.ConversationsGenerated),
		logger.Int("conversationsSubmitted", stats.ConversationsSubmitted),
		logger.Int("conversationsAccepted", stats.ConversationsAccepted),
		logger.Int("conversationsDuplicate", stats.ConversationsDuplicate),
		logger.Int("conversationsFailed", stats.ConversationsFailed),
		logger.Int("trendsVerified", stats.TrendsVerified),
		logger.Int("trendMismatches", stats.TrendMismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("conversationsPerSecond", conversationsPerSecond))
}
