package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/halcyonlabs/carepulse/pkg/logger"
)

// Run executes the complete conversation simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting carepulse conversation simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("numPatients", config.NumPatients),
		logger.Int("conversationsPerPatient", config.ConversationsPer),
		logger.Int("workers", config.Workers))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	patients := generatePatients(ctx, config)

	if err := registerPatients(ctx, config, patients, stats); err != nil {
		return fmt.Errorf("patient registration failed: %w", err)
	}

	conversations := generateConversations(ctx, config, patients, stats)

	if err := submitConversations(ctx, config, conversations, stats); err != nil {
		return fmt.Errorf("conversation submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for conversations to be processed",
		logger.String("settleDelay", config.SettleDelay.String()))
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled during settle delay: %w", ctx.Err())
	case <-time.After(config.SettleDelay):
	}

	if err := verifyTrends(ctx, config, patients, stats); err != nil {
		return fmt.Errorf("trend verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.TrendMismatches > 0 {
		return fmt.Errorf("%d patients reported an unexpected trend direction", stats.TrendMismatches)
	}

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is reachable before simulating.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(config.BaseURL + "/healthz")
	if err != nil {
		return fmt.Errorf("service unreachable at %s: %w", config.BaseURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service unhealthy: HTTP %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}
