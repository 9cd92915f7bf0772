package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	connectInitialDelay = 2 * time.Second
	connectMaxDelay     = 30 * time.Second
)

// retryDelay doubles from connectInitialDelay per attempt, capped at connectMaxDelay
func retryDelay(attempt int) time.Duration {
	delay := connectInitialDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= connectMaxDelay {
			return connectMaxDelay
		}
	}
	return delay
}

// ConnectWithRetry dials RabbitMQ until it succeeds, maxAttempts is reached or ctx is done.
// RabbitMQ often starts after the planner in compose deployments.
func ConnectWithRetry(ctx context.Context, amqpURL string, maxAttempts int, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		q, err := NewRabbitMQQueue(amqpURL, logger)
		if err == nil {
			logger.Info("connected_to_rabbitmq", zap.Int("attempt", attempt+1))
			return q, nil
		}
		lastErr = err

		if attempt == maxAttempts-1 {
			break
		}
		delay := retryDelay(attempt)
		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("rabbitmq unreachable after %d attempts: %w", maxAttempts, lastErr)
}
