package llm

import (
	"context"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// backoffFactory returns a fresh retry schedule for each call, since
// backoff.BackOff values keep state and cannot be shared across goroutines
type backoffFactory func() backoff.BackOff

func newBackoffFactory(cfg config.LLMConfig) backoffFactory {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 1 * time.Second
		b.MaxInterval = 10 * time.Second
		b.MaxElapsedTime = time.Duration(cfg.Timeout) * time.Second
		b.Multiplier = 2.0
		return backoff.WithMaxRetries(b, uint64(retries))
	}
}

// retry runs op until it succeeds, returns a non-retryable error or the
// schedule is exhausted
func retry(ctx context.Context, schedule backoff.BackOff, logger *zap.Logger, op func() error) error {
	operation := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			logger.Warn("Retryable error occurred, will retry", zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(operation, backoff.WithContext(schedule, ctx))
}
