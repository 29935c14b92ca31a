package mail

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// RetryingMailer bounds every attempt with a timeout and retries failed
// sends a fixed number of times.
type RetryingMailer struct {
	next       Mailer
	timeout    time.Duration
	maxRetries uint64
	backoff    time.Duration
	logger     *zap.Logger
}

// NewRetryingMailer wraps next. A non-positive timeout disables the bound.
func NewRetryingMailer(next Mailer, timeout time.Duration, maxRetries int, logger *zap.Logger) *RetryingMailer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingMailer{
		next:       next,
		timeout:    timeout,
		maxRetries: uint64(maxRetries),
		backoff:    200 * time.Millisecond,
		logger:     logger,
	}
}

func (m *RetryingMailer) Send(ctx context.Context, to, subject, bodyHTML string) error {
	b := retry.WithMaxRetries(m.maxRetries, retry.NewConstant(m.backoff))

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := m.sendOnce(ctx, to, subject, bodyHTML)
		if err == nil {
			return nil
		}
		m.logger.Warn("mail delivery attempt failed",
			zap.String("to", to),
			zap.Int("attempt", attempt),
			zap.Error(err))
		// the caller gave up; another attempt cannot succeed
		if errors.Is(ctx.Err(), context.Canceled) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (m *RetryingMailer) sendOnce(ctx context.Context, to, subject, bodyHTML string) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return m.next.Send(ctx, to, subject, bodyHTML)
}
