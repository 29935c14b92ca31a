package mail

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubMailer struct {
	mu       sync.Mutex
	calls    int
	failures int
	err      error
	block    bool
}

func (s *stubMailer) Send(ctx context.Context, _, _, _ string) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if fail {
		return s.err
	}
	return nil
}

func newTestRetrying(next Mailer, timeout time.Duration, retries int) *RetryingMailer {
	m := NewRetryingMailer(next, timeout, retries, zap.NewNop())
	m.backoff = time.Millisecond
	return m
}

func TestRetryingMailer_RetriesOnce(t *testing.T) {
	stub := &stubMailer{failures: 1, err: errors.New("503")}
	err := newTestRetrying(stub, time.Second, 1).Send(context.Background(), "a@example.com", "s", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestRetryingMailer_GivesUp(t *testing.T) {
	boom := errors.New("503")
	stub := &stubMailer{failures: 10, err: boom}
	err := newTestRetrying(stub, time.Second, 1).Send(context.Background(), "a@example.com", "s", "b")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, stub.calls)
}

func TestRetryingMailer_TimeoutBoundsEachAttempt(t *testing.T) {
	stub := &stubMailer{block: true}
	start := time.Now()
	err := newTestRetrying(stub, 20*time.Millisecond, 1).Send(context.Background(), "a@example.com", "s", "b")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, stub.calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetryingMailer_StopsWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &stubMailer{block: true}
	err := newTestRetrying(stub, time.Second, 3).Send(ctx, "a@example.com", "s", "b")
	require.Error(t, err)
	assert.LessOrEqual(t, stub.calls, 1)
}

func TestRenderVerificationEmail(t *testing.T) {
	body, err := RenderVerificationEmail("123456", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, body, "<strong>123456</strong>")
	assert.Contains(t, body, "10 minutes")
	assert.True(t, strings.HasPrefix(body, "<h1>"))
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer("noreply@example.com", zap.NewNop())
	require.NoError(t, m.Send(context.Background(), "a@example.com", VerificationSubject, "<p>123456</p>"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.Send(ctx, "a@example.com", VerificationSubject, ""), context.Canceled)
}

func TestNewResendMailer_RequiresKey(t *testing.T) {
	_, err := NewResendMailer("", "noreply@example.com")
	require.Error(t, err)

	m, err := NewResendMailer("re_test", "noreply@example.com")
	require.NoError(t, err)
	assert.NotNil(t, m)
}
