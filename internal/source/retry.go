package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds re-reading a source after a failure.
type RetryPolicy struct {
	// Attempts is the number of retries after the first read.
	Attempts int
	// BaseDelay is the wait before the first retry; the n-th retry waits
	// n times BaseDelay.
	BaseDelay time.Duration
}

// DefaultRetryPolicy retries three times, one second apart and growing.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// linearBackOff waits 1x, 2x, 3x ... base between attempts.
type linearBackOff struct {
	base time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.base
}

func (b *linearBackOff) Reset() {
	b.n = 0
}

// ReadWithRetry reads src, retrying failed reads per policy. The returned
// error wraps the last read error once the retry budget is spent or ctx is
// done.
func ReadWithRetry(ctx context.Context, src Source, policy RetryPolicy, log logger.ILogger) (string, error) {
	retries := policy.Attempts
	if retries < 0 {
		retries = 0
	}

	var (
		content  string
		attempts int
		lastErr  error
	)

	operation := func() error {
		attempts++
		c, err := src.Read(ctx)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		content = c
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warningf("read failed, retrying: source=%s, attempt=%d, wait=%s, error=%v", src.Name(), attempts, wait, err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(&linearBackOff{base: policy.BaseDelay}, uint64(retries)), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		// A cancelled wait reports only ctx.Err().
		if lastErr != nil && !errors.Is(err, lastErr) {
			err = errors.Join(lastErr, err)
		}
		return "", fmt.Errorf("reading %s failed after %d attempts: %w", src.Name(), attempts, err)
	}

	if attempts > 1 {
		log.Infof("read succeeded after retry: source=%s, attempts=%d", src.Name(), attempts)
	}
	return content, nil
}
