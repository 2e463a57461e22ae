package transport

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const maxTries = 3

// Retrying repeats reads and writes that fail with ErrTransport. Rejected
// writes and other errors are returned immediately.
type Retrying struct {
	next    Transport
	tries   int
	backoff time.Duration
	logger  *zap.SugaredLogger
}

// WithRetry wraps t. tries below 1 selects the default of three attempts.
func WithRetry(t Transport, tries int, backoff time.Duration, logger *zap.SugaredLogger) *Retrying {
	if tries < 1 {
		tries = maxTries
	}
	return &Retrying{next: t, tries: tries, backoff: backoff, logger: logger}
}

func (r *Retrying) Read(ctx context.Context, addr int) ([]byte, error) {
	var buf []byte
	err := r.do(ctx, "read", addr, func() error {
		var err error
		buf, err = r.next.Read(ctx, addr)
		return err
	})
	return buf, err
}

func (r *Retrying) Write(ctx context.Context, addr int, data []byte) error {
	return r.do(ctx, "write", addr, func() error {
		return r.next.Write(ctx, addr, data)
	})
}

func (r *Retrying) Close() error {
	return r.next.Close()
}

func (r *Retrying) do(ctx context.Context, op string, addr int, fn func() error) error {
	var err error
	for tries := 1; ; tries++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrTransport) || tries >= r.tries {
			return err
		}
		retriesTotal.Inc()
		if r.logger != nil {
			r.logger.Debugf("%s 0x%04X failed, retrying (attempt %d/%d): %v", op, addr, tries, r.tries, err)
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(r.backoff * time.Duration(tries)):
		}
	}
}
