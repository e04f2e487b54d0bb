package harvest

import (
	"context"
	"time"
)

// Pacer is waited on before every story listing and story detail request.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps for the same duration before every request.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay never waits.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
