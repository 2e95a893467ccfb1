package tasks

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultWatchInterval is the polling interval used when none is configured.
const DefaultWatchInterval = 5 * time.Second

// Watch reloads progress every interval until ctx is done. Failed polls are reported inline and polling continues.
//
// It returns the number of polls made.
func (c *Controller) Watch(ctx context.Context, interval time.Duration) int {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	polls := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			<-ctx.Done()
			return polls
		}
		if ctx.Err() != nil {
			return polls
		}

		polls++
		c.LoadProgress(ctx)
		sendProgress(c.progress, watchUpdate(polls, c.Progress()))
	}
}
