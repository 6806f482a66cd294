package remote

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/smartystreets/clock"
	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

type RetryDownloader struct {
	sleeper *clock.Sleeper
	logger  *logging.Logger
	inner   contracts.Downloader
	delays  []time.Duration
}

// NewRetryDownloader retries a failed download once per entry in delays,
// pausing for that entry's duration first.
func NewRetryDownloader(inner contracts.Downloader, delays []time.Duration) *RetryDownloader {
	return &RetryDownloader{inner: inner, delays: delays}
}

func (this *RetryDownloader) Download(ctx context.Context, request contracts.DownloadRequest) error {
	attempts := 0
	operation := func() error {
		attempts++
		err := this.inner.Download(ctx, request)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		this.logger.Printf("[WARN] download of %s failed (attempt %d), retry in %s: %v", request.RemoteAddress, attempts, next, err)
		request.Retrying(attempts, err, next)
	}

	schedule := backoff.WithContext(&fixedSchedule{delays: this.delays}, ctx)
	err := backoff.RetryNotifyWithTimer(operation, schedule, notify, &sleeperTimer{sleeper: this.sleeper})
	if err == nil {
		return nil
	}
	var downloadErr *contracts.DownloadError
	if errors.As(err, &downloadErr) {
		err = downloadErr.Err
	}
	return &contracts.DownloadError{URL: request.RemoteAddress, Attempts: attempts, Err: err}
}

/////////////////////////////////////////////////////////////////////////////////

type fixedSchedule struct {
	delays []time.Duration
	next   int
}

func (this *fixedSchedule) NextBackOff() time.Duration {
	if this.next >= len(this.delays) {
		return backoff.Stop
	}
	delay := this.delays[this.next]
	this.next++
	return delay
}

func (this *fixedSchedule) Reset() { this.next = 0 }

// sleeperTimer lets backoff wait through a clock.Sleeper so tests can
// record the pauses instead of taking them.
type sleeperTimer struct {
	sleeper *clock.Sleeper
	channel chan time.Time
}

func (this *sleeperTimer) Start(duration time.Duration) {
	this.sleeper.Sleep(duration)
	this.channel = make(chan time.Time, 1)
	this.channel <- time.Now()
}

func (this *sleeperTimer) Stop() {}

func (this *sleeperTimer) C() <-chan time.Time { return this.channel }
