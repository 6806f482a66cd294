package contracts

import (
	"context"
	"time"
)

type Downloader interface {
	Download(ctx context.Context, request DownloadRequest) error
}

type DownloadRequest struct {
	RemoteAddress string
	LocalPath     string

	// OnProgress, when set, receives the running byte count and the total
	// announced by the remote (zero or negative when unknown).
	OnProgress func(received, total int64)

	// OnRetry, when set, hears about each failed attempt that will be retried.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (this DownloadRequest) Report(received, total int64) {
	if this.OnProgress != nil {
		this.OnProgress(received, total)
	}
}

func (this DownloadRequest) Retrying(attempt int, err error, delay time.Duration) {
	if this.OnRetry != nil {
		this.OnRetry(attempt, err, delay)
	}
}
