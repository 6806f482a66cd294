package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

// Pipeline acquires, verifies and stages each artifact in manifest order.
// A failing item is reported and skipped; it never stops the batch.
type Pipeline struct {
	logger      *logging.Logger
	downloader  contracts.Downloader
	verifier    verifier
	stager      stager
	notifier    contracts.Notifier
	stagingRoot string
}

type verifier interface {
	Verify(item contracts.Artifact, localPath string) error
}

type stager interface {
	Stage(item contracts.Artifact, downloadPath string) ([]contracts.StagedFile, error)
}

func NewPipeline(
	downloader contracts.Downloader,
	verifier verifier,
	stager stager,
	notifier contracts.Notifier,
	stagingRoot string,
) *Pipeline {
	return &Pipeline{
		downloader:  downloader,
		verifier:    verifier,
		stager:      stager,
		notifier:    notifier,
		stagingRoot: stagingRoot,
	}
}

// Process returns every staged file along with the accumulated item failures.
func (this *Pipeline) Process(ctx context.Context, items []contracts.Artifact) (staged []contracts.StagedFile, failures error) {
	for index := range items {
		this.notifier.ItemStatus(index, contracts.StatusPending, contracts.UnknownSize)
	}
	progress := newProgressTracker(len(items))
	for index, item := range items {
		files, err := this.process(ctx, progress, index, item)
		if err != nil {
			this.logger.Printf("[WARN] %s: %v", item.DisplayName(), err)
			this.notifier.Error(err.Error())
			failures = multierror.Append(failures, err)
		}
		staged = append(staged, files...)
		this.notifier.OverallProgress(progress.Item(index, 100), item.DisplayName())
	}
	return staged, failures
}

func (this *Pipeline) process(ctx context.Context, progress *progressTracker, index int, item contracts.Artifact) ([]contracts.StagedFile, error) {
	sizeText := contracts.UnknownSize
	this.notifier.ItemStatus(index, contracts.StatusDownloading, sizeText)

	request := contracts.DownloadRequest{
		RemoteAddress: item.URL,
		LocalPath:     filepath.Join(this.stagingRoot, longID()+item.Extension()),
		OnProgress: func(received, total int64) {
			sizeText = formatTransfer(received, total)
			this.notifier.ItemStatus(index, contracts.StatusDownloading, sizeText)
			overall := progress.Item(index, percentOf(received, total))
			this.notifier.OverallProgress(overall, progress.Detail(received, total))
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			message := fmt.Sprintf("retrying %s in %s (attempt %d failed): %v", item.DisplayName(), delay, attempt, err)
			this.notifier.OverallProgress(progress.Item(index, 0), message)
		},
	}
	if err := this.downloader.Download(ctx, request); err != nil {
		this.notifier.ItemStatus(index, contracts.StatusFailed, sizeText)
		return nil, err
	}

	if item.Checksum != "" {
		this.notifier.ItemStatus(index, contracts.StatusVerifying, sizeText)
		if err := this.verifier.Verify(item, request.LocalPath); err != nil {
			this.notifier.ItemStatus(index, contracts.StatusVerifyFailed, sizeText)
			return nil, err
		}
	}

	this.notifier.ItemStatus(index, contracts.StatusStaging, sizeText)
	staged, err := this.stager.Stage(item, request.LocalPath)
	if err != nil {
		this.notifier.ItemStatus(index, contracts.StatusFailed, sizeText)
		return nil, err
	}

	this.notifier.ItemStatus(index, contracts.StatusDone, sizeText)
	this.logger.Printf("[INFO] staged %s (%d file(s))", item.DisplayName(), len(staged))
	return staged, nil
}
