package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/smartystreets/clock"
	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

type EngineFileSystem interface {
	InstallerFileSystem
	contracts.PathLister
}

// Engine runs one complete update: download, verify, stage, wait for the
// application to exit, replace, clean up and relaunch. Exactly one
// Completed notification is emitted per run.
type Engine struct {
	sleeper    *clock.Sleeper
	logger     *logging.Logger
	config     contracts.Config
	manifest   contracts.Manifest
	fileSystem EngineFileSystem
	downloader contracts.Downloader
	extractor  contracts.Extractor
	processes  contracts.ProcessTable
	launcher   contracts.Launcher
	notifier   contracts.Notifier
}

func NewEngine(
	config contracts.Config,
	manifest contracts.Manifest,
	fileSystem EngineFileSystem,
	downloader contracts.Downloader,
	extractor contracts.Extractor,
	processes contracts.ProcessTable,
	launcher contracts.Launcher,
	notifier contracts.Notifier,
) *Engine {
	return &Engine{
		config:     config,
		manifest:   manifest,
		fileSystem: fileSystem,
		downloader: downloader,
		extractor:  extractor,
		processes:  processes,
		launcher:   launcher,
		notifier:   notifier,
	}
}

// Start runs the update on a background goroutine. The channel yields the
// final outcome once and is then closed.
func (this *Engine) Start(ctx context.Context) <-chan bool {
	outcome := make(chan bool, 1)
	go func() {
		defer close(outcome)
		outcome <- this.Run(ctx)
	}()
	return outcome
}

func (this *Engine) Run(ctx context.Context) (success bool) {
	stagingRoot := filepath.Join(this.config.InstallRoot, "update_temp_"+shortID())
	defer func() {
		if recovered := recover(); recovered != nil {
			this.abort(stagingRoot, fmt.Errorf("update aborted: %v", recovered))
			success = false
		}
		this.notifier.Completed(success)
	}()

	if err := this.fileSystem.MkdirAll(stagingRoot); err != nil {
		this.abort(stagingRoot, fmt.Errorf("could not create staging directory: %w", err))
		return false
	}
	return this.run(ctx, stagingRoot)
}

func (this *Engine) run(ctx context.Context, stagingRoot string) bool {
	installer := NewInstaller(this.fileSystem, this.launcher, this.notifier, this.config.InstallRoot, this.config.Install)
	installer.sleeper, installer.logger = this.sleeper, this.logger

	this.notifier.Phase(contracts.PhaseDownloading)
	staged, itemFailures := this.pipeline(stagingRoot).Process(ctx, this.manifest.Items)

	if this.manifest.MainProcess != "" {
		this.notifier.Phase(contracts.PhaseAwaitingExit)
		waiter := NewProcessWaiter(this.processes, this.config.Process)
		waiter.sleeper, waiter.logger = this.sleeper, this.logger
		waiter.Wait(ctx, this.manifest.MainProcess)
	}

	this.notifier.Phase(contracts.PhaseReplacing)
	fileFailures := installer.Replace(staged)

	this.notifier.Phase(contracts.PhaseCleaningUp)
	installer.Cleanup(stagingRoot)

	if this.manifest.MainExe != "" {
		this.notifier.Phase(contracts.PhaseRelaunching)
		if err := installer.Relaunch(this.manifest.MainExe); err != nil {
			this.logger.Printf("[ERROR] %v", err)
			this.notifier.Error(err.Error())
			return false
		}
	}

	failures := multierror.Append(itemFailures, fileFailures).ErrorOrNil()
	if failures == nil {
		this.logger.Printf("[INFO] update complete: %d file(s) installed", len(staged))
		return true
	}
	this.logger.Printf("[WARN] update finished with failures: %v", failures)
	return this.config.SuccessPolicy != contracts.SuccessStrict
}

func (this *Engine) pipeline(stagingRoot string) *Pipeline {
	stager := NewStager(this.fileSystem, this.extractor, this.config.InstallRoot, stagingRoot)
	stager.logger = this.logger
	pipeline := NewPipeline(this.downloader, NewChecksumVerifier(this.fileSystem), stager, this.notifier, stagingRoot)
	pipeline.logger = this.logger
	return pipeline
}

func (this *Engine) abort(stagingRoot string, err error) {
	this.logger.Printf("[ERROR] %v", err)
	this.notifier.Error(err.Error())
	if cleanupErr := this.fileSystem.DeleteAll(stagingRoot); cleanupErr != nil {
		this.logger.Printf("[WARN] could not remove staging directory %s: %v", stagingRoot, cleanupErr)
	}
}
