package main

import (
	"context"
	"errors"
	"io"

	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/archive"
	"bitbucket.org/smartystreets/swapper/contracts"
	"bitbucket.org/smartystreets/swapper/core"
	"bitbucket.org/smartystreets/swapper/remote"
	"bitbucket.org/smartystreets/swapper/shell"
)

type UpdateApp struct {
	logger *logging.Logger
	config contracts.Config
	disk   *shell.DiskFileSystem
	output io.Writer
}

func NewUpdateApp(config contracts.Config, output io.Writer) *UpdateApp {
	return &UpdateApp{config: config, disk: shell.NewDiskFileSystem(), output: output}
}

func (this *UpdateApp) Run(ctx context.Context) error {
	raw, err := core.NewPayloadReader(this.disk).Read(this.config.PayloadPath)
	if err != nil {
		return &exitError{code: exitInvalidInput, err: err}
	}
	manifest, err := core.ParseManifest(raw)
	if err != nil {
		return &exitError{code: exitInvalidInput, err: err}
	}
	this.logger.Printf("[INFO] updating %d item(s) under %s", len(manifest.Items), this.config.InstallRoot)

	sink := core.NewEventChannel(64)
	engine := core.NewEngine(
		this.config,
		manifest,
		this.disk,
		this.downloader(),
		archive.NewExtractor(),
		shell.NewProcessTable(),
		shell.NewLauncher(),
		sink,
	)
	outcome := engine.Start(ctx)
	console := NewConsole(this.output, manifest)
	console.Drain(sink.Events())
	if !<-outcome {
		return &exitError{code: exitFailure, err: errUpdateFailed}
	}
	return nil
}

func (this *UpdateApp) downloader() contracts.Downloader {
	client := shell.NewHTTPClient(this.config.Transport)
	direct := remote.NewHTTPDownloader(client, this.disk, this.config.Transport.UserAgent)
	return remote.NewRetryDownloader(direct, this.config.Download.RetryDelays())
}

var errUpdateFailed = errors.New("update did not complete successfully")
