package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/smartystreets/clock"
	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

type InstallerFileSystem interface {
	contracts.FileOpener
	contracts.FileCreator
	contracts.FileChecker
	contracts.Deleter
	contracts.TreeDeleter
	contracts.DirectoryMaker
	contracts.Renamer
}

// Installer moves staged files over the installation, removes the staging
// area and restarts the application.
type Installer struct {
	sleeper     *clock.Sleeper
	logger      *logging.Logger
	fileSystem  InstallerFileSystem
	launcher    contracts.Launcher
	notifier    contracts.Notifier
	installRoot string
	maxAttempts int
	retryDelay  time.Duration
}

func NewInstaller(
	fileSystem InstallerFileSystem,
	launcher contracts.Launcher,
	notifier contracts.Notifier,
	installRoot string,
	config contracts.InstallConfig,
) *Installer {
	return &Installer{
		fileSystem:  fileSystem,
		launcher:    launcher,
		notifier:    notifier,
		installRoot: installRoot,
		maxAttempts: config.MaxAttempts,
		retryDelay:  config.RetryDelay(),
	}
}

// Replace installs each staged file, retrying while the target is locked.
// A file that cannot be replaced is reported and skipped.
func (this *Installer) Replace(files []contracts.StagedFile) (failures error) {
	total := len(files)
	for i, file := range files {
		this.notifier.OverallProgress((i+1)*100/total, fmt.Sprintf("replacing %s (%d/%d)", filepath.Base(file.Target), i+1, total))
		if err := this.replaceWithRetry(file); err != nil {
			this.logger.Printf("[ERROR] %v", err)
			this.notifier.Error(err.Error())
			failures = multierror.Append(failures, err)
		}
	}
	return failures
}

func (this *Installer) replaceWithRetry(file contracts.StagedFile) error {
	for attempt := 1; ; attempt++ {
		err := this.replace(file)
		if err == nil {
			return nil
		}
		if attempt >= this.maxAttempts {
			return &contracts.ReplacementError{Target: file.Target, Attempts: attempt, Err: err}
		}
		this.logger.Printf("[WARN] replacing %s failed (attempt %d), retry in %s: %v", file.Target, attempt, this.retryDelay, err)
		this.sleeper.Sleep(this.retryDelay)
	}
}

// replace copies the staged file next to its target first, so the target is
// only ever missing for the duration of a rename.
func (this *Installer) replace(file contracts.StagedFile) error {
	if err := this.fileSystem.MkdirAll(filepath.Dir(file.Target)); err != nil {
		return err
	}
	swap := file.Target + ".swap"
	if err := this.copy(file.Source, swap); err != nil {
		return err
	}
	if err := this.fileSystem.Delete(file.Target); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = this.fileSystem.Delete(swap)
		return err
	}
	if err := this.fileSystem.Rename(swap, file.Target); err != nil {
		_ = this.fileSystem.Delete(swap)
		return err
	}
	return nil
}

func (this *Installer) copy(source, target string) error {
	reader, err := this.fileSystem.Open(source)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	writer, err := this.fileSystem.Create(target)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, reader)
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Cleanup removes the staging area. Failure only leaves litter behind.
func (this *Installer) Cleanup(stagingRoot string) {
	if err := this.fileSystem.DeleteAll(stagingRoot); err != nil {
		this.logger.Printf("[WARN] could not remove staging directory %s: %v", stagingRoot, err)
	}
}

// Relaunch starts the main executable when it exists inside the install root.
func (this *Installer) Relaunch(mainExe string) error {
	if mainExe == "" {
		return nil
	}
	path, err := resolveWithin(this.installRoot, mainExe)
	if err != nil {
		return fmt.Errorf("relaunch: %w", err)
	}
	if info, err := this.fileSystem.Stat(path); err != nil || info.Mode().IsDir() {
		this.logger.Printf("[INFO] main executable %s not found; nothing to relaunch", path)
		return nil
	}
	if err = this.launcher.Launch(path); err != nil {
		return fmt.Errorf("relaunch: %w", err)
	}
	this.logger.Printf("[INFO] relaunched %s", path)
	return nil
}
