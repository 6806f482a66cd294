package main

import (
	"fmt"
	"os"
	"path/filepath"

	"bitbucket.org/smartystreets/swapper/contracts"
	"bitbucket.org/smartystreets/swapper/core"
	"bitbucket.org/smartystreets/swapper/shell"
)

// Options are the command-line settings; they take precedence over the
// configuration file and environment.
type Options struct {
	ConfigPath  string
	PayloadPath string
	InstallRoot string
	Strict      bool
}

func (this Options) Load() (contracts.Config, error) {
	loader := core.NewConfigLoader(shell.NewDiskFileSystem(), shell.NewEnvironment())
	config, err := loader.Load(this.ConfigPath)
	if err != nil {
		return contracts.Config{}, err
	}
	return this.apply(config, os.Executable)
}

func (this Options) apply(config contracts.Config, executable func() (string, error)) (contracts.Config, error) {
	if this.InstallRoot != "" {
		config.InstallRoot = this.InstallRoot
	}
	if this.PayloadPath != "" {
		config.PayloadPath = this.PayloadPath
	}
	if this.Strict {
		config.SuccessPolicy = contracts.SuccessStrict
	}
	if config.InstallRoot == "" {
		path, err := executable()
		if err != nil {
			return contracts.Config{}, fmt.Errorf("locate install root: %w", err)
		}
		config.InstallRoot = filepath.Dir(path)
	}
	root, err := filepath.Abs(config.InstallRoot)
	if err != nil {
		return contracts.Config{}, fmt.Errorf("resolve install root: %w", err)
	}
	config.InstallRoot = root
	if !filepath.IsAbs(config.PayloadPath) {
		config.PayloadPath = filepath.Join(root, config.PayloadPath)
	}
	return config, core.ValidateConfig(config)
}
