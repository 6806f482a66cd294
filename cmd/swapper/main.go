package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	var options Options

	cmd := &cobra.Command{
		Use:           "swapper",
		Short:         "Download, verify and install an application update, then restart it",
		Version:       ldflagsSoftwareVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := options.Load()
			if err != nil {
				return &exitError{code: exitInvalidInput, err: err}
			}
			return NewUpdateApp(config, os.Stderr).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&options.ConfigPath, "config", "", "Optional TOML configuration file")
	cmd.Flags().StringVar(&options.PayloadPath, "payload", "", "Payload file, relative to the install root (default \"update\")")
	cmd.Flags().StringVar(&options.InstallRoot, "root", "", "Installation directory (default: this executable's directory)")
	cmd.Flags().BoolVar(&options.Strict, "strict", false, "Report failure when any item or file could not be updated")
	cmd.SetVersionTemplate("swapper [{{.Version}}]\n")
	return cmd
}

const (
	exitFailure      = 1
	exitInvalidInput = 2
)

type exitError struct {
	code int
	err  error
}

func (this *exitError) Error() string { return this.err.Error() }
func (this *exitError) Unwrap() error { return this.err }

func exitCode(err error) int {
	var coded *exitError
	if errors.As(err, &coded) {
		return coded.code
	}
	return exitFailure
}

var ldflagsSoftwareVersion = "debug"
