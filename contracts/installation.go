package contracts

import "context"

// ProcessTable answers which executables are currently running.
type ProcessTable interface {
	Names(ctx context.Context) ([]string, error)
}

// Launcher starts an executable as an independent process.
type Launcher interface {
	Launch(path string) error
}
