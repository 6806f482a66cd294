package core

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/smartystreets/clock"
	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

// ProcessWaiter polls the process table until a named program is gone.
type ProcessWaiter struct {
	sleeper  *clock.Sleeper
	logger   *logging.Logger
	table    contracts.ProcessTable
	interval time.Duration
	timeout  time.Duration
}

func NewProcessWaiter(table contracts.ProcessTable, config contracts.ProcessConfig) *ProcessWaiter {
	return &ProcessWaiter{table: table, interval: config.PollInterval(), timeout: config.Timeout()}
}

// Wait reports whether the process was seen to exit before the timeout.
// Giving up is not an error: the caller proceeds either way.
func (this *ProcessWaiter) Wait(ctx context.Context, processName string) bool {
	name := stripExtension(processName)
	if name == "" {
		return true
	}
	polls := 0
	if this.interval > 0 {
		polls = int(this.timeout / this.interval)
	}
	for attempt := 0; ; attempt++ {
		running, err := this.running(ctx, name)
		if err != nil {
			this.logger.Printf("[WARN] could not list processes: %v", err)
		} else if !running {
			return true
		}
		if attempt >= polls || ctx.Err() != nil {
			this.logger.Printf("[WARN] %s still running after %s; continuing", processName, this.timeout)
			return false
		}
		this.sleeper.Sleep(this.interval)
	}
}

func (this *ProcessWaiter) running(ctx context.Context, name string) (bool, error) {
	names, err := this.table.Names(ctx)
	if err != nil {
		return false, err
	}
	for _, candidate := range names {
		if strings.EqualFold(stripExtension(candidate), name) {
			return true, nil
		}
	}
	return false, nil
}

func stripExtension(name string) string {
	name = strings.TrimSpace(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
