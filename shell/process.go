package shell

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

type ProcessTable struct{}

func NewProcessTable() *ProcessTable {
	return &ProcessTable{}
}

// Names lists the executable names of running processes. Processes that
// vanish or deny access while being inspected are skipped.
func (this *ProcessTable) Names(ctx context.Context) (names []string, err error) {
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	for _, running := range processes {
		name, err := running.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
