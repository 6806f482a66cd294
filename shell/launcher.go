package shell

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

type Launcher struct{}

func NewLauncher() *Launcher {
	return &Launcher{}
}

// Launch starts path with no arguments, detached from this process and
// working in the executable's own directory.
func (this *Launcher) Launch(path string) error {
	command := exec.Command(path)
	command.Dir = filepath.Dir(path)
	detach(command)

	if err := command.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	if err := command.Process.Release(); err != nil {
		return fmt.Errorf("release %s: %w", path, err)
	}
	return nil
}
