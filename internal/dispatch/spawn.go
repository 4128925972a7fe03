package dispatch

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/desyatkoff/hydock/internal/util"
)

// ProcessSpawner starts children in their own session with stdio bound to
// /dev/null, then waits for them on a goroutine so they never linger as
// zombies.
type ProcessSpawner struct {
	logger *util.Logger
	// exited, when set, receives the wait error of every reaped child.
	exited func(name string, err error)
}

// NewProcessSpawner returns a spawner logging child exits at debug level.
func NewProcessSpawner(logger *util.Logger) *ProcessSpawner {
	return &ProcessSpawner{logger: logger}
}

// Spawn starts name with args and returns once the process is running.
func (s *ProcessSpawner) Spawn(name string, args ...string) error {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", name, err)
	}
	go func() {
		err := cmd.Wait()
		if err != nil {
			s.logger.Debugf("%s exited: %v", name, err)
		}
		if s.exited != nil {
			s.exited(name, err)
		}
	}()
	return nil
}

var _ Spawner = (*ProcessSpawner)(nil)
