//go:build windows

package process

import (
	"fmt"
	"os/exec"
	"strconv"
)

// KillGroup force-kills pid and its child tree with taskkill.
func KillGroup(pid int) error {
	if pid <= 0 {
		return nil
	}
	out, err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill %d: %w: %s", pid, err, out)
	}
	return nil
}
