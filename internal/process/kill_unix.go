//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the whole process group of pid, which
// takes Chrome's renderer and GPU helpers down with the browser.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Errors ignored: launcher.Kill runs afterwards as a fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
