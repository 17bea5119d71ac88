//go:build !windows

package process

import "syscall"

// killTree sends SIGKILL to the process group led by pid. Chrome is started
// by rod's launcher in its own group, so this also reaches renderer and GPU
// helper processes.
func killTree(pid int) {
	// Best-effort; launcher.Kill() is the fallback
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
