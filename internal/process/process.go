// Package process terminates browser process trees left behind by rod.
package process

// KillTree kills pid and its children. Non-positive pids are ignored:
// on Unix, 0 and negative values address whole process groups including
// the caller's own.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	killTree(pid)
}
