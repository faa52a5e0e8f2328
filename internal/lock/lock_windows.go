//go:build windows

package lock

import "os"

// processAlive reports whether a process with the given pid exists. On
// Windows FindProcess fails for missing pids, unlike on unix where it
// always succeeds.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
