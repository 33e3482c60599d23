package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// workerExecPath locates the pluginary-worker binary: first alongside the
// currently running pluginary binary, then on PATH. Workers are spawned
// fresh per plug-in, so this is resolved once per scan, not once per
// candidate.
func workerExecPath() (string, error) {
	name := "pluginary-worker"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), name)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}

	return "", fmt.Errorf("could not locate %s: build it and place it next to pluginary or on PATH", name)
}
