package probe

import (
	"bufio"
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

// auvalLineRE matches auval -l lines of the form:
// "aufx CODE VEND - VENDOR: PLUGINNAME (VERSION)"
var auvalLineRE = regexp.MustCompile(`aufx\s+(\w+)\s+(\w+)\s+-\s+(.*?):\s+(.*?)\s+\((.*?)\)`)

// AuvalRunner runs "auval -l" (or an equivalent) and returns its stdout.
// Abstracted so tests can supply canned output without a macOS host.
type AuvalRunner interface {
	Run(ctx context.Context) (string, error)
}

// execAuvalRunner shells out to the real auval binary.
type execAuvalRunner struct{ timeout time.Duration }

// NewAuvalRunner returns an AuvalRunner that invokes the system's auval.
func NewAuvalRunner(timeout time.Duration) AuvalRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return execAuvalRunner{timeout: timeout}
}

func (r execAuvalRunner) Run(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "auval", "-l").Output()
	return string(out), err
}

// scanAudioUnits runs runner and parses its output into candidates. A nil
// runner or a failing/missing validator yields an empty, errorless result.
func scanAudioUnits(runner AuvalRunner) ([]model.Candidate, error) {
	if runner == nil {
		runner = NewAuvalRunner(0)
	}
	out, err := runner.Run(context.Background())
	if err != nil {
		return nil, nil
	}

	var candidates []model.Candidate
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		m := auvalLineRE.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		name := m[4]
		vendor := m[3]
		bundlePath := resolveAUBundlePath(name)
		candidates = append(candidates, model.Candidate{
			Path:          bundlePath,
			TentativeName: name,
			PluginType:    model.PluginTypeAUFX,
		})
		_ = vendor // vendor is carried in the loader's own metadata extraction, not the candidate tuple
	}
	return candidates, nil
}

// resolveAUBundlePath walks upward from a best-effort guess at the
// component's install location to the nearest .component/.bundle
// ancestor. auval's plain-text output does not reliably include a full
// path, so the standard AU install directories are searched by name; this
// mirrors how the probe resolves VST3 bundle directories.
func resolveAUBundlePath(name string) string {
	candidateDirs := []string{
		"/Library/Audio/Plug-Ins/Components",
	}
	if home, err := userHomeDir(); err == nil {
		candidateDirs = append([]string{filepath.Join(home, "Library", "Audio", "Plug-Ins", "Components")}, candidateDirs...)
	}
	for _, dir := range candidateDirs {
		guess := filepath.Join(dir, name+".component")
		if pathExists(guess) {
			return findBundleAncestor(guess)
		}
	}
	// Fall back to a synthetic path under the first standard directory so
	// the candidate still has a stable, unique plugin_id handle even when
	// the bundle cannot be located on disk.
	return filepath.Join(candidateDirs[0], name+".component")
}

func findBundleAncestor(path string) string {
	for p := path; p != "/" && p != "."; p = filepath.Dir(p) {
		ext := filepath.Ext(p)
		if ext == ".component" || ext == ".bundle" {
			return p
		}
	}
	return path
}
