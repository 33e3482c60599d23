// Package probe enumerates candidate plug-in files on disk: every
// *.vst3 bundle under the platform's standard directories plus any
// operator-supplied extra directories, and, on macOS, every Audio Unit
// reported by auval.
package probe

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

// IgnoreSet is the subset of ignore.Set's behavior the probe depends on,
// kept as a narrow interface so tests can supply a trivial fake.
type IgnoreSet interface {
	Contains(id string) bool
}

// Options configures one probe run.
type Options struct {
	// GOOS overrides runtime.GOOS, for cross-platform directory-table
	// tests; empty means use the real host OS.
	GOOS string
	// ExtraDirs are operator-supplied directories to scan for VST3
	// bundles in addition to the OS standard locations.
	ExtraDirs []string
	// Ignore filters candidates whose "<type>/<stem>" id is already
	// ignored. Nil means nothing is filtered.
	Ignore IgnoreSet
	// AuvalRunner runs the Audio Unit validator; nil uses the real
	// "auval -l" on darwin and is skipped entirely on other platforms.
	AuvalRunner AuvalRunner
}

// Probe enumerates every candidate plug-in visible to opts.
func Probe(opts Options) ([]model.Candidate, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	var candidates []model.Candidate

	vst3Dirs := append(standardVST3Dirs(goos), opts.ExtraDirs...)
	vst3, err := scanVST3Dirs(vst3Dirs)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, vst3...)

	if goos == "darwin" {
		au, err := scanAudioUnits(opts.AuvalRunner)
		if err == nil {
			candidates = append(candidates, au...)
		}
		// A missing/failing validator yields an empty AU list, not an
		// error: other categories still proceed.
	}

	if opts.Ignore != nil {
		candidates = filterIgnored(candidates, opts.Ignore)
	}
	return candidates, nil
}

// standardVST3Dirs returns the OS-standard VST3 search paths for goos.
func standardVST3Dirs(goos string) []string {
	home, _ := os.UserHomeDir()
	switch goos {
	case "windows":
		pf := os.Getenv("ProgramFiles")
		if pf == "" {
			pf = `C:\Program Files`
		}
		pf86 := os.Getenv("ProgramFiles(x86)")
		if pf86 == "" {
			pf86 = `C:\Program Files (x86)`
		}
		return []string{
			filepath.Join(pf, "Common Files", "VST3"),
			filepath.Join(pf86, "Common Files", "VST3"),
		}
	case "darwin":
		return []string{
			filepath.Join(home, "Library", "Audio", "Plug-Ins", "VST3"),
			"/Library/Audio/Plug-Ins/VST3",
		}
	default: // linux and other unix-likes
		return []string{
			filepath.Join(home, ".vst3"),
			"/usr/lib/vst3",
			"/usr/local/lib/vst3",
		}
	}
}

// scanVST3Dirs walks dirs looking for *.vst3 entries (files on Windows,
// bundle directories on macOS/Linux). Non-existent directories are
// silently skipped.
func scanVST3Dirs(dirs []string) ([]model.Candidate, error) {
	var out []model.Candidate
	seen := make(map[string]struct{})

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !strings.EqualFold(filepath.Ext(entry.Name()), ".vst3") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			out = append(out, model.Candidate{
				Path:          path,
				TentativeName: stem,
				PluginType:    model.PluginTypeVST3,
			})
		}
	}
	return out, nil
}

func filterIgnored(candidates []model.Candidate, ignore IgnoreSet) []model.Candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		stem := strings.TrimSuffix(filepath.Base(c.Path), filepath.Ext(c.Path))
		id := model.RecordID(c.PluginType, stem)
		if ignore.Contains(id) {
			continue
		}
		out = append(out, c)
	}
	return out
}
