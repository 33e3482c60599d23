// Package worker implements the one-shot plug-in load contract: a
// worker opens the journal, claims its assigned row, loads exactly one
// plug-in with the loader's diagnostics redirected away from the
// process's own stdio, writes the outcome back to the journal, and exits.
// It never retries, never touches the catalog, and never outlives one
// plug-in.
package worker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/twardoch/pedalboard-pluginary/internal/journal"
	"github.com/twardoch/pedalboard-pluginary/internal/loader"
	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

// Request identifies the single plug-in this worker invocation must load.
type Request struct {
	Path          string
	TentativeName string
	PluginType    model.PluginType
	JournalPath   string
}

// Run executes the full one-shot load contract against an already-open
// journal store and ld. It is the shared implementation behind the
// pluginary-worker binary and any in-process test harness that wants to
// exercise the same logic without a real subprocess.
func Run(req Request, j *journal.Store, ld loader.Loader) error {
	now := time.Now().Unix()

	// Step 1: claim the row. The orchestrator already moved it to
	// scanning before dispatch, but update is idempotent and a manual
	// retry may invoke the worker directly against a pending row.
	if err := j.Update(req.Path, model.StatusScanning, nil, "", now); err != nil {
		return fmt.Errorf("claim row: %w", err)
	}

	record, loadErr := loadOnce(req, ld)

	now = time.Now().Unix()
	if loadErr != nil {
		return j.Update(req.Path, model.StatusFailed, nil, loadErr.Error(), now)
	}
	return j.Update(req.Path, model.StatusSuccess, record, "", now)
}

// loadOnce performs the actual load with the loader's stdio redirected to
// an in-process sink so its diagnostics cannot pollute the worker's own
// stdout/stderr. Any panic raised while loading is
// recovered and reported the same way as a returned error, since a
// misbehaving plug-in loader is exactly the kind of fault this contract
// exists to contain.
func loadOnce(req Request, ld loader.Loader) (rec *model.PluginRecord, err error) {
	restore, sinkErr := redirectStdio()
	if sinkErr == nil {
		defer restore()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic loading plugin: %v", r)
		}
	}()

	h, openErr := ld.Open(req.Path, req.TentativeName)
	if openErr != nil {
		return nil, openErr
	}
	defer ld.Close(h)

	name, ok := ld.Name(h)
	if !ok || name == "" {
		name = stem(req.Path)
	}
	manufacturer, _ := ld.Manufacturer(h)

	params, paramErr := ld.Parameters(h)
	if paramErr != nil {
		return nil, paramErr
	}
	out := make(map[string]model.PluginParameter, len(params))
	for pname, v := range params {
		out[pname] = model.PluginParameter{Name: pname, Value: v}
	}

	var mtime int64
	if info, statErr := os.Stat(req.Path); statErr == nil {
		mtime = info.ModTime().Unix()
	}

	return &model.PluginRecord{
		ID:           model.RecordID(req.PluginType, stem(req.Path)),
		Name:         name,
		Path:         req.Path,
		Filename:     filepath.Base(req.Path),
		PluginType:   req.PluginType,
		Manufacturer: manufacturer,
		Parameters:   out,
		FileMtime:    mtime,
	}, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// redirectStdio points the os.Stdout and os.Stderr variables at an
// os.Pipe drained into a discarding sink, so Go code that writes through
// them during the load does not reach this process's real output. The
// underlying file descriptors 1 and 2 are not redirected: output that
// native code writes to them directly still reaches the real streams.
// Returns a restore func; callers skip redirection if creating the pipes
// fails.
func redirectStdio() (restore func(), err error) {
	origOut, origErr := os.Stdout, os.Stderr
	rOut, wOut, err := os.Pipe()
	if err != nil {
		return func() {}, err
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		wOut.Close()
		rOut.Close()
		return func() {}, err
	}
	os.Stdout, os.Stderr = wOut, wErr

	done := make(chan struct{})
	go func() {
		io.Copy(io.Discard, rOut)
		close(done)
	}()
	doneErr := make(chan struct{})
	go func() {
		io.Copy(io.Discard, rErr)
		close(doneErr)
	}()

	return func() {
		os.Stdout, os.Stderr = origOut, origErr
		wOut.Close()
		wErr.Close()
		<-done
		<-doneErr
		rOut.Close()
		rErr.Close()
	}, nil
}
