// Package orchestrator implements the crash-safe scan orchestrator:
// it plans a work set from the probe and the catalog, dispatches
// one worker subprocess per pending plug-in under a bounded pool,
// supervises each with a wall-clock deadline, and commits successful
// journal rows into the catalog in one transaction before dropping the
// journal. Every step is built so that a crash at any point leaves either
// the pre-scan catalog plus a recoverable journal, or the post-scan
// catalog with no journal — never an intermediate, inconsistent state.
package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twardoch/pedalboard-pluginary/internal/catalog"
	"github.com/twardoch/pedalboard-pluginary/internal/journal"
	"github.com/twardoch/pedalboard-pluginary/internal/metrics"
	"github.com/twardoch/pedalboard-pluginary/internal/model"
	"github.com/twardoch/pedalboard-pluginary/internal/pluginerr"
	"github.com/twardoch/pedalboard-pluginary/internal/probe"
)

const defaultTimeout = 30 * time.Second

// Runner spawns one worker for req and waits for it to finish or ctx to
// expire. Implementations must guarantee the process is no longer running
// when Run returns, whatever the outcome. The default implementation
// spawns the compiled pluginary-worker binary; tests may inject an
// in-process fake to exercise orchestrator logic without real
// subprocesses.
type Runner interface {
	Run(ctx context.Context, req WorkerRequest) Outcome
}

// WorkerRequest is everything a Runner needs to invoke one worker.
type WorkerRequest struct {
	Path          string
	TentativeName string
	PluginType    model.PluginType
	JournalPath   string
}

// Outcome reports how a worker invocation ended, for the post-run
// reconciliation rule in superviseOne.
type Outcome struct {
	TimedOut   bool
	ExitErr    error // non-nil on nonzero exit or spawn failure
	StderrTail string
}

// ExecRunner spawns the real worker binary via os/exec.
type ExecRunner struct {
	// ExecPath is the worker binary to run.
	ExecPath string
	// ArgsPrefix is prepended to the standard worker flags, for example to
	// re-exec a test binary itself (go test's os.Args[0] trick) instead of
	// a separately built worker executable.
	ArgsPrefix []string
}

func (r ExecRunner) Run(ctx context.Context, req WorkerRequest) Outcome {
	args := append(append([]string{}, r.ArgsPrefix...),
		"--plugin-path", req.Path,
		"--plugin-name", req.TentativeName,
		"--plugin-type", string(req.PluginType),
		"--journal-path", req.JournalPath,
	)
	cmd := exec.CommandContext(ctx, r.ExecPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	timedOut := ctx.Err() == context.DeadlineExceeded
	tail := stderr.String()
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	return Outcome{TimedOut: timedOut, ExitErr: err, StderrTail: tail}
}

// Config controls one Orchestrator's behavior.
type Config struct {
	Concurrency int
	Timeout     time.Duration
	ExtraDirs   []string
	AuvalRunner probe.AuvalRunner
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
		if c.Concurrency > 8 {
			c.Concurrency = 8
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Orchestrator ties the probe, journal, and catalog together.
type Orchestrator struct {
	cfg         Config
	cat         *catalog.Store
	ignore      probe.IgnoreSet
	journalPath string
	runner      Runner
	metrics     metrics.Collector
}

// New builds an Orchestrator. journalPath is the fixed on-disk location of
// the scan journal; its presence at Scan time signals a resume.
func New(cfg Config, cat *catalog.Store, ignore probe.IgnoreSet, journalPath string, runner Runner, mc metrics.Collector) *Orchestrator {
	if mc == nil {
		mc = metrics.Noop()
	}
	return &Orchestrator{cfg: cfg.withDefaults(), cat: cat, ignore: ignore, journalPath: journalPath, runner: runner, metrics: mc}
}

// Summary is the operator-visible result of one scan.
type Summary struct {
	Success, Failed, Timeout int
	CandidatesTotal          int
	CommitError              error
	JournalPreserved         string // non-empty path if the journal survives this run
}

// Scan runs the full plan/dispatch/supervise/commit cycle. rescan clears
// both the catalog and any existing journal before planning.
func (o *Orchestrator) Scan(ctx context.Context, rescan bool) (Summary, error) {
	start := time.Now()
	defer func() { o.metrics.ScanDuration(time.Since(start)) }()

	if rescan {
		if err := o.cat.Clear(); err != nil {
			return Summary{}, pluginerr.New(pluginerr.CodeCommitFailed, "failed to clear catalog for rescan").WithCause(err)
		}
		if journal.Exists(o.journalPath) {
			if err := journal.Drop(o.journalPath, nil); err != nil {
				return Summary{}, pluginerr.New(pluginerr.CodeCorruptJournal, "failed to clear journal for rescan").WithCause(err)
			}
		}
	}

	candidates, err := probe.Probe(probe.Options{ExtraDirs: o.cfg.ExtraDirs, Ignore: o.ignore, AuvalRunner: o.cfg.AuvalRunner})
	if err != nil {
		return Summary{}, pluginerr.New(pluginerr.CodeInternal, "probe failed").WithCause(err)
	}

	if !rescan {
		known, err := o.cat.KnownPaths()
		if err != nil {
			return Summary{}, pluginerr.New(pluginerr.CodeCorruptCatalog, "failed to read known paths").WithCause(err)
		}
		candidates = diff(candidates, known)
	}

	j, err := journal.Open(o.journalPath)
	if err != nil {
		return Summary{}, err
	}
	defer j.Close()

	now := time.Now().Unix()
	if err := j.AddPending(candidates, now); err != nil {
		return Summary{}, pluginerr.New(pluginerr.CodeCorruptJournal, "failed to enqueue candidates").WithCause(err)
	}

	dispatchSet, err := o.dispatchSet(j)
	if err != nil {
		return Summary{}, err
	}

	if err := o.dispatch(ctx, j, dispatchSet); err != nil {
		return Summary{}, err
	}

	summary, err := o.commit(j)
	summary.CandidatesTotal = len(candidates)
	return summary, err
}

// dispatchSet reads pending ∪ scanning rows. The scanning set is
// non-empty only on resume after a kill, and those rows are retried from
// scratch.
func (o *Orchestrator) dispatchSet(j *journal.Store) ([]model.JournalEntry, error) {
	pending, err := j.GetByStatus(model.StatusPending)
	if err != nil {
		return nil, err
	}
	scanning, err := j.GetByStatus(model.StatusScanning)
	if err != nil {
		return nil, err
	}
	return append(pending, scanning...), nil
}

// dispatch runs one worker per entry under a bounded pool, each
// supervised with its own deadline.
func (o *Orchestrator) dispatch(ctx context.Context, j *journal.Store, entries []model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	paths := make([]string, len(entries))
	byPath := make(map[string]model.JournalEntry, len(entries))
	for i, e := range entries {
		paths[i] = e.PluginID
		byPath[e.PluginID] = e
	}
	ordered := newWorkQueue(paths, 50*time.Millisecond).drain()

	sem := make(chan struct{}, o.cfg.Concurrency)
	var wg sync.WaitGroup
	var inflight int64

	for _, path := range ordered {
		entry := byPath[path]
		sem <- struct{}{}
		wg.Add(1)
		go func(entry model.JournalEntry) {
			defer wg.Done()
			defer func() { <-sem }()
			n := atomic.AddInt64(&inflight, 1)
			o.metrics.WorkerPoolInflight(int(n))
			defer func() {
				n := atomic.AddInt64(&inflight, -1)
				o.metrics.WorkerPoolInflight(int(n))
			}()
			o.superviseOne(ctx, j, entry)
		}(entry)
	}
	wg.Wait()
	return nil
}

// superviseOne runs exactly one worker to terminal state, applying the
// reconciliation rule: if the worker's own journal write didn't land
// (crash, kill, timeout), the orchestrator writes the terminal state
// itself so no row is left in "scanning" once this returns.
func (o *Orchestrator) superviseOne(ctx context.Context, j *journal.Store, entry model.JournalEntry) {
	now := time.Now().Unix()
	// Mark scanning before the worker runs, guarding against a worker
	// that dies before it can claim its own row.
	_ = j.Update(entry.PluginID, model.StatusScanning, nil, "", now)

	taskCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	req := WorkerRequest{Path: entry.PluginID, TentativeName: entry.TentativeName, PluginType: entry.PluginType, JournalPath: j.Path()}
	outcome := o.runner.Run(taskCtx, req)

	current, err := j.GetStatus(entry.PluginID)
	if err != nil {
		return
	}
	if current.IsTerminal() {
		o.metrics.ScanResult(string(current))
		return
	}

	now = time.Now().Unix()
	switch {
	case outcome.TimedOut:
		_ = j.Update(entry.PluginID, model.StatusTimeout, nil, "worker exceeded deadline", now)
		o.metrics.ScanResult(string(model.StatusTimeout))
	case outcome.ExitErr != nil:
		msg := fmt.Sprintf("worker exited with error: %v; stderr: %s", outcome.ExitErr, outcome.StderrTail)
		_ = j.Update(entry.PluginID, model.StatusFailed, nil, msg, now)
		o.metrics.ScanResult(string(model.StatusFailed))
	default:
		// Exit 0 but the row never reached a terminal state: treat as a
		// failure rather than leaving the scan stuck in "scanning".
		_ = j.Update(entry.PluginID, model.StatusFailed, nil, "worker exited 0 without writing a terminal status", now)
		o.metrics.ScanResult(string(model.StatusFailed))
	}
}

// commit promotes every success row into the catalog in one transaction
// . If and only if it commits, the journal is dropped.
func (o *Orchestrator) commit(j *journal.Store) (Summary, error) {
	summaryCounts, err := j.Summary()
	if err != nil {
		return Summary{}, pluginerr.New(pluginerr.CodeCorruptJournal, "failed to summarize journal").WithCause(err)
	}
	summary := Summary{
		Success: summaryCounts[model.StatusSuccess],
		Failed:  summaryCounts[model.StatusFailed],
		Timeout: summaryCounts[model.StatusTimeout],
	}
	for status, n := range summaryCounts {
		o.metrics.JournalRows(string(status), n)
	}

	successRows, err := j.GetByStatus(model.StatusSuccess)
	if err != nil {
		return summary, pluginerr.New(pluginerr.CodeCorruptJournal, "failed to read successes").WithCause(err)
	}

	records := make([]model.PluginRecord, 0, len(successRows))
	for _, row := range successRows {
		if row.Record != nil {
			records = append(records, *row.Record)
		}
	}

	if err := o.cat.UpsertMany(records); err != nil {
		summary.CommitError = pluginerr.New(pluginerr.CodeCommitFailed, "catalog commit failed; journal preserved").WithCause(err)
		summary.JournalPreserved = o.journalPath
		return summary, summary.CommitError
	}

	path := j.Path()
	if err := journal.Drop(path, j); err != nil {
		// The catalog already committed successfully; a failure to
		// remove the journal file is surfaced but does not mean the
		// commit itself failed.
		summary.CommitError = pluginerr.New(pluginerr.CodeInternal, "catalog committed but journal drop failed").WithCause(err)
		summary.JournalPreserved = path
		return summary, summary.CommitError
	}
	return summary, nil
}

func diff(candidates []model.Candidate, known map[string]struct{}) []model.Candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		if _, ok := known[c.Path]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
