// Package fakeloader is a test double for loader.Loader: a scriptable stub
// keyed by plug-in path so scenario tests can make individual plug-ins
// succeed, fail, or hang without a real native SDK.
package fakeloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/twardoch/pedalboard-pluginary/internal/loader"
	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

// Behavior describes how the fake loader should react to Open for one path.
type Behavior struct {
	// Params are returned as the plug-in's parameters on success.
	Params map[string]model.ParameterValue
	// Name overrides the tentative name when non-empty.
	Name string
	// Manufacturer is reported if non-empty.
	Manufacturer string
	// Err, if non-nil, is returned from Open.
	Err error
	// Hang, if set, blocks Open until the context passed via
	// OpenContext is cancelled (simulating a hung loader call).
	Hang bool
	// Sleep, if positive, blocks Open for this long (or until ctx is
	// cancelled, whichever comes first) before proceeding, simulating a
	// slow but not hung load.
	Sleep time.Duration
}

type handle struct {
	path string
	b    Behavior
}

// Loader is a scriptable fake implementing loader.Loader.
type Loader struct {
	mu        sync.Mutex
	behaviors map[string]Behavior
	defaultB  Behavior
}

// New returns a fake loader with the given per-path behaviors. Paths not
// present in behaviors fall back to a successful empty-parameter load.
func New(behaviors map[string]Behavior) *Loader {
	return &Loader{behaviors: behaviors}
}

func (l *Loader) Open(path, tentativeName string) (loader.Handle, error) {
	return l.OpenContext(context.Background(), path, tentativeName)
}

// OpenContext is like Open but honors ctx cancellation for Hang behaviors,
// simulating a loader call a supervising deadline must kill.
func (l *Loader) OpenContext(ctx context.Context, path, tentativeName string) (loader.Handle, error) {
	l.mu.Lock()
	b, ok := l.behaviors[path]
	l.mu.Unlock()
	if !ok {
		b = l.defaultB
	}
	if b.Hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if b.Sleep > 0 {
		select {
		case <-time.After(b.Sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.Err != nil {
		return nil, b.Err
	}
	if b.Name == "" {
		b.Name = tentativeName
	}
	return &handle{path: path, b: b}, nil
}

func (l *Loader) Name(h loader.Handle) (string, bool) {
	hh := h.(*handle)
	return hh.b.Name, hh.b.Name != ""
}

func (l *Loader) Manufacturer(h loader.Handle) (string, bool) {
	hh := h.(*handle)
	return hh.b.Manufacturer, hh.b.Manufacturer != ""
}

func (l *Loader) Parameters(h loader.Handle) (map[string]model.ParameterValue, error) {
	hh := h.(*handle)
	return hh.b.Params, nil
}

func (l *Loader) Close(loader.Handle) error { return nil }

// ErrBoom is a canned error behaviors can use to simulate a loader crash.
var ErrBoom = errors.New("boom")

// SleepBehavior returns a Behavior whose Open blocks for d before
// succeeding, for tests that want a slow-but-not-hung load.
func SleepBehavior(d time.Duration, params map[string]model.ParameterValue) Behavior {
	return Behavior{Params: params, Sleep: d, Name: fmt.Sprintf("slept-%s", d)}
}
