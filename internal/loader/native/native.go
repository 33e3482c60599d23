// Package native is the FFI boundary the worker would link against to talk
// to a real native audio plug-in host SDK. Isolating it in its own package
// means the worker binary is the only process that ever links the native
// library. The SDK binding itself is an external collaborator and out of
// scope for this repository; this package only documents and stubs the
// integration point.
package native

import (
	"errors"

	"github.com/twardoch/pedalboard-pluginary/internal/loader"
	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

// ErrNotImplemented is returned by Open and Parameters until a native SDK
// binding is wired in; Name and Manufacturer report nothing and Close
// succeeds. Production deployments supply their own loader.Loader built
// against the host SDK; this stub exists only so the package compiles and
// documents the expected shape.
var ErrNotImplemented = errors.New("native: no plug-in host SDK linked into this build")

type stub struct{}

// New returns a loader.Loader stub that always fails with
// ErrNotImplemented. Replace with a real SDK binding to go into
// production.
func New() loader.Loader { return stub{} }

func (stub) Open(path, tentativeName string) (loader.Handle, error) { return nil, ErrNotImplemented }
func (stub) Name(loader.Handle) (string, bool)                      { return "", false }
func (stub) Manufacturer(loader.Handle) (string, bool)              { return "", false }
func (stub) Parameters(loader.Handle) (map[string]model.ParameterValue, error) {
	return nil, ErrNotImplemented
}
func (stub) Close(loader.Handle) error { return nil }
