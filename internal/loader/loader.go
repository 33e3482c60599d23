// Package loader defines the contract workers use to open a plug-in file
// and extract its identity and parameter surface. The real implementation
// wraps a native audio plug-in host SDK and is out of scope for this
// repository (an external collaborator per the purpose & scope design);
// this package only defines the interface and the value coercion it
// requires, so that workers, tests, and the fake loader all agree on it.
package loader

import "github.com/twardoch/pedalboard-pluginary/internal/model"

// Handle is an opaque reference to a loaded plug-in instance, scoped to
// the Loader implementation that produced it.
type Handle interface{}

// Loader opens a plug-in file and exposes its metadata and parameters.
// Implementations may crash or hang the calling process; callers that
// need isolation run them inside a short-lived worker subprocess.
type Loader interface {
	// Open loads the plug-in at path. tentativeName is the probe-supplied
	// display name, used as a fallback when the handle exposes none.
	Open(path, tentativeName string) (Handle, error)

	// Name returns the loader-reported display name, if any.
	Name(h Handle) (string, bool)

	// Manufacturer returns the loader-reported manufacturer, if any.
	Manufacturer(h Handle) (string, bool)

	// Parameters returns each parameter's name and default value.
	Parameters(h Handle) (map[string]model.ParameterValue, error)

	// Close releases any resources held by h.
	Close(h Handle) error
}
