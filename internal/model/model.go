// Package model defines the data types shared by the journal, catalog, and
// orchestrator: plug-in records, their parameters, and journal rows.
package model

import (
	"encoding/json"
	"fmt"
)

// PluginType identifies the plug-in format a record was discovered under.
type PluginType string

const (
	PluginTypeVST3 PluginType = "vst3"
	PluginTypeAUFX PluginType = "aufx"
)

// ValueKind tags the dynamic type carried by a ParameterValue.
type ValueKind int

const (
	ValueKindFloat ValueKind = iota
	ValueKindBool
	ValueKindText
)

// ParameterValue is a tagged union over the scalar types a loader may report
// for a plug-in parameter's default value. Coercion order when extracting
// from an untyped source is Float, then Bool, then Text.
type ParameterValue struct {
	Kind  ValueKind `json:"-"`
	Float float64   `json:"-"`
	Bool  bool      `json:"-"`
	Text  string    `json:"-"`
}

func FloatValue(f float64) ParameterValue { return ParameterValue{Kind: ValueKindFloat, Float: f} }
func BoolValue(b bool) ParameterValue     { return ParameterValue{Kind: ValueKindBool, Bool: b} }
func TextValue(s string) ParameterValue   { return ParameterValue{Kind: ValueKindText, Text: s} }

// MarshalJSON encodes a ParameterValue as its bare underlying scalar, so a
// PluginRecord serializes with parameter values exactly as the loader
// reported them (a number, a bool, or a string) rather than as a tagged
// union.
func (v ParameterValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

// UnmarshalJSON decodes a bare JSON scalar back into a ParameterValue,
// inferring Kind from the JSON type (number, bool, or string).
func (v *ParameterValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		*v = FloatValue(t)
	case bool:
		*v = BoolValue(t)
	case string:
		*v = TextValue(t)
	default:
		return fmt.Errorf("model: unsupported parameter value type %T", raw)
	}
	return nil
}

// MarshalYAML encodes a ParameterValue as its bare underlying scalar, the
// YAML counterpart of MarshalJSON.
func (v ParameterValue) MarshalYAML() (interface{}, error) { return v.Raw(), nil }

// Raw returns the underlying Go value (float64, bool, or string).
func (v ParameterValue) Raw() interface{} {
	switch v.Kind {
	case ValueKindFloat:
		return v.Float
	case ValueKindBool:
		return v.Bool
	default:
		return v.Text
	}
}

// PluginParameter is a single named control exposed by a plug-in at load
// time, carrying the value the loader reported for the plug-in's default
// state. No ranges are stored.
type PluginParameter struct {
	Name  string         `json:"name" yaml:"name"`
	Value ParameterValue `json:"value" yaml:"value"`
}

// PluginRecord is the unit of catalog storage: the identity and parameter
// surface extracted from one successfully loaded plug-in.
type PluginRecord struct {
	ID           string                     `json:"id" yaml:"id"`
	Name         string                     `json:"name" yaml:"name"`
	Path         string                     `json:"path" yaml:"path"`
	Filename     string                     `json:"filename" yaml:"filename"`
	PluginType   PluginType                 `json:"plugin_type" yaml:"plugin_type"`
	Manufacturer string                     `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Parameters   map[string]PluginParameter `json:"parameters" yaml:"parameters"`
	FileMtime    int64                      `json:"file_mtime" yaml:"file_mtime"`
}

// RecordID forms the deterministic "<type>/<file-stem>" catalog key.
func RecordID(t PluginType, stem string) string {
	return fmt.Sprintf("%s/%s", t, stem)
}

// JournalStatus is the lifecycle state of one journal row.
type JournalStatus string

const (
	StatusPending  JournalStatus = "pending"
	StatusScanning JournalStatus = "scanning"
	StatusSuccess  JournalStatus = "success"
	StatusFailed   JournalStatus = "failed"
	StatusTimeout  JournalStatus = "timeout"
)

// IsTerminal reports whether a status is one the orchestrator commits and
// drops the journal for.
func (s JournalStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusTimeout:
		return true
	default:
		return false
	}
}

// JournalEntry is the unit of scan-progress storage, keyed by the candidate
// plug-in's filesystem path (the only stable handle known at enumeration
// time, before the plug-in's content-derived catalog id exists).
type JournalEntry struct {
	PluginID      string     // filesystem path of the candidate
	TentativeName string     // name supplied by the probe
	PluginType    PluginType // type supplied by the probe
	Status        JournalStatus
	Record        *PluginRecord // non-nil iff Status == success
	ErrorMessage  string        // non-empty iff Status in {failed, timeout}
	Timestamp     int64         // unix seconds of last transition
}

// Candidate is one tuple the platform probe emits.
type Candidate struct {
	Path          string
	TentativeName string
	PluginType    PluginType
}
