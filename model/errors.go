package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is matched by every ConfigurationError via errors.Is
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a malformed or invalid configuration value.
// It aborts the affected stage and is never retried.
type ConfigurationError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid configuration %s=%v: %s", e.Key, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) succeed
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// StageError identifies the stage, page and segment implicated in a failure
type StageError struct {
	Stage     string
	Page      int
	SegmentID string
	Err       error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Stage)
	if e.Page > 0 {
		fmt.Fprintf(&b, " (page %d", e.Page)
		if e.SegmentID != "" {
			fmt.Fprintf(&b, ", segment %s", e.SegmentID)
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
