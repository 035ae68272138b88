package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrFatalInput marks input the run cannot proceed with (corrupt catalog,
	// unreadable mods folder).
	ErrFatalInput = errors.New("fatal input")
	// ErrItemFailure marks a failure confined to a single file or bundle.
	ErrItemFailure = errors.New("item failure")
	// ErrUnresolvable marks a requested asset the catalog cannot map to a bundle.
	ErrUnresolvable  = errors.New("unresolvable")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should stop the whole run rather than a single item.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrItemFailure), errors.Is(err, ErrUnresolvable):
		return false
	default:
		return true
	}
}

// HasMarker reports whether err already carries one of the sentinel markers.
func HasMarker(err error) bool {
	for _, marker := range []error{ErrFatalInput, ErrItemFailure, ErrUnresolvable, ErrExternalTool, ErrConfiguration, ErrTransient} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// ItemError pairs a failed item (file path, bundle path) with its cause.
type ItemError struct {
	Item string
	Err  error
}

func (e ItemError) Error() string {
	return e.Item + ": " + e.Err.Error()
}

func (e ItemError) Unwrap() error { return e.Err }

// ItemErrors aggregates per-item failures collected during a batch.
type ItemErrors []ItemError

// Add records a failure. Nil errors are ignored.
func (e *ItemErrors) Add(item string, err error) {
	if err == nil {
		return
	}
	*e = append(*e, ItemError{Item: item, Err: err})
}

// Err returns nil when nothing failed, otherwise the collection itself.
func (e ItemErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e ItemErrors) Error() string {
	if len(e) == 0 {
		return "no failures"
	}
	lines := make([]string, 0, len(e))
	for _, item := range e {
		lines = append(lines, item.Error())
	}
	sort.Strings(lines)
	return fmt.Sprintf("%d item(s) failed: %s", len(e), strings.Join(lines, "; "))
}

// Unwrap exposes the individual causes to errors.Is and errors.As.
func (e ItemErrors) Unwrap() []error {
	out := make([]error, 0, len(e))
	for _, item := range e {
		out = append(out, item)
	}
	return out
}
