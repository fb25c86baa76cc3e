package merge

import (
	"errors"
	"fmt"
	"strings"
)

// PackageError reports a container that cannot be read or written: a corrupt
// zip, a missing required entry, or a failure writing an output entry.
type PackageError struct {
	Operation string
	Entry     string
	Cause     error
}

func (e *PackageError) Error() string {
	if e.Entry != "" && e.Cause != nil {
		return fmt.Sprintf("package error during %s of '%s': %v", e.Operation, e.Entry, e.Cause)
	} else if e.Entry != "" {
		return fmt.Sprintf("package error during %s of '%s'", e.Operation, e.Entry)
	} else if e.Cause != nil {
		return fmt.Sprintf("package error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("package error during %s", e.Operation)
}

func (e *PackageError) Unwrap() error {
	return e.Cause
}

// NewPackageError creates a new package error
func NewPackageError(operation, entry string, cause error) error {
	return &PackageError{
		Operation: operation,
		Entry:     entry,
		Cause:     cause,
	}
}

// PartEncodingError reports a document part whose bytes are not UTF-8 text
type PartEncodingError struct {
	Part string
}

func (e *PartEncodingError) Error() string {
	return fmt.Sprintf("document part '%s' is not valid UTF-8 text", e.Part)
}

// MediaSourceError reports a replacement image that could not be read
type MediaSourceError struct {
	Entry  string
	Source string
	Cause  error
}

func (e *MediaSourceError) Error() string {
	return fmt.Sprintf("failed to read replacement for '%s' from %s: %v", e.Entry, e.Source, e.Cause)
}

func (e *MediaSourceError) Unwrap() error {
	return e.Cause
}

// LoopFailure says why a loop directive could not be expanded
type LoopFailure int

const (
	// ReasonUnknownLoopVariable: the each-directive names a path with no
	// bound sequence. The part is left unexpanded.
	ReasonUnknownLoopVariable LoopFailure = iota
	// ReasonNestedLoop: an each-directive opened inside a loop body. The part
	// is left unexpanded.
	ReasonNestedLoop
	// ReasonUnclosedLoop: the part ended inside a loop body. The part is left
	// unexpanded.
	ReasonUnclosedLoop
	// ReasonUnmatchedEnd: an end directive had no open loop. It is left in
	// the output; the rest of the part is expanded.
	ReasonUnmatchedEnd
)

func (r LoopFailure) String() string {
	switch r {
	case ReasonUnknownLoopVariable:
		return "unknown loop variable"
	case ReasonNestedLoop:
		return "nested loop"
	case ReasonUnclosedLoop:
		return "unclosed loop"
	case ReasonUnmatchedEnd:
		return "unmatched end directive"
	default:
		return "unknown"
	}
}

// LoopDiagnostic describes a loop directive that was not expanded
type LoopDiagnostic struct {
	Part   string
	Path   string
	Reason LoopFailure
}

func (d LoopDiagnostic) Error() string {
	if d.Path != "" {
		return fmt.Sprintf("%s: %s '%s'", d.Part, d.Reason, d.Path)
	}
	return fmt.Sprintf("%s: %s", d.Part, d.Reason)
}

// Fatal reports whether the diagnostic left its part unexpanded
func (d LoopDiagnostic) Fatal() bool {
	return d.Reason != ReasonUnmatchedEnd
}

// Diagnostics lists the recovered problems of one render
type Diagnostics []LoopDiagnostic

// MissingPaths returns the loop paths that had no bound sequence
func (d Diagnostics) MissingPaths() []string {
	var paths []string
	for _, diag := range d {
		if diag.Reason == ReasonUnknownLoopVariable {
			paths = append(paths, diag.Path)
		}
	}
	return paths
}

// Err returns the diagnostics as an error, or nil if there are none
func (d Diagnostics) Err() error {
	if len(d) == 0 {
		return nil
	}
	return &StrictModeError{Diagnostics: d}
}

// StrictModeError is returned by renders in strict mode when a loop
// directive could not be expanded
type StrictModeError struct {
	Diagnostics Diagnostics
}

func (e *StrictModeError) Error() string {
	if len(e.Diagnostics) == 1 {
		return fmt.Sprintf("strict mode: %v", e.Diagnostics[0])
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("strict mode: %d loop directives not expanded:", len(e.Diagnostics)))
	for _, d := range e.Diagnostics {
		parts = append(parts, fmt.Sprintf("  %v", d))
	}
	return strings.Join(parts, "\n")
}

// IsPackageError checks if an error is a package error
func IsPackageError(err error) bool {
	var target *PackageError
	return errors.As(err, &target)
}

// IsPartEncodingError checks if an error is a part encoding error
func IsPartEncodingError(err error) bool {
	var target *PartEncodingError
	return errors.As(err, &target)
}

// IsMediaSourceError checks if an error is a media source error
func IsMediaSourceError(err error) bool {
	var target *MediaSourceError
	return errors.As(err, &target)
}

// IsStrictModeError checks if an error is a strict mode error
func IsStrictModeError(err error) bool {
	var target *StrictModeError
	return errors.As(err, &target)
}
