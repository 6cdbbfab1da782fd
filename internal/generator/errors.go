package generator

import (
	"errors"
	"fmt"
)

// ErrMissingGlossaryDirectory is returned when the SAF declares no
// glossarydir. No terms are fetched.
var ErrMissingGlossaryDirectory = errors.New("No glossary directory specified in SAF")

// ErrMissingCuratedDirectory is returned when a scope's SAF declares no
// curatedir, so there is no directory to read its terms from.
var ErrMissingCuratedDirectory = errors.New("no curated directory specified in SAF")

// ErrUnknownScope is wrapped in a ScopeResolutionError when term selection
// criteria name a scopetag the SAF does not declare.
var ErrUnknownScope = errors.New("scopetag not declared in SAF")

// UnknownVersionError reports a version tag that names no SAF version.
type UnknownVersionError struct {
	Tag string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("No such version: %s", e.Tag)
}

// ScopeResolutionError reports a referenced scope whose SAF could not be
// fetched or used. It aborts the whole generation.
type ScopeResolutionError struct {
	Scopetag string
	Err      error
}

func (e *ScopeResolutionError) Error() string {
	return fmt.Sprintf("resolve scope %s: %v", e.Scopetag, e.Err)
}

func (e *ScopeResolutionError) Unwrap() error { return e.Err }
