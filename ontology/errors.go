package ontology

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFile     = errors.New("missing ontology file")
	ErrMalformedStanza = errors.New("malformed stanza")
	ErrUnknownTerm     = errors.New("unknown term")
	ErrSlimResolution  = errors.New("slim term not in base ontology")
)

// MissingFileError reports an input path that is absent or not a regular file.
type MissingFileError struct {
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMissingFile, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s is not a regular file", ErrMissingFile, e.Path)
}

func (e *MissingFileError) Unwrap() error        { return e.Err }
func (e *MissingFileError) Is(target error) bool { return target == ErrMissingFile }

// MalformedStanzaError reports a [Term] stanza without an id tag.
type MalformedStanzaError struct {
	Line int // line number of the [Term] header
}

func (e *MalformedStanzaError) Error() string {
	return fmt.Sprintf("%s: [Term] at line %d has no id", ErrMalformedStanza, e.Line)
}

func (e *MalformedStanzaError) Is(target error) bool { return target == ErrMalformedStanza }

// UnknownTermError reports an id that matches neither a primary nor an
// alternate id.
type UnknownTermError struct {
	ID string
}

func (e *UnknownTermError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownTerm, e.ID)
}

func (e *UnknownTermError) Is(target error) bool { return target == ErrUnknownTerm }

// SlimResolutionError reports a slim stanza whose id is unknown to the base
// ontology, which usually means the two files come from different releases.
type SlimResolutionError struct {
	Path string
	ID   string
}

func (e *SlimResolutionError) Error() string {
	return fmt.Sprintf("%s: %s (from %s); check for a newer base ontology", ErrSlimResolution, e.ID, e.Path)
}

func (e *SlimResolutionError) Is(target error) bool { return target == ErrSlimResolution }
