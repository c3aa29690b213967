package orchestrator

import (
	"errors"

	"github.com/smokyabdulrahman/salahme/internal/location"
	"github.com/smokyabdulrahman/salahme/internal/prayer"
)

// Phase is the coarse lifecycle position of the orchestrator.
type Phase string

const (
	PhaseInit       Phase = "init"
	PhaseResolving  Phase = "resolving"
	PhaseReady      Phase = "ready"
	PhaseUnresolved Phase = "unresolved"
)

// State is what the presentation layer renders. Error is empty when there
// is nothing to show.
type State struct {
	Location  *location.Record `json:"location" yaml:"location"`
	Prayers   []prayer.Entry   `json:"prayers" yaml:"prayers"`
	IsLoading bool             `json:"isLoading" yaml:"isLoading"`
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
	Phase     Phase            `json:"phase" yaml:"phase"`
}

// clone returns a copy that shares nothing with s.
func (s State) clone() State {
	out := s
	if s.Location != nil {
		rec := *s.Location
		out.Location = &rec
	}
	if s.Prayers != nil {
		out.Prayers = append([]prayer.Entry(nil), s.Prayers...)
	}
	return out
}

// Error messages shown to the user.
const (
	msgInvalidQuery    = "Please enter a valid city name"
	msgComputeFailed   = "Failed to calculate prayer times."
	msgUnexpectedError = "An unexpected error occurred."
)

// ErrSuperseded is returned when a newer request finished first and this
// result was discarded.
var ErrSuperseded = errors.New("request superseded by a newer one")

// ValidationError is returned for input rejected before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// CollaboratorError wraps a failure of geocoding, geolocation or the
// calculator.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *CollaboratorError) Unwrap() error { return e.Err }
