package domain

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies why an overlay could not be populated.
type FailureKind string

const (
	FailureNetwork   FailureKind = "network"   // transport error or non-2xx response
	FailureMalformed FailureKind = "malformed" // body is not a decodable FeatureCollection
	FailureRendering FailureKind = "rendering" // a feature or tile could not be drawn
)

var (
	// ErrAlreadyPopulated is returned when an overlay is populated a second time.
	ErrAlreadyPopulated = errors.New("overlay already populated")

	// ErrUnsupportedGeometry is returned when a feature's geometry cannot be
	// drawn by the renderer it was handed to.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")

	// ErrInvalidProperty is returned when a feature property has the wrong type.
	ErrInvalidProperty = errors.New("invalid feature property")
)

// LoadError records a failed overlay load along with its classification.
type LoadError struct {
	Overlay string
	Kind    FailureKind
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s overlay: %s failure: %v", e.Overlay, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// KindOf returns the failure kind carried by err. Context expiry counts as a
// network failure; anything else unclassified counts as a rendering failure.
func KindOf(err error) FailureKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	var ke interface{ FailureKind() FailureKind }
	if errors.As(err, &ke) {
		return ke.FailureKind()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureNetwork
	}
	return FailureRendering
}
