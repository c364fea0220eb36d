package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches, and the in-flight
// guard return these (optionally wrapped) so services can translate them into
// domain errors.
//
//   - ErrNotFound: no record for the key (e.g. organization has no settings row)
//   - ErrConflict: a competing write or lease holds the key
//   - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
