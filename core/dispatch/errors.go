package dispatch

import "errors"

// ErrOfferNoLongerActive is returned when a response races with an expiry or
// a prior acceptance. It is an expected outcome, not a system fault.
var ErrOfferNoLongerActive = errors.New("dispatch: offer no longer active")

// ErrOfferNotOwned is returned when a provider responds to an offer that was
// not addressed to them.
var ErrOfferNotOwned = errors.New("dispatch: offer not owned by provider")

// ErrMissionNotFound is returned for unknown mission IDs.
var ErrMissionNotFound = errors.New("dispatch: mission not found")

// ErrOfferNotFound is returned for unknown offer IDs.
var ErrOfferNotFound = errors.New("dispatch: offer not found")

// ErrMissionNotActive is returned when an operation requires a mission that
// is still dispatching.
var ErrMissionNotActive = errors.New("dispatch: mission not active")
