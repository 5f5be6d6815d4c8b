package pricing

import "errors"

var (
	// ErrRouteNotFound means no rate card exists for an origin/destination pair.
	ErrRouteNotFound = errors.New("no rate card for route")

	// ErrRateUnavailable means the rate table has no cell for the requested
	// tier and regime, e.g. a full-load volume above the top defined tier.
	// This is a data gap, not a caller error.
	ErrRateUnavailable = errors.New("rate unavailable for volume tier")

	// ErrDateTooFar means the pickup date lies beyond the forecast horizon.
	ErrDateTooFar = errors.New("pickup date beyond forecast horizon")
)
