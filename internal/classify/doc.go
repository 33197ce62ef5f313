// Package classify forwards text payloads to the optional classification
// backend and converts every backend failure into a degraded result.
//
// The gateway never raises past its own boundary: when the capability is
// absent the backend is not invoked at all, and when the backend errors the
// caller receives an unavailable Classification carrying the cause. The
// agent keeps running either way.
package classify
