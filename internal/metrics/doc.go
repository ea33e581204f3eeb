// Package metrics provides observability hooks for API calls and build tracking.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never nil-check:
//
//	client, err := api.New(token, api.WithRecorder(metrics.NoopRecorder{}))
//
// The CLI swaps in a PrometheusRecorder when a metrics file is requested and
// writes the registry to disk with WriteTextfile before exiting, since a
// short-lived process has nothing to be scraped.
package metrics
