// Package build drives a single Cirrus CI build through its lifecycle: resolve the
// owning repository, create the build, poll until it settles, and fetch its log.
//
// Polling is a small state machine over the reported status. Running statuses
// keep the loop going, COMPLETED ends it, and a failure status has to be seen on
// several consecutive checks before it counts, because the service sometimes
// reports a transient FAILED or ERRORED while it restarts infrastructure. A status
// outside the known vocabulary stops polling at once.
package build
