// Package observability sets up the process logger.
package observability
