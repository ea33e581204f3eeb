package errors

import (
	"fmt"
	"time"
)

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *CIError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *CIError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ConfigInvalid(path string, cause error) *CIError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file is invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *CIError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Query result errors

// QueryFailed reports a response that parsed fine but did not contain what the query asked for.
func QueryFailed(message string) *CIError {
	return New(CategoryQuery, SeverityFatal, message)
}

func RepositoryNotFound(owner, repo string) *CIError {
	return QueryFailed(fmt.Sprintf("repo not found: %s/%s", owner, repo)).
		WithContext("owner", owner).
		WithContext("repository", repo)
}

// Build lifecycle errors

func BuildFailed(buildID, status string) *CIError {
	return New(CategoryBuild, SeverityError, fmt.Sprintf("build %s was terminated: %s", buildID, status)).
		WithContext("build_id", buildID).
		WithContext("status", status)
}

func BuildTimeout(buildID string, limit time.Duration) *CIError {
	return New(CategoryTimeout, SeverityFatal, fmt.Sprintf("build %s timed out", buildID)).
		WithContext("build_id", buildID).
		WithContext("timeout", limit.String())
}

func UnknownStatus(buildID, status string) *CIError {
	return New(CategoryStatus, SeverityFatal, fmt.Sprintf("build %s returned unknown status: %s", buildID, status)).
		WithContext("build_id", buildID).
		WithContext("status", status)
}
