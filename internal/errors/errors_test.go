package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestCIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CIError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
		{
			name:     "build failure",
			err:      BuildFailed("42", "FAILED"),
			expected: "build (error): build 42 was terminated: FAILED",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestCIError_WithContext(t *testing.T) {
	err := New(CategoryQuery, SeverityFatal, "unexpected response").
		WithContext("owner", "sio").
		WithContext("repository", "cirrus-run")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["owner"] != "sio" {
		t.Errorf("Context[owner] = %v, want sio", err.Context["owner"])
	}
	if err.Context["repository"] != "cirrus-run" {
		t.Errorf("Context[repository] = %v, want cirrus-run", err.Context["repository"])
	}
}

type categorizedStub struct{ cat ErrorCategory }

func (c categorizedStub) Error() string                { return "stub" }
func (c categorizedStub) ErrorCategory() ErrorCategory { return c.cat }

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	buildErr := BuildFailed("1", "ERRORED")
	wrapped := fmt.Errorf("waiting: %w", buildErr)
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match build category", configErr, CategoryBuild, false},
		{"wrapped build error matches build category", wrapped, CategoryBuild, true},
		{"foreign categorized error", categorizedStub{CategoryHTTP}, CategoryHTTP, true},
		{"standard error doesn't match any category", standardErr, CategoryInternal, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsCategory(test.err, test.category)
			if result != test.expected {
				t.Errorf("IsCategory() = %v, want %v", result, test.expected)
			}
		})
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory(plain) = %v, want internal", got)
	}
	if got := GetCategory(fmt.Errorf("x: %w", UnknownStatus("7", "PAUSED"))); got != CategoryStatus {
		t.Errorf("GetCategory(unknown status) = %v, want status", got)
	}
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("RepositoryNotFound", func(t *testing.T) {
		err := RepositoryNotFound("sio", "missing")
		if err.Category != CategoryQuery {
			t.Errorf("Category = %v, want %v", err.Category, CategoryQuery)
		}
		if err.Message != "repo not found: sio/missing" {
			t.Errorf("Message = %q", err.Message)
		}
	})

	t.Run("BuildTimeout", func(t *testing.T) {
		err := BuildTimeout("9", time.Hour)
		if err.Category != CategoryTimeout {
			t.Errorf("Category = %v, want %v", err.Category, CategoryTimeout)
		}
		if err.Context["timeout"] != "1h0m0s" {
			t.Errorf("Context[timeout] = %v", err.Context["timeout"])
		}
	})

	t.Run("ConfigInvalid", func(t *testing.T) {
		cause := fmt.Errorf("yaml: line 2")
		err := ConfigInvalid(".cirrus.yml", cause)
		if !stdErrors.Is(err, cause) {
			t.Errorf("Cause should match wrapped cause: %v", cause)
		}
	})
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"build failure", BuildFailed("1", "FAILED"), ExitBuildFailed},
		{"wrapped build failure", fmt.Errorf("run: %w", BuildFailed("1", "ABORTED")), ExitBuildFailed},
		{"timeout", BuildTimeout("1", time.Minute), ExitError},
		{"unknown status", UnknownStatus("1", "NEW"), ExitError},
		{"query", RepositoryNotFound("a", "b"), ExitError},
		{"transport", categorizedStub{CategoryHTTP}, ExitError},
		{"plain", fmt.Errorf("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config with cause", ConfigInvalid(".cirrus.yml", fmt.Errorf("invalid YAML")), "configuration file is invalid (path=.cirrus.yml): invalid YAML"},
		{"validation", ValidationFailed("github", "invalid repo identifier: x"), "validation failed (field=github, reason=invalid repo identifier: x)"},
		{"build", BuildFailed("7", "FAILED"), "build 7 was terminated: FAILED"},
		{"query", RepositoryNotFound("o", "r"), "query: repo not found: o/r"},
		{"categorized", categorizedStub{CategoryHTTP}, "http: stub"},
		{"plain", fmt.Errorf("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.FormatError(tt.err); got != tt.want {
				t.Errorf("FormatError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out, logs bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out

	if code := a.Report(nil); code != ExitSuccess {
		t.Errorf("Report(nil) = %d", code)
	}
	if code := a.Report(BuildFailed("9", "ERRORED")); code != ExitBuildFailed {
		t.Errorf("Report(build) = %d", code)
	}
	if got := out.String(); got != "build 9 was terminated: ERRORED\n" {
		t.Errorf("output = %q", got)
	}
	if logs.Len() != 0 {
		t.Errorf("categorized errors should not be logged, got %q", logs.String())
	}

	if code := a.Report(fmt.Errorf("boom")); code != ExitError {
		t.Errorf("Report(plain) = %d", code)
	}
	if !strings.Contains(logs.String(), "boom") {
		t.Errorf("unclassified errors should be logged, got %q", logs.String())
	}
}
