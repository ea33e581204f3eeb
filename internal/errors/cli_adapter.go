package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Process exit codes.
const (
	ExitSuccess     = 0
	ExitBuildFailed = 1
	ExitError       = 2
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
// Only a confirmed build failure maps to 1; everything else that went wrong is 2.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if IsCategory(err, CategoryBuild) {
		return ExitBuildFailed
	}
	return ExitError
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if ce, ok := AsCIError(err); ok {
		return a.formatCIError(ce)
	}

	if c, ok := err.(Categorized); ok {
		return fmt.Sprintf("%s: %v", c.ErrorCategory(), err)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatCIError formats a CIError for display.
func (a *CLIErrorAdapter) formatCIError(err *CIError) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategoryValidation:
		msg := err.Message
		if len(err.Context) > 0 {
			msg = fmt.Sprintf("%s (%s)", msg, formatContext(err.Context))
		}
		if err.Cause != nil {
			msg = fmt.Sprintf("%s: %v", msg, err.Cause)
		}
		return msg
	case CategoryBuild:
		return err.Message
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

func formatContext(fields ContextFields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, ", ")
}

// Report logs and prints err without exiting and returns the exit code for it.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintf(a.out, "%s\n", a.FormatError(err))
	return a.ExitCodeFor(err)
}

// shouldLog reports whether err needs a log record besides the printed message.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	return a.verbose || GetCategory(err) == CategoryInternal
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if ce, ok := AsCIError(err); ok {
		level := a.slogLevelFromSeverity(ce.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(ce.Category)),
		}
		for k, v := range ce.Context {
			attrs = append(attrs, slog.Any(k, v))
		}

		a.logger.LogAttrs(context.Background(), level, ce.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "category", string(GetCategory(err)), "error", err)
}

// slogLevelFromSeverity converts CIError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
