package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStatus     = "status"
	KeyRepo       = "repository"
	KeyOwner      = "owner"
	KeyBranch     = "branch"
	KeyTaskID     = "task_id"
	KeyTask       = "task"
	KeyCommand    = "command"
	KeyURL        = "url"
	KeyAttempt    = "attempt"
	KeyDelay      = "delay"
	KeyPayload    = "payload"
	KeyElapsed    = "elapsed"
	KeyConfirmed  = "confirmed"
	KeyTraceID    = "trace_id"
	KeyHTTPStatus = "http_status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Status(s string) slog.Attr         { return slog.String(KeyStatus, s) }
func Repository(r string) slog.Attr     { return slog.String(KeyRepo, r) }
func Owner(o string) slog.Attr          { return slog.String(KeyOwner, o) }
func Branch(b string) slog.Attr         { return slog.String(KeyBranch, b) }
func TaskID(id string) slog.Attr        { return slog.String(KeyTaskID, id) }
func Task(name string) slog.Attr        { return slog.String(KeyTask, name) }
func Command(name string) slog.Attr     { return slog.String(KeyCommand, name) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Attempt(n int) slog.Attr           { return slog.Int(KeyAttempt, n) }
func Delay(d time.Duration) slog.Attr   { return slog.Duration(KeyDelay, d) }
func Payload(p any) slog.Attr           { return slog.Any(KeyPayload, p) }
func Elapsed(d time.Duration) slog.Attr { return slog.Duration(KeyElapsed, d) }
func Confirmed(n int) slog.Attr         { return slog.Int(KeyConfirmed, n) }
func TraceID(id string) slog.Attr       { return slog.String(KeyTraceID, id) }
func HTTPStatus(code int) slog.Attr     { return slog.Int(KeyHTTPStatus, code) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
