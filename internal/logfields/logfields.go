package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDoc        = "doc"
	KeyStage      = "stage"
	KeyRunID      = "run_id"
	KeyDurationMS = "duration_ms"
	KeyIssues     = "issues"
	KeyDocs       = "docs"
	KeyAnchor     = "anchor"
	KeyTarget     = "target"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Doc(key string) slog.Attr        { return slog.String(KeyDoc, key) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Issues(n int) slog.Attr          { return slog.Int(KeyIssues, n) }
func Docs(n int) slog.Attr            { return slog.Int(KeyDocs, n) }
func Anchor(a string) slog.Attr       { return slog.String(KeyAnchor, a) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
