package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStep       = "step"
	KeyRepo       = "repository"
	KeyRemote     = "remote"
	KeyBranch     = "branch"
	KeyCommit     = "commit"
	KeyPlatform   = "platform"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyStatus     = "status"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Step(name string) slog.Attr      { return slog.String(KeyStep, name) }
func Repository(p string) slog.Attr   { return slog.String(KeyRepo, p) }
func Remote(r string) slog.Attr       { return slog.String(KeyRemote, r) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Commit(h string) slog.Attr       { return slog.String(KeyCommit, h) }
func Platform(p string) slog.Attr     { return slog.String(KeyPlatform, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
