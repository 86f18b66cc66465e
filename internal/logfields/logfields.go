package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySite       = "site"
	KeyPage       = "page"
	KeyScript     = "script"
	KeyHref       = "href"
	KeySymbol     = "symbol"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyCount      = "count"
	KeyChunk      = "chunk"
	KeySnapshotID = "snapshot_id"
	KeyJob        = "job"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyUserAgent  = "user_agent"
	KeyError      = "error"
)

func Site(dir string) slog.Attr       { return slog.String(KeySite, dir) }
func Page(id string) slog.Attr        { return slog.String(KeyPage, id) }
func Script(name string) slog.Attr    { return slog.String(KeyScript, name) }
func Href(h string) slog.Attr         { return slog.String(KeyHref, h) }
func Symbol(name string) slog.Attr    { return slog.String(KeySymbol, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Chunk(n int) slog.Attr           { return slog.Int(KeyChunk, n) }
func SnapshotID(id string) slog.Attr  { return slog.String(KeySnapshotID, id) }
func Job(name string) slog.Attr       { return slog.String(KeyJob, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
