package config

import "time"

// DefaultChunkSize is the number of entries per navtreeindex script, matching Doxygen.
const DefaultChunkSize = 250

// MissingScriptPolicy controls what happens when a children reference names a script
// that does not exist in the site directory.
type MissingScriptPolicy string

const (
	MissingScriptError MissingScriptPolicy = "error"
	MissingScriptWarn  MissingScriptPolicy = "warn"
)

// SiteConfig describes the Doxygen HTML output directory.
type SiteConfig struct {
	Dir            string              `yaml:"dir"`
	Title          string              `yaml:"title,omitempty"`
	ChunkSize      int                 `yaml:"chunk_size,omitempty"`
	MissingScripts MissingScriptPolicy `yaml:"missing_scripts,omitempty"`
	// Header is written as a comment at the top of generated scripts.
	Header string `yaml:"header,omitempty"`
}

// MarkdownConfig describes an optional Markdown directory imported as a page tree.
type MarkdownConfig struct {
	Dir   string `yaml:"dir,omitempty"`
	Page  string `yaml:"page,omitempty"`
	Title string `yaml:"title,omitempty"`
}

// VerifyConfig configures anchor verification.
type VerifyConfig struct {
	CacheSize int         `yaml:"cache_size,omitempty"`
	SkipIndex bool        `yaml:"skip_index,omitempty"`
	NATS      *NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig enables publishing of broken hrefs.
type NATSConfig struct {
	URL      string `yaml:"url"`
	Subject  string `yaml:"subject,omitempty"`
	KVBucket string `yaml:"kv_bucket,omitempty"`
}

// Enabled reports whether NATS publishing is configured.
func (n *NATSConfig) Enabled() bool {
	return n != nil && n.URL != ""
}

// StoreConfig configures the snapshot database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr,omitempty"`
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// DaemonConfig configures the serve loop.
type DaemonConfig struct {
	Debounce       string `yaml:"debounce,omitempty"`
	VerifyInterval string `yaml:"verify_interval,omitempty"`
	SyncInterval   string `yaml:"sync_interval,omitempty"`
}

// GitConfig points at a repository holding published documentation (e.g. gh-pages).
type GitConfig struct {
	URL     string      `yaml:"url"`
	Branch  string      `yaml:"branch,omitempty"`
	Workdir string      `yaml:"workdir,omitempty"`
	Subdir  string      `yaml:"subdir,omitempty"`
	Auth    *AuthConfig `yaml:"auth,omitempty"`
	// ResetOnDiverge hard resets the checkout when the branch was force pushed.
	ResetOnDiverge bool `yaml:"reset_on_diverge,omitempty"`
}

// AuthType selects git authentication.
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
	AuthTypeSSH   AuthType = "ssh"
)

// AuthConfig represents git authentication configuration.
type AuthConfig struct {
	Type     AuthType `yaml:"type"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// RetryBackoffMode enumerates retry backoff strategies.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// RetryConfig configures retries of transient git and network failures.
type RetryConfig struct {
	Mode         RetryBackoffMode `yaml:"mode,omitempty"`
	InitialDelay string           `yaml:"initial_delay,omitempty"`
	MaxDelay     string           `yaml:"max_delay,omitempty"`
	MaxRetries   *int             `yaml:"max_retries,omitempty"`
}

// Durations parsed by ApplyDefaults; Validate guarantees they parse.

func (d DaemonConfig) DebounceDuration() time.Duration       { return mustDuration(d.Debounce) }
func (d DaemonConfig) VerifyIntervalDuration() time.Duration { return mustDuration(d.VerifyInterval) }
func (d DaemonConfig) SyncIntervalDuration() time.Duration   { return mustDuration(d.SyncInterval) }
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(s.ShutdownTimeout)
}
func (r RetryConfig) InitialDelayDuration() time.Duration { return mustDuration(r.InitialDelay) }
func (r RetryConfig) MaxDelayDuration() time.Duration     { return mustDuration(r.MaxDelay) }

func mustDuration(s string) time.Duration {
	if s == "" || s == "0" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
