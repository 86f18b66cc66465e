package config

import (
	"fmt"
	"regexp"
	"time"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) error {
	if cfg.Version != CurrentVersion {
		return errors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).Build()
	}
	switch cfg.Site.MissingScripts {
	case MissingScriptError, MissingScriptWarn:
	default:
		return invalid("site.missing_scripts", "must be error or warn")
	}
	if cfg.Markdown.Dir != "" && !identPattern.MatchString(cfg.Markdown.Page) {
		return invalid("markdown.page", "must be a valid script identifier")
	}

	durations := map[string]string{
		"server.shutdown_timeout": cfg.Server.ShutdownTimeout,
		"daemon.debounce":         cfg.Daemon.Debounce,
		"daemon.verify_interval":  cfg.Daemon.VerifyInterval,
		"daemon.sync_interval":    cfg.Daemon.SyncInterval,
		"retry.initial_delay":     cfg.Retry.InitialDelay,
		"retry.max_delay":         cfg.Retry.MaxDelay,
	}
	for field, value := range durations {
		if value == "0" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			return invalid(field, "must be a non-negative duration such as 30s")
		}
	}
	if cfg.Retry.MaxRetries != nil && *cfg.Retry.MaxRetries < 0 {
		return invalid("retry.max_retries", "cannot be negative")
	}

	if g := cfg.Git; g != nil {
		if g.URL == "" {
			return invalid("git.url", "is required when git is configured")
		}
		if a := g.Auth; a != nil {
			switch a.Type {
			case AuthTypeNone:
			case AuthTypeToken:
				if a.Token == "" {
					return invalid("git.auth.token", "is required for token auth")
				}
			case AuthTypeBasic:
				if a.Username == "" || a.Password == "" {
					return invalid("git.auth", "basic auth needs username and password")
				}
			case AuthTypeSSH:
				if a.KeyPath == "" {
					return invalid("git.auth.key_path", "is required for ssh auth")
				}
			default:
				return invalid("git.auth.type", "must be none, token, basic or ssh")
			}
		}
	}
	if n := cfg.Verify.NATS; n != nil && n.URL != "" && !identPattern.MatchString(n.KVBucket) {
		return invalid("verify.nats.kv_bucket", "must be a valid bucket name")
	}
	return nil
}

func invalid(field, reason string) error {
	return errors.ConfigError(fmt.Sprintf("invalid %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("reason", reason).
		Build()
}
