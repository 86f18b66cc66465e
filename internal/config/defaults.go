package config

import "path/filepath"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }

func (siteDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Site.Dir == "" {
		cfg.Site.Dir = "./html"
	}
	cfg.Site.Dir = filepath.Clean(cfg.Site.Dir)
	if cfg.Site.ChunkSize <= 0 {
		cfg.Site.ChunkSize = DefaultChunkSize
	}
	policy, err := missingScriptsNormalizer.NormalizeWithError(string(cfg.Site.MissingScripts))
	if err != nil {
		return err
	}
	cfg.Site.MissingScripts = policy
	return nil
}

type markdownDefaults struct{}

func (markdownDefaults) Domain() string { return "markdown" }

func (markdownDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Markdown.Dir == "" {
		return nil
	}
	if cfg.Markdown.Page == "" {
		cfg.Markdown.Page = "related_pages"
	}
	if cfg.Markdown.Title == "" {
		cfg.Markdown.Title = "Related Pages"
	}
	return nil
}

type runtimeDefaults struct{}

func (runtimeDefaults) Domain() string { return "runtime" }

func (runtimeDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Verify.CacheSize <= 0 {
		cfg.Verify.CacheSize = 512
	}
	if n := cfg.Verify.NATS; n != nil {
		if n.Subject == "" {
			n.Subject = "navindex.broken_hrefs"
		}
		if n.KVBucket == "" {
			n.KVBucket = "navindex_reports"
		}
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./navindex.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == "" {
		cfg.Server.ShutdownTimeout = "15s"
	}
	if cfg.Daemon.Debounce == "" {
		cfg.Daemon.Debounce = "500ms"
	}
	if cfg.Daemon.VerifyInterval == "" {
		cfg.Daemon.VerifyInterval = "1h"
	}
	if cfg.Daemon.SyncInterval == "" {
		cfg.Daemon.SyncInterval = "10m"
	}
	return nil
}

type gitDefaults struct{}

func (gitDefaults) Domain() string { return "git" }

func (gitDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Git == nil {
		return nil
	}
	if cfg.Git.Branch == "" {
		cfg.Git.Branch = "gh-pages"
	}
	if cfg.Git.Workdir == "" {
		cfg.Git.Workdir = "./navindex-work"
	}
	if cfg.Git.Auth != nil {
		authType, err := authTypeNormalizer.NormalizeWithError(string(cfg.Git.Auth.Type))
		if err != nil {
			return err
		}
		cfg.Git.Auth.Type = authType
	}
	return nil
}

type retryDefaults struct{}

func (retryDefaults) Domain() string { return "retry" }

func (retryDefaults) ApplyDefaults(cfg *Config) error {
	cfg.Retry.Mode = retryModeNormalizer.Normalize(string(cfg.Retry.Mode))
	if cfg.Retry.InitialDelay == "" {
		cfg.Retry.InitialDelay = "1s"
	}
	if cfg.Retry.MaxDelay == "" {
		cfg.Retry.MaxDelay = "30s"
	}
	if cfg.Retry.MaxRetries == nil {
		n := 2
		cfg.Retry.MaxRetries = &n
	}
	return nil
}

var defaultAppliers = []DefaultApplier{
	siteDefaults{},
	markdownDefaults{},
	runtimeDefaults{},
	gitDefaults{},
	retryDefaults{},
}

// ApplyDefaults fills every unset field with its default value.
func ApplyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
