package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/site"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "navindex.yaml"

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"navindex.yaml" env:"NAVINDEX_CONFIG"`
	Site    string           `short:"s" help:"Site directory, overrides site.dir" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Inspect  InspectCmd  `cmd:"" help:"Show the structure and counts of a site"`
	Validate ValidateCmd `cmd:"" help:"Check the tree and the stored index for consistency"`
	Reindex  ReindexCmd  `cmd:"" help:"Regenerate the NAVTREEINDEX scripts from the tree"`
	Export   ExportCmd   `cmd:"" help:"Write the navigation data to another directory or as JSON"`
	Symbols  SymbolsCmd  `cmd:"" help:"Search symbols or list a file's members"`
	Locate   LocateCmd   `cmd:"" help:"Find the tree node that displays a URL"`
	Verify   VerifyCmd   `cmd:"" help:"Check every href against the HTML pages"`
	ImportMd ImportMdCmd `cmd:"" name:"import-md" help:"Attach a Markdown directory as a page tree"`
	Snapshot SnapshotCmd `cmd:"" help:"Store or list site snapshots"`
	Serve    ServeCmd    `cmd:"" help:"Serve the navigation API and keep the site current"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if env := os.Getenv("NAVINDEX_LOG_LEVEL"); env != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(strings.TrimSpace(env))); err == nil {
			level = parsed
		}
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

// LoadConfig reads the configuration file. A missing file is only an error
// when the path was given explicitly; otherwise defaults are used.
func (c *CLI) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		if _, statErr := os.Stat(c.Config); os.IsNotExist(statErr) && c.Config == DefaultConfigPath {
			cfg = config.Default()
		} else {
			return nil, err
		}
	}
	if c.Site != "" {
		cfg.Site.Dir = c.Site
	}
	return cfg, nil
}

// LoadSite loads the configured site.
func (c *CLI) LoadSite(ctx context.Context) (*config.Config, *site.Site, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := site.Load(ctx, cfg.Site.Dir, site.OptionsFromConfig(cfg.Site))
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode output").Build()
	}
	return nil
}

func out(g *Global) io.Writer {
	if g != nil && g.Out != nil {
		return g.Out
	}
	return os.Stdout
}

func printf(g *Global, format string, args ...any) {
	_, _ = fmt.Fprintf(out(g), format, args...)
}
