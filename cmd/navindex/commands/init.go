package commands

import (
	"path/filepath"

	"git.home.luguber.info/inful/navindex/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Directory to place navindex.yaml in"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if i.Output != "" {
		path = filepath.Join(i.Output, DefaultConfigPath)
	}
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	printf(g, "Wrote example configuration to %s\n", path)
	return nil
}
