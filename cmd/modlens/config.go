package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/modlens/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a modlens configuration file for syntax errors and invalid values.

Examples:
  modlens config validate                     # Validates default config locations
  modlens -c modlens.toml config validate     # Validates specific file
  modlens --root ./web config validate        # Searches ./web and ./web/.modlens`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  modlens config show                 # Show effective config
  modlens -c modlens.toml config show # Show config from specific file`,
				Action: runConfigShow,
			},
		},
	}
}

// resolveConfig loads --config strictly, or searches --root. Unlike the
// analysis commands, a discovered file that fails to parse is an error.
func resolveConfig(c *cli.Context) (config.LoadResult, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return config.LoadResult{}, err
		}
		return config.LoadResult{Config: cfg, Source: path}, nil
	}
	root := c.String("root")
	if root == "" {
		root = "."
	}
	res := config.LoadConfig(config.WithRoot(root))
	if res.Err != nil {
		return res, res.Err
	}
	return res, nil
}

func runConfigValidate(c *cli.Context) error {
	w := c.App.Writer
	result, err := resolveConfig(c)
	if err == nil {
		err = result.Config.Validate()
	}
	if err != nil {
		color.New(color.FgRed).Fprintln(w, "Configuration validation failed:")
		fmt.Fprintf(w, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.New(color.FgGreen).Fprintf(w, "Configuration valid: %s\n", result.Source)
	} else {
		color.New(color.FgYellow).Fprintln(w, "No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	w := c.App.Writer
	result, err := resolveConfig(c)
	if err != nil {
		return err
	}

	if result.Source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(*result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(w, string(content))
	return nil
}
