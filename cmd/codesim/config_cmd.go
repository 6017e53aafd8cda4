package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/codesim/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new codesim configuration file",
		Description: `Creates a new codesim.toml configuration file in the current directory
with the default settings. Use --output to specify a different location.

Examples:
  codesim init                          # Creates codesim.toml in current directory
  codesim init -o .codesim/codesim.toml # Creates config in .codesim directory
  codesim init --force                  # Overwrite existing config file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "codesim.toml",
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInit,
	}
}

func runInit(c *cli.Context) error {
	outputPath := c.String("output")

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return cli.Exit(fmt.Sprintf("config file %q already exists (use --force to overwrite)", outputPath), 1)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintln(c.App.Writer, color.GreenString("Created %s", outputPath))
	fmt.Fprintln(c.App.Writer, "Edit this file to customize comparison settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# codesim configuration\n")
	buf.WriteString("# An empty parser command uses the built-in signature extractor.\n\n")
	buf.Write(content)

	return buf.String(), nil
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a codesim configuration file for syntax errors and invalid values.

Examples:
  codesim config validate                  # Validates default config locations
  codesim -c codesim.toml config validate  # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "toml",
						Usage:   "Output format: toml, yaml",
					},
				},
				Action: runConfigShow,
			},
		},
	}
}

// runConfigValidate reports on the config resolved in Before. An invalid
// file never reaches here: setup already failed with exit status 1.
func runConfigValidate(c *cli.Context) error {
	st := getState(c)
	if err := st.cfg.Validate(); err != nil {
		fmt.Fprintln(c.App.Writer, color.RedString("Configuration validation failed:"))
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return cli.Exit("", 1)
	}

	if st.cfgPath != "" {
		fmt.Fprintln(c.App.Writer, color.GreenString("Configuration valid: %s", st.cfgPath))
	} else {
		fmt.Fprintln(c.App.Writer, color.YellowString("No config file found. Default configuration is valid."))
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	st := getState(c)
	w := c.App.Writer

	if st.cfgPath != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", st.cfgPath)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	var (
		content []byte
		err     error
	)
	switch strings.ToLower(c.String("format")) {
	case "toml":
		content, err = toml.Marshal(st.cfg)
	case "yaml", "yml":
		content, err = yaml.Marshal(st.cfg)
	default:
		return cli.Exit(fmt.Sprintf("unknown format %q (want toml or yaml)", c.String("format")), 1)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(content)
	return err
}
