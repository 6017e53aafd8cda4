package main

import (
	"github.com/panbanda/codesim/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes codesim's
comparisons as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "codesim": {
        "command": "codesim",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - compare_files   Jaccard similarity of two source files
  - compare_batch   Suspicious pairs across many files`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest (server.json)",
				Action: runMCPManifest,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	st := getState(c)
	server := mcpserver.NewServer(version, st.cfg, comparatorFactory(st), st.logger)
	st.logger.Debug("starting mcp server", "version", version)
	return server.Run(c.Context)
}

func runMCPManifest(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(append(data, '\n'))
	return err
}
