package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/codesim/internal/output"
	"github.com/panbanda/codesim/internal/scanner"
	"github.com/panbanda/codesim/pkg/batch"
)

// CompareInput selects how files are compared.
type CompareInput struct {
	Strategy string `json:"strategy,omitempty" jsonschema:"Comparison units: structure (function and class signatures, default) or token."`
	Backend  string `json:"backend,omitempty" jsonschema:"Structural backend: native (default), external or treesitter."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// CompareFilesInput names the two files to compare.
type CompareFilesInput struct {
	CompareInput
	FileA string `json:"file_a" jsonschema:"First source file."`
	FileB string `json:"file_b" jsonschema:"Second source file. Must have the same extension as file_a to score above zero."`
}

// CompareBatchInput names the files and directories to compare pairwise.
type CompareBatchInput struct {
	CompareInput
	Paths     []string `json:"paths,omitempty" jsonschema:"Files and directories to scan. Defaults to current directory if empty."`
	Threshold float64  `json:"threshold,omitempty" jsonschema:"Similarity ratio (0.0-1.0) above which a pair is suspicious. Defaults to the configured threshold."`
	AllPairs  bool     `json:"all_pairs,omitempty" jsonschema:"Return every compared pair instead of only suspicious ones."`
}

func getPaths(input CompareBatchInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input CompareInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		out, err := output.MarshalTOON(data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	default:
		return output.MarshalTOON(data)
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleCompareFiles(ctx context.Context, req *mcp.CallToolRequest, input CompareFilesInput) (*mcp.CallToolResult, any, error) {
	if input.FileA == "" || input.FileB == "" {
		return toolError("file_a and file_b are required")
	}
	if s.factory == nil {
		return toolError("no comparator configured")
	}

	cmp, err := s.factory(input.Strategy, input.Backend)
	if err != nil {
		return toolError(err.Error())
	}

	res, err := cmp.Compare(ctx, input.FileA, input.FileB)
	if err != nil {
		return toolError(err.Error())
	}
	s.logger.Debug("compare_files", "a", input.FileA, "b", input.FileB, "similarity", res.Similarity)
	return toolResult(res, getFormat(input.CompareInput))
}

func (s *Server) handleCompareBatch(ctx context.Context, req *mcp.CallToolRequest, input CompareBatchInput) (*mcp.CallToolResult, any, error) {
	if s.factory == nil {
		return toolError("no comparator configured")
	}
	if input.Threshold < 0 || input.Threshold > 1 {
		return toolError("threshold must be within [0,1]")
	}

	files, err := scanner.NewScanner(s.config).ScanPaths(getPaths(input))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	cmp, err := s.factory(input.Strategy, input.Backend)
	if err != nil {
		return toolError(err.Error())
	}

	threshold := s.config.Batch.Threshold
	if input.Threshold > 0 {
		threshold = input.Threshold
	}
	analyzer := batch.New(cmp,
		batch.WithThreshold(threshold),
		batch.WithWorkers(s.config.Batch.Workers),
		batch.WithAllPairs(input.AllPairs),
		batch.WithLogger(s.logger),
	)

	report, err := analyzer.Analyze(ctx, files)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nil, err
		}
		return toolError(err.Error())
	}
	return toolResult(report, getFormat(input.CompareInput))
}
