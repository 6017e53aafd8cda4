package main

import (
	"fmt"
	"os"

	"github.com/panbanda/codesim/internal/output"
	"github.com/panbanda/codesim/pkg/compare"
	"github.com/panbanda/codesim/pkg/extract"
	"github.com/panbanda/codesim/pkg/language"
	"github.com/urfave/cli/v2"
)

func backendFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "backend",
		Aliases: []string{"b"},
		Usage:   "Structural backend: native, external, treesitter (default from config)",
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, markdown, toon (default from config)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

func astCmd() *cli.Command {
	return &cli.Command{
		Name:      "ast",
		Usage:     "Structural similarity of two files (function and class signatures)",
		ArgsUsage: "<file1> <file2>",
		Flags:     []cli.Flag{backendFlag()},
		Action:    runAST,
	}
}

func runAST(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	res, err := runCompare(c, comparatorOptions{
		strategy:      string(extract.StrategyStructure),
		backend:       c.String("backend"),
		onUnsupported: string(compare.UnsupportedZero),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "AST Similarity: %.2f%%\n", res.Percent())
	return nil
}

func jaccardCmd() *cli.Command {
	return &cli.Command{
		Name:      "jaccard",
		Usage:     "Token similarity of two files",
		ArgsUsage: "<file1> <file2>",
		Action:    runJaccard,
	}
}

func runJaccard(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	res, err := runCompare(c, comparatorOptions{
		strategy:      string(extract.StrategyToken),
		onUnsupported: string(compare.UnsupportedFail),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Jaccard Similarity: %s%%\n", formatPercent(res.Percent()))
	return nil
}

func compareCmd() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare two files and report the full result",
		ArgsUsage: "<file1> <file2>",
		Description: `Scores two files with the selected strategy and prints the result with
its outcome, unit counts and shared units.

Examples:
  codesim compare a.c b.c
  codesim compare --strategy token --format json A.java B.java
  codesim compare --rev HEAD~1 src/main.py src/util.py`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Comparison units: token, structure (default from config)",
			},
			backendFlag(),
			&cli.StringFlag{
				Name:  "on-unsupported",
				Usage: "Unsupported language policy: zero, fail (default from config)",
			},
			&cli.StringFlag{
				Name:  "rev",
				Usage: "Read both files from this git revision instead of the working tree",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the unit cache",
			},
		}, outputFlags()...),
		Action: runCompareCmd,
	}
}

func runCompareCmd(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	res, err := runCompare(c, comparatorOptions{
		strategy:      c.String("strategy"),
		backend:       c.String("backend"),
		onUnsupported: c.String("on-unsupported"),
		rev:           c.String("rev"),
		noCache:       c.Bool("no-cache"),
	})
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, getState(c))
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(output.NewComparison(res))
}

// runCompare builds a comparator and scores the two positional files. Every
// failure is fatal with exit status 1.
func runCompare(c *cli.Context, opts comparatorOptions) (*compare.Result, error) {
	st := getState(c)
	cmp, err := newComparator(st, opts)
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}

	res, err := cmp.Compare(c.Context, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	st.logger.Debug("compared",
		"outcome", res.Outcome,
		"provider", res.Provider,
		"intersection", res.Score.Intersection,
		"union", res.Score.Union,
	)
	return res, nil
}

func dumpCmd() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Print the structural signatures of one file in parser dump format",
		ArgsUsage: "<file>",
		Description: `Prints AST_START, one function or class signature per line, then AST_END.
The output follows the external parser contract, so codesim can serve as the
C-family parser:

  [parsers]
  cfamily = ["codesim", "dump"]`,
		Action: runDump,
	}
}

func runDump(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	path := c.Args().First()
	if !language.Detect(path).Supported() {
		return cli.Exit(fmt.Sprintf("unsupported file type: %s", path), 1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot read %s: %v", path, err), 1)
	}
	_, err = fmt.Fprint(c.App.Writer, extract.Dump(extract.Signatures(string(data))))
	return err
}
