package main

import (
	"github.com/panbanda/codesim/internal/output"
	"github.com/panbanda/codesim/internal/progress"
	"github.com/panbanda/codesim/internal/scanner"
	"github.com/panbanda/codesim/pkg/batch"
	"github.com/urfave/cli/v2"
)

func batchCmd() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Compare every pair of same-extension files and report suspicious pairs",
		ArgsUsage: "[path...]",
		Description: `Scans the given files and directories (default "."), extracts units from
every supported file once, then scores each pair of files sharing an
extension. Pairs above the threshold are reported, most similar first.

Examples:
  codesim batch submissions/
  codesim batch --strategy token --threshold 0.5 -f json src/
  codesim batch --all-pairs a.py b.py c.py`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Comparison units: token, structure (default from config)",
			},
			backendFlag(),
			&cli.Float64Flag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Report pairs with similarity above this ratio (default from config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Extraction concurrency (0 = default)",
			},
			&cli.BoolFlag{
				Name:  "all-pairs",
				Usage: "Report every compared pair, not only suspicious ones",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide the progress bar",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the unit cache",
			},
		}, outputFlags()...),
		Action: runBatch,
	}
}

func runBatch(c *cli.Context) error {
	st := getState(c)

	showProgress := !c.Bool("no-progress")
	scan := scanner.NewScanner(st.cfg)
	var spinner *progress.Tracker
	if showProgress {
		spinner = progress.NewSpinner(c.App.ErrWriter, "Scanning files...")
		scan.OnFile(spinner.Tick)
	}
	files, err := scan.ScanPaths(getPaths(c))
	if err != nil {
		if spinner != nil {
			spinner.FinishError(err)
		}
		return cli.Exit(err.Error(), 1)
	}
	switch {
	case spinner == nil:
	case len(files) == 0:
		spinner.FinishSkipped("no supported files")
	default:
		spinner.FinishSuccess()
	}
	if len(files) == 0 {
		st.logger.Warn("no supported source files found", "paths", getPaths(c))
	}
	for tag, group := range scan.GroupByLanguage(files) {
		st.logger.Debug("scanned", "language", tag, "files", len(group))
	}

	cmp, err := newComparator(st, comparatorOptions{
		strategy: c.String("strategy"),
		backend:  c.String("backend"),
		noCache:  c.Bool("no-cache"),
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	threshold := st.cfg.Batch.Threshold
	if c.IsSet("threshold") {
		threshold = c.Float64("threshold")
		if threshold < 0 || threshold > 1 {
			return cli.Exit("--threshold must be within [0,1]", 1)
		}
	}
	workers := st.cfg.Batch.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	opts := []batch.Option{
		batch.WithThreshold(threshold),
		batch.WithWorkers(workers),
		batch.WithAllPairs(st.cfg.Batch.AllPairs || c.Bool("all-pairs")),
		batch.WithLogger(st.logger),
	}
	var tracker *progress.Tracker
	if showProgress && len(files) > 0 {
		tracker = progress.NewTracker(c.App.ErrWriter, "Extracting", len(files))
		opts = append(opts, batch.WithProgress(tracker.Tick))
	}

	report, err := batch.New(cmp, opts...).Analyze(c.Context, files)
	if err != nil {
		if tracker != nil {
			tracker.FinishError(err)
		}
		return cli.Exit(err.Error(), 1)
	}
	if tracker != nil {
		st.logger.Debug("extraction progress", "done", tracker.Current(), "total", len(files))
		tracker.FinishSuccess()
	}
	st.logger.Info("batch complete", "summary", report.Summary.String())

	formatter, err := newFormatter(c, st)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(output.NewBatchReport(report))
}
