// Package batch compares every pair of files that share an extension and
// reports the pairs whose similarity crosses a threshold.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/panbanda/codesim/internal/fileproc"
	"github.com/panbanda/codesim/pkg/compare"
	"github.com/panbanda/codesim/pkg/extract"
	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/similarity"
	"gonum.org/v1/gonum/stat"
)

// Default thresholds, as ratios.
const (
	DefaultThreshold = 0.30
	HighBand         = 0.70
	MediumBand       = 0.40
)

// Band classifies a pair's similarity.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// BandFor returns the band for a ratio in [0,1].
func BandFor(ratio float64) Band {
	switch {
	case ratio > HighBand:
		return BandHigh
	case ratio > MediumBand:
		return BandMedium
	default:
		return BandLow
	}
}

// File describes one analyzed file.
type File struct {
	Path     string       `json:"path" toon:"path"`
	Language language.Tag `json:"language" toon:"language"`
	Units    int          `json:"units" toon:"units"`
}

// Skipped is a file left out of the comparison.
type Skipped struct {
	Path   string `json:"path" toon:"path"`
	Reason string `json:"reason" toon:"reason"`
}

// Pair is the score for two files with the same extension.
type Pair struct {
	FileA      string           `json:"file_a" toon:"file_a"`
	FileB      string           `json:"file_b" toon:"file_b"`
	Language   language.Tag     `json:"language" toon:"language"`
	Score      similarity.Score `json:"score" toon:"score"`
	Similarity float64          `json:"similarity" toon:"similarity"`
	Band       Band             `json:"band" toon:"band"`
	SameText   bool             `json:"same_text" toon:"same_text"`
}

// Summary holds distribution statistics over every compared pair.
type Summary struct {
	Files      int     `json:"files" toon:"files"`
	Pairs      int     `json:"pairs" toon:"pairs"`
	Suspicious int     `json:"suspicious" toon:"suspicious"`
	High       int     `json:"high" toon:"high"`
	Medium     int     `json:"medium" toon:"medium"`
	Mean       float64 `json:"mean" toon:"mean"`
	StdDev     float64 `json:"std_dev" toon:"std_dev"`
	P50        float64 `json:"p50" toon:"p50"`
	P95        float64 `json:"p95" toon:"p95"`
	Max        float64 `json:"max" toon:"max"`
}

// Report is the result of a batch analysis. Pairs holds the suspicious
// pairs, or every pair when the analyzer was built with WithAllPairs, sorted
// by similarity descending.
type Report struct {
	Strategy  extract.Strategy `json:"strategy" toon:"strategy"`
	Threshold float64          `json:"threshold" toon:"threshold"`
	Files     []File           `json:"files" toon:"files"`
	Pairs     []Pair           `json:"pairs" toon:"pairs"`
	Skipped   []Skipped        `json:"skipped,omitempty" toon:"skipped,omitempty"`
	Summary   Summary          `json:"summary" toon:"summary"`
}

// Analyzer runs batch comparisons.
type Analyzer struct {
	comparator *compare.Comparator
	threshold  float64
	workers    int
	allPairs   bool
	onProgress fileproc.ProgressFunc
	logger     *slog.Logger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThreshold sets the suspicious-pair threshold as a ratio in [0,1].
func WithThreshold(t float64) Option {
	return func(a *Analyzer) {
		if t >= 0 && t <= 1 {
			a.threshold = t
		}
	}
}

// WithWorkers sets the extraction concurrency. Zero uses the default.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithAllPairs reports every pair instead of only suspicious ones.
func WithAllPairs(all bool) Option {
	return func(a *Analyzer) {
		a.allPairs = all
	}
}

// WithProgress sets a callback invoked after each file is extracted.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates a batch analyzer that extracts with cmp.
func New(cmp *compare.Comparator, opts ...Option) *Analyzer {
	a := &Analyzer{
		comparator: cmp,
		threshold:  DefaultThreshold,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze extracts every supported file concurrently, then scores each pair
// sharing a literal extension. Files that cannot be read or parsed are
// skipped and listed in the report; only cancellation aborts the run.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Report, error) {
	report := &Report{
		Strategy:  a.comparator.Strategy(),
		Threshold: a.threshold,
		Files:     []File{},
		Pairs:     []Pair{},
	}

	var supported []string
	seen := make(map[string]bool)
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		if !language.Detect(f).Supported() {
			report.Skipped = append(report.Skipped, Skipped{Path: f, Reason: "unsupported file type"})
			continue
		}
		supported = append(supported, f)
	}

	results, errs := fileproc.ForEachFile(ctx, supported, a.workers, a.comparator.Extract, a.onProgress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs != nil {
		for _, e := range errs.Errors {
			reason := e.Err.Error()
			if errors.Is(e.Err, extract.ErrToolFailed) {
				reason = "parser failed: " + reason
			}
			a.logger.Warn("skipping file", "path", e.Path, "err", e.Err)
			report.Skipped = append(report.Skipped, Skipped{Path: e.Path, Reason: reason})
		}
		sort.Slice(report.Skipped, func(i, j int) bool {
			return report.Skipped[i].Path < report.Skipped[j].Path
		})
	}

	idx := similarity.NewIndex()
	extractions := make([]*compare.Extraction, 0, len(results))
	for _, r := range results {
		idx.Add(r.Path, r.Value.Units)
		extractions = append(extractions, r.Value)
		report.Files = append(report.Files, File{
			Path:     r.Path,
			Language: r.Value.Language,
			Units:    r.Value.Units.Len(),
		})
	}

	var ratios []float64
	for i := range extractions {
		for j := i + 1; j < len(extractions); j++ {
			ea, eb := extractions[i], extractions[j]
			nameA, nameB := idx.Name(i), idx.Name(j)
			if language.Extension(nameA) != language.Extension(nameB) {
				continue
			}
			score := idx.Pair(i, j)
			ratio := score.Ratio()
			ratios = append(ratios, ratio)

			pair := Pair{
				FileA:      nameA,
				FileB:      nameB,
				Language:   ea.Language,
				Score:      score,
				Similarity: ratio,
				Band:       BandFor(ratio),
				SameText:   ea.Fingerprint == eb.Fingerprint,
			}
			if ratio > a.threshold {
				report.Summary.Suspicious++
			}
			switch pair.Band {
			case BandHigh:
				report.Summary.High++
			case BandMedium:
				report.Summary.Medium++
			}
			if a.allPairs || ratio > a.threshold {
				report.Pairs = append(report.Pairs, pair)
			}
		}
	}

	sort.SliceStable(report.Pairs, func(i, j int) bool {
		pi, pj := report.Pairs[i], report.Pairs[j]
		if pi.Similarity != pj.Similarity {
			return pi.Similarity > pj.Similarity
		}
		if pi.FileA != pj.FileA {
			return pi.FileA < pj.FileA
		}
		return pi.FileB < pj.FileB
	})

	report.Summary.Files = len(extractions)
	report.Summary.Pairs = len(ratios)
	summarize(&report.Summary, ratios)

	a.logger.Debug("batch complete",
		"files", report.Summary.Files,
		"pairs", report.Summary.Pairs,
		"suspicious", report.Summary.Suspicious,
		"vocabulary", idx.Vocabulary(),
	)
	return report, nil
}

// summarize fills the distribution fields. Standard deviation is the sample
// deviation and is zero for fewer than two pairs.
func summarize(s *Summary, ratios []float64) {
	if len(ratios) == 0 {
		return
	}
	sorted := append([]float64(nil), ratios...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 || math.IsNaN(std) {
		std = 0
	}
	s.Mean = mean
	s.StdDev = std
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	s.Max = sorted[len(sorted)-1]
}

// String returns a one-line description of the summary.
func (s Summary) String() string {
	return fmt.Sprintf("%d files, %d pairs, %d suspicious (mean %.2f%%, p95 %.2f%%)",
		s.Files, s.Pairs, s.Suspicious, s.Mean*100, s.P95*100)
}
