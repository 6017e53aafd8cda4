package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/codesim/pkg/batch"
	"github.com/panbanda/codesim/pkg/compare"
)

// Percent formats a ratio in [0,1] as a percentage with two decimals.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// Comparison renders the result of comparing two files.
type Comparison struct {
	Result *compare.Result
}

// NewComparison wraps res for rendering.
func NewComparison(res *compare.Result) *Comparison {
	return &Comparison{Result: res}
}

func (c *Comparison) RenderData() any {
	return c.Result
}

func (c *Comparison) fields() [][]string {
	r := c.Result
	rows := [][]string{
		{"Language", string(r.Language)},
		{"Strategy", r.Strategy.String()},
		{"Outcome", string(r.Outcome)},
	}
	if r.Provider != "" {
		rows = append(rows, []string{"Provider", r.Provider})
	}
	rows = append(rows,
		[]string{"Units", fmt.Sprintf("%d / %d", r.UnitsA, r.UnitsB)},
		[]string{"Shared", strconv.Itoa(r.Score.Intersection)},
		[]string{"Union", strconv.Itoa(r.Score.Union)},
		[]string{"Same text", yesNo(r.SameText)},
	)
	if r.Detail != "" {
		rows = append(rows, []string{"Detail", r.Detail})
	}
	return rows
}

func (c *Comparison) RenderText(w io.Writer, colored bool) error {
	r := c.Result
	heading(w, fmt.Sprintf("%s vs %s", r.FileA, r.FileB), colored, "=")

	pct := Percent(r.Similarity)
	if colored {
		pct = BandColor(string(batch.BandFor(r.Similarity)), pct)
	}
	fmt.Fprintf(w, "Similarity: %s\n", pct)
	for _, row := range c.fields() {
		fmt.Fprintf(w, "%-10s %s\n", row[0]+":", row[1])
	}
	return nil
}

func (c *Comparison) RenderMarkdown(w io.Writer) error {
	r := c.Result
	fmt.Fprintf(w, "## %s vs %s\n\n", r.FileA, r.FileB)
	fmt.Fprintf(w, "**Similarity:** %s\n\n", Percent(r.Similarity))
	return NewTable("", []string{"Field", "Value"}, c.fields(), nil, nil).RenderMarkdown(w)
}

// NewBatchReport builds a renderable report for a batch analysis.
func NewBatchReport(rep *batch.Report) *Report {
	s := rep.Summary
	summary := &Section{
		Title: "Summary",
		Content: fmt.Sprintf(
			"Strategy: %s\nThreshold: %s\nFiles: %d\nPairs compared: %d\nSuspicious: %d (high %d, medium %d)\nMean: %s  StdDev: %s  P50: %s  P95: %s  Max: %s",
			rep.Strategy, Percent(rep.Threshold), s.Files, s.Pairs, s.Suspicious, s.High, s.Medium,
			Percent(s.Mean), Percent(s.StdDev), Percent(s.P50), Percent(s.P95), Percent(s.Max),
		),
	}

	rows := make([][]string, 0, len(rep.Pairs))
	for _, p := range rep.Pairs {
		rows = append(rows, []string{
			p.FileA,
			p.FileB,
			string(p.Language),
			Percent(p.Similarity),
			string(p.Band),
			yesNo(p.SameText),
		})
	}
	pairs := NewTable("Pairs", []string{"File A", "File B", "Language", "Similarity", "Band", "Same Text"}, rows, nil, nil)

	sections := []Renderable{summary, pairs}
	if len(rep.Skipped) > 0 {
		skipped := make([][]string, 0, len(rep.Skipped))
		for _, sk := range rep.Skipped {
			skipped = append(skipped, []string{sk.Path, sk.Reason})
		}
		sections = append(sections, NewTable("Skipped", []string{"Path", "Reason"}, skipped, nil, nil))
	}

	return &Report{
		Title:    "Similarity Report",
		Sections: sections,
		Data:     rep,
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
