// Package report renders token analysis results as markdown.
//
// Rendering is pure: the same inputs always produce the same text. Printing
// and saving live in writer.go.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"pdftokens/pdfprocessor"
)

// Stats holds the aggregates shown in a directory report.
type Stats struct {
	// FilesFound is the number of discovered PDFs. Averages divide by it,
	// not by the number of successful files.
	FilesFound int

	TotalTokens     int
	TotalCharacters int

	AverageTokens     int
	AverageCharacters int

	// Extremes are only meaningful when HasResults is true.
	MaxTokens     int
	MinTokens     int
	MaxCharacters int
	MinCharacters int

	HasResults bool
}

// TokenRange returns MaxTokens - MinTokens.
func (s Stats) TokenRange() int {
	return s.MaxTokens - s.MinTokens
}

// CharacterRange returns MaxCharacters - MinCharacters.
func (s Stats) CharacterRange() int {
	return s.MaxCharacters - s.MinCharacters
}

// ComputeStats folds results into aggregates. filesFound is the discovered
// file count used as the divisor for the integer averages.
func ComputeStats(results []pdfprocessor.FileResult, filesFound int) Stats {
	s := Stats{FilesFound: filesFound}

	for i, r := range results {
		s.TotalTokens += r.Tokens
		s.TotalCharacters += r.Characters

		if i == 0 {
			s.MaxTokens, s.MinTokens = r.Tokens, r.Tokens
			s.MaxCharacters, s.MinCharacters = r.Characters, r.Characters
			continue
		}
		s.MaxTokens = max(s.MaxTokens, r.Tokens)
		s.MinTokens = min(s.MinTokens, r.Tokens)
		s.MaxCharacters = max(s.MaxCharacters, r.Characters)
		s.MinCharacters = min(s.MinCharacters, r.Characters)
	}
	s.HasResults = len(results) > 0

	if filesFound > 0 {
		s.AverageTokens = s.TotalTokens / filesFound
		s.AverageCharacters = s.TotalCharacters / filesFound
	}

	return s
}

// RenderDirectory renders the report for a processed folder.
func RenderDirectory(batch *pdfprocessor.BatchResult) string {
	stats := ComputeStats(batch.Results, len(batch.Discovered))

	lines := []string{
		"# PDF Token Analysis Report",
		fmt.Sprintf("**Folder:** `%s`", batch.Folder),
		fmt.Sprintf("**Files Found:** %d PDF file(s)", len(batch.Discovered)),
		"",
		"## Individual File Analysis",
		"",
		"| File Name | Tokens | Characters |",
		"|-----------|--------|------------|",
	}

	for _, r := range batch.Results {
		lines = append(lines, fmt.Sprintf("| %s | %s | %s |",
			filepath.Base(r.Path), Comma(r.Tokens), Comma(r.Characters)))
	}

	lines = append(lines,
		"",
		"## Summary Statistics",
		"",
		"| Metric | Value |",
		"|--------|-------|",
		fmt.Sprintf("| **Files Processed** | %d |", stats.FilesFound),
		fmt.Sprintf("| **Total Tokens** | %s |", Comma(stats.TotalTokens)),
		fmt.Sprintf("| **Total Characters** | %s |", Comma(stats.TotalCharacters)),
		fmt.Sprintf("| **Average Tokens per File** | %s |", Comma(stats.AverageTokens)),
		fmt.Sprintf("| **Average Characters per File** | %s |", Comma(stats.AverageCharacters)),
		"",
		"## Additional Insights",
		"",
	)

	if stats.HasResults {
		lines = append(lines,
			fmt.Sprintf("- **Largest file by tokens:** %s tokens", Comma(stats.MaxTokens)),
			fmt.Sprintf("- **Smallest file by tokens:** %s tokens", Comma(stats.MinTokens)),
			fmt.Sprintf("- **Largest file by characters:** %s characters", Comma(stats.MaxCharacters)),
			fmt.Sprintf("- **Smallest file by characters:** %s characters", Comma(stats.MinCharacters)),
			fmt.Sprintf("- **Token range:** %s tokens", Comma(stats.TokenRange())),
			fmt.Sprintf("- **Character range:** %s characters", Comma(stats.CharacterRange())),
		)
	}

	if len(batch.Failures) > 0 {
		lines = append(lines, "", "## Skipped Files", "")
		for _, f := range batch.Failures {
			lines = append(lines, fmt.Sprintf("- %s: %s error: %s",
				filepath.Base(f.Path), f.Kind, oneLine(f.Err)))
		}
	}

	return strings.Join(lines, "\n")
}

// RenderSingle renders the report for one file. There is no insights
// section in single-file mode.
func RenderSingle(result pdfprocessor.FileResult) string {
	lines := []string{
		"# Single PDF Analysis Report",
		fmt.Sprintf("**File:** `%s`", filepath.Base(result.Path)),
		"",
		"## Statistics",
		"",
		"| Metric | Value |",
		"|--------|-------|",
		fmt.Sprintf("| **Tokens** | %s |", Comma(result.Tokens)),
		fmt.Sprintf("| **Characters** | %s |", Comma(result.Characters)),
		"",
		fmt.Sprintf("**Estimated number of tokens:** %s", Comma(result.Tokens)),
		fmt.Sprintf("**Text length:** %s characters", Comma(result.Characters)),
	}
	return strings.Join(lines, "\n")
}

// Comma formats n with thousands separators, e.g. 1234567 -> "1,234,567".
func Comma(n int) string {
	return humanize.Comma(int64(n))
}

// oneLine keeps multi-line library errors from breaking the bullet list.
func oneLine(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
