package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultOutputDir is where reports are saved when no directory is configured.
const DefaultOutputDir = "sample_analysis"

// TimestampFormat is the YYYYMMDD_HHMMSS suffix of report file names.
const TimestampFormat = "20060102_150405"

// Writer prints reports and persists them under OutputDir.
type Writer struct {
	OutputDir string
	Out       io.Writer

	// Now supplies the timestamp for file names. Defaults to time.Now.
	Now func() time.Time
}

// NewWriter creates a Writer printing to out and saving under outputDir.
func NewWriter(outputDir string, out io.Writer) *Writer {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	if out == nil {
		out = os.Stdout
	}
	return &Writer{OutputDir: outputDir, Out: out, Now: time.Now}
}

// Publish prints content followed by a newline, then saves it as
// <stem>_analysis_<timestamp>.md. It returns the saved path.
func (w *Writer) Publish(content, stem string) (string, error) {
	if _, err := fmt.Fprintln(w.Out, content); err != nil {
		return "", fmt.Errorf("failed to print report: %w", err)
	}
	return w.Save(content, stem)
}

// Save writes content to the output directory, creating it if absent.
func (w *Writer) Save(content, stem string) (string, error) {
	if err := os.MkdirAll(w.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", w.OutputDir, err)
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	path := filepath.Join(w.OutputDir, FileName(stem, now()))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

// FileName returns "<stem>_analysis_<YYYYMMDD_HHMMSS>.md".
func FileName(stem string, t time.Time) string {
	return fmt.Sprintf("%s_analysis_%s.md", stem, t.Format(TimestampFormat))
}

// FolderStem returns the last element of a folder argument with trailing
// slashes and backslashes removed. "docs/" and "docs" both give "docs".
func FolderStem(folder string) string {
	trimmed := strings.TrimRight(folder, `\/`)
	if trimmed == "" {
		return ""
	}
	return filepath.Base(trimmed)
}

// FileStem returns the base name of path without its extension.
// A name that is only an extension, like ".pdf", is returned unchanged.
func FileStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return base
	}
	return stem
}
