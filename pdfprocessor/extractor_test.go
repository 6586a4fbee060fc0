package pdfprocessor

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"pdftokens/pdfprocessor/pdftest"
)

// writeTestPDF writes a generated PDF into a temp dir and returns its path.
func writeTestPDF(t *testing.T, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := pdftest.WritePDF(path, pages...); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

func TestNewExtractor(t *testing.T) {
	tests := []struct {
		name          string
		config        ExtractorConfig
		wantSeparator string
	}{
		{
			name:          "default config",
			config:        DefaultExtractorConfig(),
			wantSeparator: "\n",
		},
		{
			name:          "custom separator",
			config:        ExtractorConfig{PageSeparator: "---PAGE---"},
			wantSeparator: "---PAGE---",
		},
		{
			name:          "empty separator gets default",
			config:        ExtractorConfig{},
			wantSeparator: DefaultPageSeparator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.config)
			if e.config.PageSeparator != tt.wantSeparator {
				t.Errorf("PageSeparator = %q, want %q", e.config.PageSeparator, tt.wantSeparator)
			}
		})
	}
}

func TestDefaultExtractorConfig(t *testing.T) {
	if got := DefaultExtractorConfig().PageSeparator; got != "\n" {
		t.Errorf("PageSeparator = %q, want newline", got)
	}
}

func TestExtractor_Extract_EmptyPath(t *testing.T) {
	_, err := NewDefaultExtractor().Extract("")
	if !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Extract(\"\") error = %v, want ErrEmptyPath", err)
	}
}

func TestExtractor_Extract_NonexistentFile(t *testing.T) {
	_, err := NewDefaultExtractor().Extract("/nonexistent/path/to/file.pdf")
	if err == nil {
		t.Fatal("Extract with nonexistent file should return error")
	}
	if !strings.Contains(err.Error(), "failed to open PDF") {
		t.Errorf("error should contain 'failed to open PDF', got: %v", err)
	}
}

func TestExtractor_Extract_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := pdftest.WriteCorrupt(path); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	if _, err := NewDefaultExtractor().Extract(path); err == nil {
		t.Error("Extract of a non-PDF file should return error")
	}
}

func TestExtractor_Extract_PagesInOrder(t *testing.T) {
	path := writeTestPDF(t, "ordered.pdf", "first page", "second page", "third page")

	result, err := NewDefaultExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}
	if result.ExtractedPages != 3 {
		t.Errorf("ExtractedPages = %d, want 3", result.ExtractedPages)
	}

	first := strings.Index(result.Text, "first page")
	second := strings.Index(result.Text, "second page")
	third := strings.Index(result.Text, "third page")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("text missing page content: %q", result.Text)
	}
	if !(first < second && second < third) {
		t.Errorf("pages out of order in %q", result.Text)
	}
	if strings.Count(result.Text, "\n") < 2 {
		t.Errorf("expected newline separators between pages, got %q", result.Text)
	}
}

func TestExtractor_Extract_EmptyPagesKept(t *testing.T) {
	path := writeTestPDF(t, "gaps.pdf", "alpha", "", "omega")

	result, err := NewExtractor(ExtractorConfig{PageSeparator: "|"}).Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}
	if result.ExtractedPages != 2 {
		t.Errorf("ExtractedPages = %d, want 2", result.ExtractedPages)
	}
	if strings.Count(result.Text, "|") != 2 {
		t.Errorf("expected a separator on both sides of the empty page, got %q", result.Text)
	}
}

func TestExtractor_Extract_Deterministic(t *testing.T) {
	path := writeTestPDF(t, "same.pdf", "repeatable content")
	e := NewDefaultExtractor()

	first, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	second, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if first.Text != second.Text {
		t.Errorf("extraction not deterministic: %q vs %q", first.Text, second.Text)
	}
}
