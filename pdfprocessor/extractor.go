// Package pdfprocessor extracts text from PDF files and counts its tokens.
//
// extractor.go implements the Extractor, which reads the text layer of every
// page using the ledongthuc/pdf library.
package pdfprocessor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrEmptyPath is returned when an empty file path is provided.
var ErrEmptyPath = errors.New("empty PDF path provided")

// ExtractionResult contains the complete result of PDF text extraction.
type ExtractionResult struct {
	// Text is the page texts joined in page order
	Text string

	// TotalPages is the number of pages in the PDF
	TotalPages int

	// ExtractedPages is the number of pages that yielded text
	ExtractedPages int
}

// ExtractorConfig holds configuration for PDF text extraction.
type ExtractorConfig struct {
	// PageSeparator is inserted between page texts. Defaults to "\n".
	PageSeparator string
}

// DefaultPageSeparator joins page texts.
const DefaultPageSeparator = "\n"

// DefaultExtractorConfig returns the configuration used by the CLI.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{PageSeparator: DefaultPageSeparator}
}

// Extractor extracts text from PDF files. Every page is read and a page
// that fails to decode fails the whole document.
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates a new Extractor with the given configuration.
func NewExtractor(config ExtractorConfig) *Extractor {
	if config.PageSeparator == "" {
		config.PageSeparator = DefaultPageSeparator
	}
	return &Extractor{config: config}
}

// NewDefaultExtractor creates an Extractor with default configuration.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(DefaultExtractorConfig())
}

// Extract extracts text from the PDF file at pdfPath.
//
// Example:
//
//	result, err := NewDefaultExtractor().Extract("/path/to/document.pdf")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Text)
func (e *Extractor) Extract(pdfPath string) (result *ExtractionResult, err error) {
	if pdfPath == "" {
		return nil, ErrEmptyPath
	}

	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return e.extractFromReader(r)
}

func (e *Extractor) extractFromReader(r *pdf.Reader) (*ExtractionResult, error) {
	totalPages := r.NumPage()
	result := &ExtractionResult{TotalPages: totalPages}
	texts := make([]string, 0, totalPages)

	// Pages are 1-indexed in ledongthuc/pdf
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		text, err := extractPage(r, pageIndex)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageIndex, err)
		}
		if text != "" {
			result.ExtractedPages++
		}
		texts = append(texts, text)
	}

	result.Text = strings.Join(texts, e.config.PageSeparator)
	return result, nil
}

// extractPage extracts text from a single page. A null page object yields
// an empty page, not an error.
func extractPage(r *pdf.Reader, pageIndex int) (string, error) {
	p := r.Page(pageIndex)
	if p.V.IsNull() {
		return "", nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}
