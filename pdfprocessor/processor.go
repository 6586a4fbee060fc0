package pdfprocessor

// processor.go composes the Extractor and Counter and runs them over a
// single file or over every PDF in a directory, one file at a time.

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"pdftokens/logging"
)

// ErrNoPDFFiles is returned by ProcessDirectory when the directory has no
// *.pdf entries.
var ErrNoPDFFiles = errors.New("no PDF files found")

// ErrorKind classifies why a file was skipped.
type ErrorKind int

const (
	// KindExtraction means the PDF could not be opened or parsed.
	KindExtraction ErrorKind = iota + 1
	// KindTokenizer means the model has no known vocabulary, or encoding failed.
	KindTokenizer
)

// String returns the string representation of an error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindExtraction:
		return "extraction"
	case KindTokenizer:
		return "tokenizer"
	default:
		return "unknown"
	}
}

// FileResult holds the counts for one successfully processed PDF.
type FileResult struct {
	Path       string
	Tokens     int
	Characters int
	Pages      int
}

// FileFailure is the skip result for a PDF that could not be processed.
type FileFailure struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (f *FileFailure) Error() string {
	return fmt.Sprintf("%s: %s error: %v", f.Path, f.Kind, f.Err)
}

func (f *FileFailure) Unwrap() error {
	return f.Err
}

// BatchResult is the outcome of processing a directory.
type BatchResult struct {
	// Folder is the directory argument as given
	Folder string

	// Discovered lists every *.pdf path found, sorted
	Discovered []string

	// Results holds successful files in processing order
	Results []FileResult

	// Failures holds skipped files in processing order
	Failures []FileFailure
}

// ProcessorConfig holds configuration for the Processor.
type ProcessorConfig struct {
	ExtractorConfig ExtractorConfig

	// Model selects the token vocabulary. Defaults to DefaultModel.
	Model string
}

// DefaultProcessorConfig returns the configuration used by the CLI.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		ExtractorConfig: DefaultExtractorConfig(),
		Model:           DefaultModel,
	}
}

// Processor runs extraction and counting sequentially.
type Processor struct {
	extractor *Extractor
	counter   *Counter
	model     string

	// counterErr is set when the model could not be resolved. Every file
	// then fails with KindTokenizer after extraction.
	counterErr error

	logger *logging.Logger
}

// NewProcessor creates a Processor. An unresolvable model does not fail
// construction; it surfaces as a KindTokenizer failure per file.
//
// Example:
//
//	p := NewProcessor(DefaultProcessorConfig(), logger)
//	batch, err := p.ProcessDirectory(ctx, "docs/")
func NewProcessor(config ProcessorConfig, logger *logging.Logger) *Processor {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	counter, err := NewCounter(config.Model)

	return &Processor{
		extractor:  NewExtractor(config.ExtractorConfig),
		counter:    counter,
		model:      config.Model,
		counterErr: err,
		logger:     logger.Named("processor"),
	}
}

// Model returns the configured model name.
func (p *Processor) Model() string {
	return p.model
}

// ProcessFile extracts and counts a single PDF. On failure the returned
// error is a *FileFailure.
func (p *Processor) ProcessFile(pdfPath string) (FileResult, error) {
	start := time.Now()

	extraction, err := p.extractor.Extract(pdfPath)
	if err != nil {
		return FileResult{}, p.fail(pdfPath, KindExtraction, err)
	}

	if p.counterErr != nil {
		return FileResult{}, p.fail(pdfPath, KindTokenizer, p.counterErr)
	}

	count, err := p.counter.Count(extraction.Text)
	if err != nil {
		return FileResult{}, p.fail(pdfPath, KindTokenizer, err)
	}

	result := FileResult{
		Path:       pdfPath,
		Tokens:     count.Tokens,
		Characters: count.Characters,
		Pages:      extraction.TotalPages,
	}

	p.logger.Info("processed PDF",
		zap.String("path", pdfPath),
		zap.Int("pages", result.Pages),
		zap.Int("text_pages", extraction.ExtractedPages),
		zap.Int("tokens", result.Tokens),
		zap.Int("characters", result.Characters),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (p *Processor) fail(pdfPath string, kind ErrorKind, err error) *FileFailure {
	p.logger.Warn("skipping PDF",
		zap.String("path", pdfPath),
		zap.Stringer("kind", kind),
		zap.Error(err),
	)
	return &FileFailure{Path: pdfPath, Kind: kind, Err: err}
}

// ProcessDirectory processes every *.pdf entry of dir in lexicographic path
// order. Files that fail are recorded in Failures and skipped.
//
// The context is checked between files. On cancellation the partial batch is
// returned together with ctx.Err().
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (*BatchResult, error) {
	files, err := FindPDFFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in folder: %s", ErrNoPDFFiles, dir)
	}

	batch := &BatchResult{
		Folder:     dir,
		Discovered: files,
		Results:    make([]FileResult, 0, len(files)),
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		result, err := p.ProcessFile(file)
		if err != nil {
			var failure *FileFailure
			if errors.As(err, &failure) {
				batch.Failures = append(batch.Failures, *failure)
				continue
			}
			return batch, err
		}
		batch.Results = append(batch.Results, result)
	}

	p.logger.Info("processed folder",
		zap.String("folder", dir),
		zap.Int("found", len(batch.Discovered)),
		zap.Int("processed", len(batch.Results)),
		zap.Int("skipped", len(batch.Failures)),
	)

	return batch, nil
}

// FindPDFFiles returns the *.pdf entries of dir, sorted. The match is case
// sensitive, so "X.PDF" is not included. Hidden entries such as "._a.pdf"
// are skipped.
func FindPDFFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list PDF files: %w", err)
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), ".") {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}
