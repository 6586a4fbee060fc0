package core

import (
	"os"
	"path/filepath"
	"strings"
)

// InputKind classifies the path argument.
type InputKind int

const (
	// InputFile is a regular file with a .pdf extension
	InputFile InputKind = iota + 1
	// InputDirectory is a directory to scan for *.pdf entries
	InputDirectory
)

// String returns the string representation of an input kind.
func (k InputKind) String() string {
	switch k {
	case InputFile:
		return "file"
	case InputDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// ResolveInput decides how the path argument is processed. Any stat failure,
// including permission errors, reports the path as not found. The .pdf check
// ignores case, so "REPORT.PDF" is accepted.
func ResolveInput(path string) (InputKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, ErrPathNotFound(path)
	}

	switch {
	case info.IsDir():
		return InputDirectory, nil
	case info.Mode().IsRegular():
		if !HasPDFExtension(path) {
			return 0, ErrNotPDF(path)
		}
		return InputFile, nil
	default:
		return 0, ErrNotFileOrDir(path)
	}
}

// HasPDFExtension reports whether path ends in .pdf, ignoring case.
func HasPDFExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
