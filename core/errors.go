package core

import (
	"errors"
	"fmt"
)

// InputError describes a problem with the command-line input. It carries a
// code for programmatic handling, the message shown to the user, and an
// optional follow-up line.
type InputError struct {
	Code    string
	Message string
	Action  string
}

func (e *InputError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s %s", e.Message, e.Action)
	}
	return e.Message
}

// Input error codes
const (
	ErrCodeUsage        = "USAGE"
	ErrCodePathNotFound = "PATH_NOT_FOUND"
	ErrCodeNotPDF       = "NOT_PDF"
	ErrCodeNotFileOrDir = "NOT_FILE_OR_DIR"
	ErrCodeNoPDFs       = "NO_PDFS"
)

// ErrUsage returns the error for a wrong number of arguments. The message is
// the usage line and the action lists examples.
func ErrUsage() *InputError {
	return &InputError{
		Code:    ErrCodeUsage,
		Message: "Usage: pdftokens <path_to_pdf_or_folder>",
		Action: "Examples:\n" +
			"  pdftokens sample_pdf/sc4/chapter_1.pdf\n" +
			"  pdftokens sample_pdf/sc4/",
	}
}

// ErrPathNotFound returns the error for a path that does not exist.
func ErrPathNotFound(path string) *InputError {
	return &InputError{
		Code:    ErrCodePathNotFound,
		Message: fmt.Sprintf("Error: Path '%s' not found.", path),
		Action:  "Please make sure the file or folder exists at the specified path.",
	}
}

// ErrNotPDF returns the error for a file without a .pdf extension.
func ErrNotPDF(path string) *InputError {
	return &InputError{
		Code:    ErrCodeNotPDF,
		Message: fmt.Sprintf("Error: '%s' is not a PDF file.", path),
	}
}

// ErrNotFileOrDir returns the error for a path that is neither a regular
// file nor a directory (a device or socket, for example).
func ErrNotFileOrDir(path string) *InputError {
	return &InputError{
		Code:    ErrCodeNotFileOrDir,
		Message: fmt.Sprintf("Error: '%s' is neither a file nor a directory.", path),
	}
}

// ErrNoPDFs returns the error for a directory without *.pdf entries.
func ErrNoPDFs(folder string) *InputError {
	return &InputError{
		Code:    ErrCodeNoPDFs,
		Message: fmt.Sprintf("No PDF files found in folder: %s", folder),
	}
}

// ConfigError represents a configuration problem with an actionable hint.
type ConfigError struct {
	Code    string
	Message string
	Action  string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", msg, e.Action)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Configuration error codes
const (
	ErrCodeConfigFile    = "CONFIG_FILE"
	ErrCodeInvalidConfig = "INVALID_CONFIG"
)

// ErrConfigFile returns an error for a config file that cannot be read or parsed.
func ErrConfigFile(path string, err error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigFile,
		Message: fmt.Sprintf("Cannot load configuration file %s", path),
		Action:  "Check that the file exists and is valid YAML",
		Err:     err,
	}
}

// ErrInvalidConfig returns an error for an invalid configuration value.
func ErrInvalidConfig(field, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("Invalid configuration value for %s: %s", field, reason),
		Action:  fmt.Sprintf("Fix %s in the config file, environment, or flags", field),
	}
}

// IsInputError reports whether err is, or wraps, an *InputError.
func IsInputError(err error) (*InputError, bool) {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr, true
	}
	return nil, false
}

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the code from an InputError or ConfigError.
func GetErrorCode(err error) string {
	if inputErr, ok := IsInputError(err); ok {
		return inputErr.Code
	}
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
