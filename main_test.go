package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdftokens/core"
	"pdftokens/db"
	"pdftokens/pdfprocessor"
	"pdftokens/pdfprocessor/pdftest"
)

// clearEnv unsets every variable the CLI reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		core.EnvModel, core.EnvOutputDir, core.EnvConfig, core.EnvHistoryDB,
		core.EnvRetentionDays, core.EnvLogFile, core.EnvLogLevel,
		core.EnvPageSeparator, core.EnvDevMode,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

type cliResult struct {
	code      int
	stdout    string
	stderr    string
	outputDir string
}

// runCLI runs the CLI with an isolated output directory and no log file.
// extra flags go before the path argument.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	clearEnv(t)

	outputDir := filepath.Join(t.TempDir(), "reports")
	full := append([]string{"pdftokens", "--output-dir", outputDir, "--log-file", ""}, args...)

	var stdout, stderr bytes.Buffer
	code := run(full, &stdout, &stderr)

	return cliResult{
		code:      code,
		stdout:    stdout.String(),
		stderr:    stderr.String(),
		outputDir: outputDir,
	}
}

func savedReports(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	return matches
}

func writePDF(t *testing.T, path string, pages ...string) {
	t.Helper()
	if err := pdftest.WritePDF(path, pages...); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"two arguments", []string{"a.pdf", "b.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)

			if res.code != core.ExitCodeSuccess {
				t.Errorf("exit code = %d, want 0", res.code)
			}
			if !strings.Contains(res.stdout, "Usage: pdftokens <path_to_pdf_or_folder>") {
				t.Errorf("stdout missing usage line:\n%s", res.stdout)
			}
			if !strings.Contains(res.stdout, "Examples:") {
				t.Errorf("stdout missing examples:\n%s", res.stdout)
			}
			if _, err := os.Stat(res.outputDir); !os.IsNotExist(err) {
				t.Error("output directory should not be created")
			}
		})
	}
}

func TestRun_InputErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("plain text"), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0755); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.pdf")

	tests := []struct {
		name string
		path string
		want []string
	}{
		{
			name: "missing path",
			path: missing,
			want: []string{
				"Error: Path '" + missing + "' not found.",
				"Please make sure the file or folder exists at the specified path.",
			},
		},
		{
			name: "not a pdf",
			path: txt,
			want: []string{"Error: '" + txt + "' is not a PDF file."},
		},
		{
			name: "directory without pdfs",
			path: empty,
			want: []string{"No PDF files found in folder: " + empty},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.path)

			if res.code != core.ExitCodeSuccess {
				t.Errorf("exit code = %d, want 0 (stderr: %s)", res.code, res.stderr)
			}
			for _, want := range tt.want {
				if !strings.Contains(res.stdout, want) {
					t.Errorf("stdout missing %q:\n%s", want, res.stdout)
				}
			}
			if reports := savedReports(t, res.outputDir); len(reports) != 0 {
				t.Errorf("no report expected, found %v", reports)
			}
		})
	}
}

func TestRun_SingleFile(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "chapter_1.pdf")
	writePDF(t, pdfPath, "Hello world from the first page", "and the second page")

	res := runCLI(t, pdfPath)

	if res.code != core.ExitCodeSuccess {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", res.code, res.stderr)
	}
	for _, want := range []string{
		"# Single PDF Analysis Report",
		"**File:** `chapter_1.pdf`",
		"| **Tokens** |",
		"**Estimated number of tokens:**",
		"Report saved to:",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
	if strings.Contains(res.stdout, "Additional Insights") {
		t.Error("single-file report should not have an insights section")
	}

	reports := savedReports(t, res.outputDir)
	if len(reports) != 1 {
		t.Fatalf("expected 1 saved report, found %v", reports)
	}
	if !strings.HasPrefix(filepath.Base(reports[0]), "chapter_1_analysis_") {
		t.Errorf("report name = %q, want chapter_1_analysis_ prefix", filepath.Base(reports[0]))
	}
	if !strings.Contains(res.stdout, reports[0]) {
		t.Errorf("stdout should name the saved path %s", reports[0])
	}

	saved, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.stdout, string(saved)) {
		t.Error("printed report and saved report differ")
	}
}

func TestRun_SingleFileFailures(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken.pdf")
	if err := pdftest.WriteCorrupt(corrupt); err != nil {
		t.Fatal(err)
	}
	valid := filepath.Join(dir, "valid.pdf")
	writePDF(t, valid, "some text")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unreadable pdf", []string{corrupt}, "Error reading PDF:"},
		{"unknown model", []string{"--model", "no-such-model", valid}, "Error counting tokens:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)

			if res.code != core.ExitCodeSuccess {
				t.Errorf("exit code = %d, want 0", res.code)
			}
			if !strings.Contains(res.stdout, tt.want) {
				t.Errorf("stdout missing %q:\n%s", tt.want, res.stdout)
			}
			if reports := savedReports(t, res.outputDir); len(reports) != 0 {
				t.Errorf("no report expected, found %v", reports)
			}
		})
	}
}

func TestRun_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	writePDF(t, filepath.Join(dir, "a.pdf"), "AAAA")
	writePDF(t, filepath.Join(dir, "b.pdf"), "AAAA AAAA", "more text here")
	if err := pdftest.WriteCorrupt(filepath.Join(dir, "c.pdf")); err != nil {
		t.Fatal(err)
	}
	if err := pdftest.WriteCorrupt(filepath.Join(dir, "._a.pdf")); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, dir+string(filepath.Separator))

	if res.code != core.ExitCodeSuccess {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", res.code, res.stderr)
	}
	for _, want := range []string{
		"# PDF Token Analysis Report",
		"**Files Found:** 3 PDF file(s)",
		"| a.pdf |",
		"| b.pdf |",
		"| **Files Processed** | 3 |",
		"## Additional Insights",
		"## Skipped Files",
		"- c.pdf: extraction error:",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
	if strings.Contains(res.stdout, "._a.pdf") {
		t.Errorf("hidden file should not be listed:\n%s", res.stdout)
	}

	failureLine := strings.Index(res.stdout, "Error reading PDF:")
	if failureLine < 0 {
		t.Errorf("stdout missing per-file failure line:\n%s", res.stdout)
	} else if failureLine > strings.Index(res.stdout, "# PDF Token Analysis Report") {
		t.Error("per-file failure line should precede the report")
	}

	reports := savedReports(t, res.outputDir)
	if len(reports) != 1 {
		t.Fatalf("expected 1 saved report, found %v", reports)
	}
	if !strings.HasPrefix(filepath.Base(reports[0]), "docs_analysis_") {
		t.Errorf("report name = %q, want docs_analysis_ prefix", filepath.Base(reports[0]))
	}
}

func TestRun_History(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	writePDF(t, filepath.Join(dir, "a.pdf"), "first document")
	writePDF(t, filepath.Join(dir, "b.pdf"), "second document")
	if err := pdftest.WriteCorrupt(filepath.Join(dir, "c.pdf")); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(t.TempDir(), "history.db")

	res := runCLI(t, "--history-db", dbPath, "--history-retention-days", "30", dir)
	if res.code != core.ExitCodeSuccess {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", res.code, res.stderr)
	}

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	defer database.Close()
	repo := db.NewRepository(database)
	ctx := context.Background()

	runs, err := repo.QueryRecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("QueryRecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(runs))
	}

	recorded := runs[0]
	if recorded.Mode != db.ModeDirectory || recorded.FilesFound != 3 || recorded.FilesProcessed != 2 || recorded.FilesSkipped != 1 {
		t.Errorf("recorded = %+v, want directory run with 3 found, 2 processed, 1 skipped", recorded)
	}
	if recorded.Model != pdfprocessor.DefaultModel {
		t.Errorf("recorded.Model = %q, want %q", recorded.Model, pdfprocessor.DefaultModel)
	}
	if recorded.ReportPath == "" || !strings.Contains(res.stdout, recorded.ReportPath) {
		t.Errorf("recorded.ReportPath = %q, should match the printed path", recorded.ReportPath)
	}

	files, err := repo.QueryRunFiles(ctx, recorded.ID)
	if err != nil {
		t.Fatalf("QueryRunFiles() error = %v", err)
	}
	if len(files) != 3 {
		t.Errorf("recorded %d files, want 3", len(files))
	}
}

func TestRun_HistoryFailureKeepsExitCode(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "a.pdf")
	writePDF(t, pdfPath, "text")

	// A directory cannot be opened as a database file.
	res := runCLI(t, "--history-db", t.TempDir(), pdfPath)

	if res.code != core.ExitCodeSuccess {
		t.Errorf("exit code = %d, want 0", res.code)
	}
	if reports := savedReports(t, res.outputDir); len(reports) != 1 {
		t.Errorf("report should still be saved, found %v", reports)
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "a.pdf")
	writePDF(t, pdfPath, "text")

	badYAML := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badYAML, []byte("model: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"invalid config file", []string{"--config", badYAML, pdfPath}, "Error [" + core.ErrCodeConfigFile + "]"},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "none.yaml"), pdfPath}, "Error [" + core.ErrCodeConfigFile + "]"},
		{"invalid log level", []string{"--log-level", "loud", pdfPath}, "Error [" + core.ErrCodeInvalidConfig + "]"},
		{"unknown flag", []string{"--no-such-flag", pdfPath}, "Error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			if res.code != core.ExitCodeError {
				t.Errorf("exit code = %d, want %d", res.code, core.ExitCodeError)
			}
			if !strings.Contains(res.stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, res.stderr)
			}
		})
	}
}

func TestRun_ConfigFileSetsOutputDir(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "a.pdf")
	writePDF(t, pdfPath, "text")

	outputDir := filepath.Join(t.TempDir(), "from-config")
	cfgPath := filepath.Join(t.TempDir(), "pdftokens.yaml")
	content := "output_dir: " + outputDir + "\nlog_file: \"\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	t.Setenv(core.EnvConfig, cfgPath)

	var stdout, stderr bytes.Buffer
	code := run([]string{"pdftokens", pdfPath}, &stdout, &stderr)
	if code != core.ExitCodeSuccess {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	if reports := savedReports(t, outputDir); len(reports) != 1 {
		t.Errorf("expected report under %s, found %v", outputDir, reports)
	}
}
