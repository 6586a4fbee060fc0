package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"pdftokens/core"
	"pdftokens/logging"
	"pdftokens/pdfprocessor"
	"pdftokens/report"
	"pdftokens/shutdown"
)

func main() {
	// A missing .env file is normal for a CLI.
	_ = godotenv.Load()

	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	r := &runner{stdout: stdout, stderr: stderr, exitCode: core.ExitCodeSuccess}

	if err := r.app().RunContext(context.Background(), args); err != nil {
		red := color.New(color.FgRed)
		if code := core.GetErrorCode(err); code != "" {
			red.Fprintf(stderr, "Error [%s]: %v\n", code, err)
		} else {
			red.Fprintf(stderr, "Error: %v\n", err)
		}
		return core.ExitCodeError
	}
	return r.exitCode
}

// runner carries the output streams and the exit code through the cli.App.
type runner struct {
	stdout   io.Writer
	stderr   io.Writer
	exitCode int
}

func (r *runner) app() *cli.App {
	return &cli.App{
		Name:            "pdftokens",
		Usage:           "count model tokens in PDF files and save a markdown report",
		UsageText:       "pdftokens [flags] <path_to_pdf_or_folder>",
		Version:         core.GetVersionInfo(),
		Writer:          r.stdout,
		ErrWriter:       r.stderr,
		HideHelpCommand: true,
		Flags:           flags(),
		Action:          r.analyze,
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "model",
			Usage: "model or encoding whose vocabulary counts tokens (env " + core.EnvModel + ")",
			Value: core.DefaultModel,
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "directory for saved reports (env " + core.EnvOutputDir + ")",
			Value: core.DefaultOutputDir,
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file (env " + core.EnvConfig + ")",
		},
		&cli.StringFlag{
			Name:  "history-db",
			Usage: "SQLite file that records every run; empty disables history (env " + core.EnvHistoryDB + ")",
		},
		&cli.IntFlag{
			Name:  "history-retention-days",
			Usage: "delete recorded runs older than this many days; 0 keeps all (env " + core.EnvRetentionDays + ")",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "rotating JSON log file; empty disables file logging (env " + core.EnvLogFile + ")",
			Value: core.DefaultLogFile,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error (env " + core.EnvLogLevel + ")",
			Value: core.DefaultLogLevel,
		},
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "development logging on the console (env " + core.EnvDevMode + ")",
		},
		&cli.StringFlag{
			Name:  "page-separator",
			Usage: `text placed between pages before counting, \n and \t are unescaped (env ` + core.EnvPageSeparator + ")",
			Value: `\n`,
		},
	}
}

// analyze is the cli.Action. Input problems are reported on stdout and
// leave the exit code at 0; returned errors become exit code 1.
func (r *runner) analyze(c *cli.Context) error {
	if c.NArg() != 1 {
		return r.reportInputError(logging.NewNopLogger(), core.ErrUsage())
	}
	target := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	logger.Info("configuration loaded",
		zap.String("target", target),
		zap.String("model", cfg.Model),
		zap.String("output_dir", cfg.OutputDir),
		zap.Bool("history", cfg.HistoryEnabled()),
		zap.String("version", core.Version),
	)

	manager := shutdown.NewManager(c.Context, logger)
	manager.Start()
	defer manager.Close()

	kind, err := core.ResolveInput(target)
	if err != nil {
		return r.reportInputError(logger, err)
	}

	procConfig := pdfprocessor.DefaultProcessorConfig()
	procConfig.ExtractorConfig.PageSeparator = cfg.PageSeparator
	procConfig.Model = cfg.Model
	processor := pdfprocessor.NewProcessor(procConfig, logger)

	var (
		content string
		stem    string
		summary runSummary
	)

	switch kind {
	case core.InputFile:
		result, err := processor.ProcessFile(target)
		if err != nil {
			r.reportFileFailure(err)
			return nil
		}
		content = report.RenderSingle(result)
		stem = report.FileStem(target)
		summary = singleRun(target, result)

	case core.InputDirectory:
		batch, err := processor.ProcessDirectory(manager.Context(), target)
		switch {
		case errors.Is(err, pdfprocessor.ErrNoPDFFiles):
			return r.reportInputError(logger, core.ErrNoPDFs(target))
		case errors.Is(err, context.Canceled) && manager.Interrupted():
			fmt.Fprintln(r.stderr, "Interrupted; no report written.")
			r.exitCode = core.ExitCodeSIGINT
			return nil
		case err != nil:
			return fmt.Errorf("failed to process folder %s: %w", target, err)
		}
		for i := range batch.Failures {
			r.reportFileFailure(&batch.Failures[i])
		}
		content = report.RenderDirectory(batch)
		stem = report.FolderStem(target)
		summary = directoryRun(batch)
	}

	writer := report.NewWriter(cfg.OutputDir, r.stdout)
	savedPath, err := writer.Publish(content, stem)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(r.stdout, "\n📄 **Report saved to:** `%s`\n", savedPath)
	logger.Info("report saved", zap.String("path", savedPath))

	if cfg.HistoryEnabled() {
		summary.ID = runID
		summary.Model = processor.Model()
		summary.ReportPath = savedPath
		recordHistory(manager, cfg, logger, summary)
	}

	return nil
}

// loadConfig layers flags over defaults, the config file and the environment.
func loadConfig(c *cli.Context) (*core.Config, error) {
	configPath := c.String("config")
	if !c.IsSet("config") {
		configPath = core.GetEnvOrDefault(core.EnvConfig, "")
	}

	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("history-db") {
		cfg.HistoryDB = c.String("history-db")
	}
	if c.IsSet("history-retention-days") {
		cfg.HistoryRetentionDays = c.Int("history-retention-days")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("dev") {
		cfg.DevMode = c.Bool("dev")
	}
	if c.IsSet("page-separator") {
		cfg.PageSeparator = core.UnescapeSeparator(c.String("page-separator"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *core.Config) (*logging.Logger, error) {
	level, err := logging.ParseLogLevelStrict(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := logging.DefaultOptions(cfg.LogFile)
	opts.Level = level
	opts.Development = cfg.DevMode
	return logging.NewLogger(opts)
}

// reportInputError prints an input problem the way the user expects to see
// it and keeps exit code 0. Other errors are returned unchanged.
func (r *runner) reportInputError(logger *logging.Logger, err error) error {
	inputErr, ok := core.IsInputError(err)
	if !ok {
		return err
	}

	logger.Info("input rejected",
		zap.String("code", inputErr.Code),
		zap.String("message", inputErr.Message),
	)

	fmt.Fprintln(r.stdout, inputErr.Message)
	if inputErr.Action != "" {
		fmt.Fprintln(r.stdout, inputErr.Action)
	}
	return nil
}

// reportFileFailure prints why a PDF was not counted.
func (r *runner) reportFileFailure(err error) {
	var failure *pdfprocessor.FileFailure
	if !errors.As(err, &failure) {
		fmt.Fprintf(r.stdout, "Error: %v\n", err)
		return
	}

	switch failure.Kind {
	case pdfprocessor.KindTokenizer:
		fmt.Fprintf(r.stdout, "Error counting tokens: %v\n", failure.Err)
	default:
		fmt.Fprintf(r.stdout, "Error reading PDF: %v\n", failure.Err)
	}
}
