package main

import (
	"context"

	"go.uber.org/zap"

	"pdftokens/core"
	"pdftokens/db"
	"pdftokens/logging"
	"pdftokens/pdfprocessor"
	"pdftokens/shutdown"
)

// runSummary is one run as stored in the history database.
type runSummary struct {
	db.RunRecord
	Files []db.FileRecord
}

func singleRun(target string, result pdfprocessor.FileResult) runSummary {
	return runSummary{
		RunRecord: db.RunRecord{
			Mode:            db.ModeFile,
			Target:          target,
			FilesFound:      1,
			FilesProcessed:  1,
			TotalTokens:     result.Tokens,
			TotalCharacters: result.Characters,
		},
		Files: []db.FileRecord{fileRecord(result)},
	}
}

func directoryRun(batch *pdfprocessor.BatchResult) runSummary {
	summary := runSummary{
		RunRecord: db.RunRecord{
			Mode:           db.ModeDirectory,
			Target:         batch.Folder,
			FilesFound:     len(batch.Discovered),
			FilesProcessed: len(batch.Results),
			FilesSkipped:   len(batch.Failures),
		},
	}

	for _, r := range batch.Results {
		summary.TotalTokens += r.Tokens
		summary.TotalCharacters += r.Characters
		summary.Files = append(summary.Files, fileRecord(r))
	}
	for _, f := range batch.Failures {
		summary.Files = append(summary.Files, db.FileRecord{
			Path:         f.Path,
			ErrorKind:    f.Kind.String(),
			ErrorMessage: f.Err.Error(),
		})
	}
	return summary
}

func fileRecord(r pdfprocessor.FileResult) db.FileRecord {
	return db.FileRecord{
		Path:       r.Path,
		Tokens:     r.Tokens,
		Characters: r.Characters,
		Pages:      r.Pages,
	}
}

// recordHistory appends the run to the history database. Failures are
// logged and never change the exit code.
func recordHistory(manager *shutdown.Manager, cfg *core.Config, logger *logging.Logger, summary runSummary) {
	logger = logger.Named("history")

	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("failed to open history database",
			zap.String("path", cfg.HistoryDB),
			zap.Error(err),
		)
		return
	}
	manager.Register("history-db", 10, func(ctx context.Context) error {
		return database.Close()
	})

	// The run context may already be cancelled by a late signal; the record
	// describes a report that was saved, so it is still written.
	ctx := context.WithoutCancel(manager.Context())
	repo := db.NewRepository(database)

	id, err := repo.RecordRun(ctx, summary.RunRecord, summary.Files)
	if err != nil {
		logger.Warn("failed to record run", zap.Error(err))
		return
	}
	logger.Info("run recorded",
		zap.String("db", database.Path()),
		zap.Int("files", len(summary.Files)),
		zap.String("recorded_id", id),
	)

	if cfg.HistoryRetentionDays > 0 {
		result, err := repo.PruneOlderThan(ctx, cfg.HistoryRetentionDays)
		if err != nil {
			logger.Warn("failed to prune history", zap.Error(err))
			return
		}
		logger.Info("history pruned",
			zap.Int("retention_days", cfg.HistoryRetentionDays),
			zap.Int64("runs_deleted", result.RunsDeleted),
			zap.Duration("duration", result.Duration),
		)
	}
}
