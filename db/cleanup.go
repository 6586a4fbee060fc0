package db

import (
	"context"
	"fmt"
	"time"
)

// PruneResult reports what a retention pass removed.
type PruneResult struct {
	RunsDeleted int64
	Duration    time.Duration
}

// PruneOlderThan deletes runs created more than retentionDays ago. Their
// file rows go with them through ON DELETE CASCADE. A retentionDays of zero
// or less keeps everything.
//
// Example:
//
//	result, err := repo.PruneOlderThan(ctx, 90)
func (r *Repository) PruneOlderThan(ctx context.Context, retentionDays int) (PruneResult, error) {
	start := time.Now()
	if retentionDays <= 0 {
		return PruneResult{}, nil
	}

	conn, err := r.db.conn()
	if err != nil {
		return PruneResult{}, err
	}

	res, err := conn.ExecContext(ctx,
		"DELETE FROM analysis_runs WHERE created_at < datetime('now', ?)",
		fmt.Sprintf("-%d days", retentionDays),
	)
	if err != nil {
		return PruneResult{}, fmt.Errorf("failed to prune analysis runs: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return PruneResult{}, fmt.Errorf("failed to read pruned row count: %w", err)
	}

	return PruneResult{RunsDeleted: deleted, Duration: time.Since(start)}, nil
}
