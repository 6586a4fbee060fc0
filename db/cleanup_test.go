package db

import (
	"context"
	"testing"
)

func TestRepository_PruneOlderThan(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	oldRun, files := sampleRun()
	oldID, err := repo.RecordRun(ctx, oldRun, files)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	newRun, _ := sampleRun()
	newID, err := repo.RecordRun(ctx, newRun, nil)
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	conn, err := repo.db.conn()
	if err != nil {
		t.Fatalf("conn() error = %v", err)
	}
	if _, err := conn.ExecContext(ctx,
		"UPDATE analysis_runs SET created_at = datetime('now', '-40 days') WHERE id = ?", oldID); err != nil {
		t.Fatalf("failed to age run: %v", err)
	}

	tests := []struct {
		name        string
		days        int
		wantDeleted int64
	}{
		{"disabled", 0, 0},
		{"window covers both", 60, 0},
		{"prunes old run", 30, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.PruneOlderThan(ctx, tt.days)
			if err != nil {
				t.Fatalf("PruneOlderThan(%d) error = %v", tt.days, err)
			}
			if result.RunsDeleted != tt.wantDeleted {
				t.Errorf("RunsDeleted = %d, want %d", result.RunsDeleted, tt.wantDeleted)
			}
		})
	}

	if _, err := repo.GetRun(ctx, newID); err != nil {
		t.Errorf("recent run was pruned: %v", err)
	}

	// File rows of the pruned run are removed by the cascade.
	remaining, err := repo.QueryRunFiles(ctx, oldID)
	if err != nil {
		t.Fatalf("QueryRunFiles() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("QueryRunFiles() after prune returned %d rows, want 0", len(remaining))
	}
}
