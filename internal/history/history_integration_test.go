package history

import (
	"context"
	"os"
	"testing"

	"relocalc/internal/db"
)

func TestRecordIntegration(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
		return
	}

	pool, err := db.NewPool(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS quote_history (
			id UUID PRIMARY KEY,
			request JSONB NOT NULL,
			response JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("failed to ensure table: %v", err)
	}

	rec := NewRecorder(pool)
	request := map[string]any{"from": "Delhi", "to": "Mumbai", "cft": 45}
	response := map[string]any{"rates": []any{}, "updatedAt": "2026-09-01T00:00:00Z"}
	if err := rec.Record(context.Background(), request, response); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	var n int
	err = pool.QueryRow(context.Background(), `
		SELECT count(*) FROM quote_history WHERE request->>'from' = 'Delhi'
	`).Scan(&n)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected at least one recorded quote")
	}
	_, _ = pool.Exec(context.Background(), `DELETE FROM quote_history WHERE request->>'from' = 'Delhi'`)
}

func TestRecordNilPoolIsNoop(t *testing.T) {
	rec := NewRecorder(nil)
	if err := rec.Record(context.Background(), map[string]any{}, map[string]any{}); err != nil {
		t.Fatalf("expected nil error from nil-pool recorder, got %v", err)
	}
}
