// Package history persists served quotes. Failures here are the caller's to
// log and swallow; a quote is never withheld because its record was lost.
package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Recorder struct {
	db *pgxpool.Pool
}

// NewRecorder wraps a pool. A nil pool yields a recorder that records nothing,
// for deployments without a database.
func NewRecorder(db *pgxpool.Pool) *Recorder {
	return &Recorder{db: db}
}

// Record inserts one quote: the original request, the served response and the
// serving timestamp.
func (r *Recorder) Record(ctx context.Context, request, response any) error {
	if r == nil || r.db == nil {
		return nil
	}
	reqJSON, err := json.Marshal(request)
	if err != nil {
		return err
	}
	respJSON, err := json.Marshal(response)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO quote_history (id, request, response, created_at)
		VALUES ($1, $2::jsonb, $3::jsonb, $4)
	`, uuid.New(), string(reqJSON), string(respJSON), time.Now().UTC())
	return err
}
