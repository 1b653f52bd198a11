package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetSummary returns the stored summary for a document hash, if any.
func (d *Database) GetSummary(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, errors.New("summary key is empty")
	}

	query := "select summary from summaries where doc_hash = ?"

	var summary string
	err := d.db.QueryRowContext(ctx, query, key).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to execute query: %w", err)
	}

	return summary, true, nil
}

// PutSummary inserts or refreshes the summary for a document hash.
func (d *Database) PutSummary(ctx context.Context, key string, summary string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("summary key is empty")
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return errors.New("summary is empty")
	}

	query := `insert into summaries (doc_hash, summary, created_at)
		values (?, ?, ?)
		on conflict (doc_hash) do update set summary = excluded.summary, created_at = excluded.created_at`

	_, err := d.db.ExecContext(ctx, query, key, summary, time.Now().UTC().Unix())

	return err
}

// PruneOlderThan deletes summaries created before cutoff and reports how many
// rows were removed.
func (d *Database) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := "delete from summaries where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, cutoff.UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count affected rows: %w", err)
	}

	return removed, nil
}

// CountSummaries reports how many summaries are stored.
func (d *Database) CountSummaries(ctx context.Context) (int64, error) {
	query := "select count(*) from summaries"

	var count int64
	if err := d.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	return count, nil
}
