package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/knowbot/knowbot/internal/storage"
)

// Store defines the record index operations. Methods accept a
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// IndexSaved records a successful storage write.
	IndexSaved(ctx context.Context, rec *storage.Record, backend, handle string) error

	// CountByCategory returns the per-category record counts for a user.
	CountByCategory(ctx context.Context, userID int64) (map[string]int, error)

	// RecentRecords returns a user's most recent index rows, newest first.
	RecentRecords(ctx context.Context, userID int64, limit int) ([]RecordIndex, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx. It requires a connected
// sqlx.DB instance.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) IndexSaved(ctx context.Context, rec *storage.Record, backend, handle string) error {
	if rec == nil {
		return fmt.Errorf("cannot index nil record")
	}
	if backend == "" || handle == "" {
		return fmt.Errorf("record index requires backend and handle")
	}

	row := RecordIndex{
		CreatedAt: time.Now().UTC(),
		UserID:    rec.UserID,
		Username:  rec.Username,
		MessageID: int64(rec.MessageID),
		Category:  rec.Category,
		Summary:   rec.Summary,
		Backend:   backend,
		Handle:    handle,
	}

	const query = `
		INSERT INTO records (created_at, user_id, username, message_id, category, summary, backend, handle)
		VALUES (:created_at, :user_id, :username, :message_id, :category, :summary, :backend, :handle)`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert record index row",
			"user_id", rec.UserID, "message_id", rec.MessageID, "error", err)
		return fmt.Errorf("failed to insert record index row: %w", err)
	}
	return nil
}

func (s *sqlxStore) CountByCategory(ctx context.Context, userID int64) (map[string]int, error) {
	const query = `
		SELECT category, COUNT(*) AS count
		FROM records
		WHERE user_id = ?
		GROUP BY category
		ORDER BY count DESC`

	rows := []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count records by category: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts, nil
}

func (s *sqlxStore) RecentRecords(ctx context.Context, userID int64, limit int) ([]RecordIndex, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, created_at, user_id, username, message_id, category, summary, backend, handle
		FROM records
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	var records []RecordIndex
	if err := s.db.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to load recent records: %w", err)
	}
	return records, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running SQL maintenance (VACUUM, ANALYZE)")

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}
	return nil
}
