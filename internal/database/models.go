package database

import "time"

// RecordIndex is one row of the local record index. It mirrors what the
// storage consumer saved: where a record went and under which handle.
// The index exists for the /stats and /export commands; the processing
// pipeline never reads it.
type RecordIndex struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	UserID    int64  `db:"user_id"`
	Username  string `db:"username"`
	MessageID int64  `db:"message_id"`
	Category  string `db:"category"`
	Summary   string `db:"summary"`
	Backend   string `db:"backend"`
	Handle    string `db:"handle"`
}
